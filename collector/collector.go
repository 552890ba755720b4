// Package collector implements the collector facade (C8): the four
// lifecycle entry points (init, collect_periodic, send_report, close) a
// host plugin runtime drives on timer callbacks, wired over C1-C7.
package collector

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/behrady/opensync/aggregator"
	"github.com/behrady/opensync/conntrack"
	"github.com/behrady/opensync/enrich"
	"github.com/behrady/opensync/flowbuilder"
	"github.com/behrady/opensync/internal/obslog"
	"github.com/behrady/opensync/ipcsink"
	"github.com/behrady/opensync/pending"
	"github.com/behrady/opensync/wireformat"
	"golang.org/x/sys/unix"
)

// ctZoneConfigKey is the only host config key this collector reads
// (§6).
const ctZoneConfigKey = "ct_zone"

// HostConfig mirrors collector.get_other_config (§4.8, §6): a
// string-keyed config map owned by the host.
type HostConfig interface {
	GetOtherConfig(key string) (string, bool)
}

// HostCollector mirrors the fields of the host collector struct this
// package consumes (§6): report interval, counter format, MQTT
// identity and the currently configured filter name.
type HostCollector interface {
	ReportInterval() time.Duration
	Format() aggregator.HostFormat
	MQTTTopic() string
	FilterName() string
	NodeID() string
	LocationID() string
}

// AggregatorFactory is the C6 "Alloc" verb (§4.6): it constructs the
// opaque Aggregator collaborator from a Config built out of host state.
// Its internal data structure stays out of scope (Non-goals) — only the
// construction call itself belongs to this package.
type AggregatorFactory interface {
	Alloc(cfg aggregator.Config) (aggregator.Aggregator, error)
}

// Collector is FlowStatsState (§3) reshaped as a context-owned value
// rather than a process-wide singleton (Design Notes §9, Open Question
// 1): the host owns one instance per collector plugin instance instead
// of reaching for a package-level global.
type Collector struct {
	mu   sync.Mutex
	zone uint16

	pendingList *pending.List
	reader      *conntrack.Reader
	builder     *flowbuilder.Builder
	enrichStage *enrich.Stage
	aggFactory  AggregatorFactory
	aggGateway  *aggregator.Gateway
	ipc         *ipcsink.Sink

	neigh      enrich.NeighborLookup
	filterFunc enrich.FilterFunc
	host       HostCollector
	log        *obslog.Log
}

// New constructs a Collector. Init still has to be called before any
// sweep runs it — New only wires the stages together so tests can
// substitute fakes for the aggregator factory/neigh/filter/ipcBackend.
func New(
	aggFactory AggregatorFactory,
	neigh enrich.NeighborLookup,
	filterFunc enrich.FilterFunc,
	ipcBackend ipcsink.Backend,
	host HostCollector,
	log *obslog.Log,
) *Collector {
	return &Collector{
		pendingList: &pending.List{},
		reader:      conntrack.New(log),
		builder:     flowbuilder.New(log),
		enrichStage: enrich.New(neigh, log),
		aggFactory:  aggFactory,
		ipc:         ipcsink.New(ipcBackend, log),
		neigh:       neigh,
		filterFunc:  filterFunc,
		host:        host,
		log:         log,
	}
}

// Init allocates the aggregator from host-derived state (§4.6's Alloc
// verb: node_id, location_id, report_type, num_windows=1, ttl, filter_cb,
// neigh_lookup), reads ct_zone from host config (default 0), activates
// the first accounting window, and starts the IPC sink (§4.8). If the
// IPC sink fails to start, the window opened here is closed again
// before the error is returned. The allocated aggregator is not
// released on any failure path: the Aggregator interface has no
// release call.
func (c *Collector) Init(hostConfig HostConfig) error {
	if c.host == nil {
		return fmt.Errorf("collector: init: host collector is required")
	}

	reportType, err := aggregator.DeriveReportType(c.host.Format())
	if err != nil {
		return fmt.Errorf("collector: init: %w", err)
	}

	cfg := aggregator.Config{
		NodeID:         c.host.NodeID(),
		LocationID:     c.host.LocationID(),
		ReportType:     reportType,
		NumWindows:     1,
		TTL:            c.host.ReportInterval(),
		FilterCallback: c.filterFunc,
		NeighLookup:    c.neigh,
	}
	agg, err := c.aggFactory.Alloc(cfg)
	if err != nil {
		return fmt.Errorf("collector: init: allocate aggregator: %w", err)
	}
	c.aggGateway = aggregator.New(agg, c.log)

	c.mu.Lock()
	c.zone = readZone(hostConfig, c.log)
	c.mu.Unlock()

	if err := c.aggGateway.ActivateWindow(); err != nil {
		return fmt.Errorf("collector: init: activate window: %w", err)
	}

	if err := c.ipc.Start(c.aggGateway); err != nil {
		// Roll back the window we just opened.
		_ = c.aggGateway.CloseWindow()
		return fmt.Errorf("collector: init: start ipc sink: %w", err)
	}

	return nil
}

// CollectPeriodic runs C1 for V4 then V6 — a V4 failure does not skip
// V6 (§4.8) — decodes and builds samples, and flushes them through
// C5/C6. The netlink dumps and decode run on a worker goroutine and
// report back over a channel (Design Notes §9's suggested rewrite of
// the reference's blocking-on-the-event-loop sweep); CollectPeriodic
// itself blocks until that worker finishes or ctx is done. When ctx is
// done first it returns ctx.Err() without flushing, and the worker keeps
// running until its dumps end.
func (c *Collector) CollectPeriodic(ctx context.Context) error {
	c.mu.Lock()
	zone := c.zone
	c.mu.Unlock()

	done := make(chan error, 1)

	go func() {
		var firstErr error
		for _, family := range []uint8{unix.AF_INET, unix.AF_INET6} {
			msgs, err := c.reader.Dump(ctx, family)
			if err != nil {
				if c.log != nil {
					c.log.Errorf("collect_periodic: family %d dump failed: %v", family, err)
				}
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			for _, m := range msgs {
				entry, err := wireformat.DecodeEntry(m.Payload)
				if err != nil {
					if c.log != nil {
						c.log.Debugf("collect_periodic: malformed entry dropped: %v", err)
					}
					continue
				}
				samples := c.builder.Build(entry, zone)
				if len(samples) > 0 {
					c.pendingList.Append(samples...)
				}
			}
		}
		done <- firstErr
	}()

	var sweepErr error
	select {
	case sweepErr = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	filterName := ""
	if c.host != nil {
		filterName = c.host.FilterName()
	}

	if err := c.flush(filterName); err != nil {
		return err
	}

	return sweepErr
}

// flush drains the pending list and runs it through enrichment/filter
// and the aggregator gateway (§4.5, §4.6).
func (c *Collector) flush(filterName string) error {
	drained := c.pendingList.Drain()
	if len(drained) == 0 {
		return nil
	}

	// ct_stats_print_contrack's per-flow debug dump, carried forward as
	// a Trace-level log gated by the logger's level rather than a build
	// tag (SPEC_FULL.md, "Supplemented features").
	if c.log != nil && c.log.TraceEnabled() {
		for _, sample := range drained {
			c.log.Tracef("parsed flow: %s", sample)
		}
	}

	enriched := c.enrichStage.Process(drained, filterName, c.filterFunc)
	return c.aggGateway.SubmitAll(enriched)
}

// SendReport closes the current window, sends the report, activates a
// new window, and only then applies any ct_zone change read from host
// config (§4.8: zone updates never take effect mid-collection).
func (c *Collector) SendReport(hostConfig HostConfig) error {
	if err := c.aggGateway.CloseWindow(); err != nil {
		return fmt.Errorf("collector: send_report: close window: %w", err)
	}

	topic := ""
	if c.host != nil {
		topic = c.host.MQTTTopic()
	}
	if err := c.aggGateway.SendReport(topic); err != nil {
		return fmt.Errorf("collector: send_report: %w", err)
	}

	if err := c.aggGateway.ActivateWindow(); err != nil {
		return fmt.Errorf("collector: send_report: activate window: %w", err)
	}

	newZone := readZone(hostConfig, c.log)
	c.mu.Lock()
	c.zone = newZone
	c.mu.Unlock()

	return nil
}

// Close closes the active window and tears down the IPC sink (§4.8).
func (c *Collector) Close() error {
	werr := c.aggGateway.CloseWindow()
	ierr := c.ipc.Close()
	if werr != nil {
		return werr
	}
	return ierr
}

func readZone(hostConfig HostConfig, log *obslog.Log) uint16 {
	if hostConfig == nil {
		return 0
	}
	raw, ok := hostConfig.GetOtherConfig(ctZoneConfigKey)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > 0xFFFF {
		if log != nil {
			log.Warnf("collector: invalid ct_zone %q, defaulting to 0", raw)
		}
		return 0
	}
	return uint16(v)
}
