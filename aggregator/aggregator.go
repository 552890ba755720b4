// Package aggregator is the thin adapter over the opaque downstream
// flow-metadata aggregator (§4.6): it builds the aggregator's key/counter
// shape from an enriched sample and manages window open/close/report.
package aggregator

import (
	"fmt"
	"time"

	"github.com/behrady/opensync/enrich"
	"github.com/behrady/opensync/flowtypes"
	"github.com/behrady/opensync/internal/obslog"
)

// ReportType selects how the aggregator accumulates counters across
// windows.
type ReportType int

// Report types, derived from the host's counter format (§4.6).
const (
	ReportAbsolute ReportType = iota
	ReportRelative
)

// HostFormat is the host collector's counter format (§6: fmt field).
type HostFormat int

// Host counter formats.
const (
	FormatCumulative HostFormat = iota
	FormatDelta
)

// DeriveReportType maps the host's counter format to the aggregator's
// report type; any other format is an init error (§4.6).
func DeriveReportType(format HostFormat) (ReportType, error) {
	switch format {
	case FormatCumulative:
		return ReportAbsolute, nil
	case FormatDelta:
		return ReportRelative, nil
	default:
		return 0, fmt.Errorf("aggregator: unknown host counter format %d", format)
	}
}

// Config is the shape passed to Alloc (§4.6).
type Config struct {
	NodeID         string
	LocationID     string
	ReportType     ReportType
	NumWindows     int
	TTL            time.Duration
	FilterCallback enrich.FilterFunc
	NeighLookup    enrich.NeighborLookup
}

// Key is the per-sample aggregator key, built by copying address bytes
// out of the sample rather than aliasing its storage (Design Notes §9).
type Key struct {
	IPVersion  uint8
	SrcIP      []byte
	DstIP      []byte
	IPProtocol uint8
	SPort      uint16
	DPort      uint16
	SMAC       []byte
	DMAC       []byte
	FStart     bool
	FEnd       bool
}

// Counters is the packet/byte pair submitted alongside a Key.
type Counters struct {
	Packets uint64
	Bytes   uint64
}

// Aggregator is the opaque downstream collaborator (Non-goals): its
// internal data structure is out of scope. Submit is called once per
// surviving sample; ActivateWindow/CloseWindow/TotalFlows/Reset/SendReport
// back the four C6 verbs.
type Aggregator interface {
	ActivateWindow() error
	CloseWindow() error
	TotalFlows() uint64
	Reset()
	SendReport(topic string) error
	Submit(key Key, counters Counters) error

	// SubmitEncoded hands a pre-encoded, externally-produced update
	// straight through (update_from_encoded in §4.7) — the IPC sink's
	// only path into the aggregator, with no parsing in this repo.
	SubmitEncoded(blob []byte) error
}

// Gateway is the thin adapter described by C6.
type Gateway struct {
	agg Aggregator
	log *obslog.Log
}

// New wraps an already-allocated Aggregator. The allocation itself
// (matching the {node_id, location_id, report_type, num_windows=1,
// ttl, filter_cb, neigh_lookup} shape of §4.6) is the host's/factory's
// responsibility — it is opaque collaborator construction, not logic
// this package owns.
func New(agg Aggregator, log *obslog.Log) *Gateway {
	return &Gateway{agg: agg, log: log}
}

// ActivateWindow opens a new accounting window. Errors are logged; the
// caller decides whether to proceed (§4.6).
func (g *Gateway) ActivateWindow() error {
	if err := g.agg.ActivateWindow(); err != nil {
		if g.log != nil {
			g.log.Errorf("activate window: %v", err)
		}
		return err
	}
	return nil
}

// CloseWindow closes the currently open window; a no-op aggregator
// implementation may treat "no window open" as success.
func (g *Gateway) CloseWindow() error {
	if err := g.agg.CloseWindow(); err != nil {
		if g.log != nil {
			g.log.Errorf("close window: %v", err)
		}
		return err
	}
	return nil
}

// SendReport implements the zero-flow short-circuit carried forward
// from ct_stats_send_aggr_report: a zero flow count resets the
// aggregator instead of sending an empty report.
func (g *Gateway) SendReport(topic string) error {
	if g.agg.TotalFlows() == 0 {
		g.agg.Reset()
		return nil
	}
	if err := g.agg.SendReport(topic); err != nil {
		if g.log != nil {
			g.log.Errorf("send report: %v", err)
		}
		return err
	}
	return nil
}

// SubmitEncoded passes an externally pre-encoded update straight
// through to the aggregator, making Gateway usable directly as the IPC
// sink's UpdateSink (§4.7: no parsing in this subsystem).
func (g *Gateway) SubmitEncoded(blob []byte) error {
	if err := g.agg.SubmitEncoded(blob); err != nil {
		if g.log != nil {
			g.log.Warnf("ipc submit encoded failed: %v", err)
		}
		return err
	}
	return nil
}

// SubmitAll converts every enriched sample into the aggregator's key
// shape and submits it. A submission failure aborts the remainder of
// this flush (no further samples are submitted) but does not tear down
// the aggregator (§4.6).
func (g *Gateway) SubmitAll(samples []enrich.Enriched) error {
	for _, s := range samples {
		key := BuildKey(s)
		counters := Counters{Packets: s.Pkts.Packets, Bytes: s.Pkts.Bytes}
		if err := g.agg.Submit(key, counters); err != nil {
			if g.log != nil {
				g.log.Warnf("aggregator submit failed, aborting flush: %v", err)
			}
			return err
		}
	}
	return nil
}

// BuildKey constructs the aggregator key for one enriched sample,
// copying address bytes rather than aliasing the sample's own storage
// (Design Notes §9's pointer-lifetime fix).
func BuildKey(s enrich.Enriched) Key {
	ipVersion := uint8(4)
	var src, dst []byte
	if s.Layer3.Family == flowtypes.FamilyV6 {
		ipVersion = 6
		src = append([]byte(nil), s.Layer3.SrcIP.V6[:]...)
		dst = append([]byte(nil), s.Layer3.DstIP.V6[:]...)
	} else {
		src = append([]byte(nil), s.Layer3.SrcIP.V4[:]...)
		dst = append([]byte(nil), s.Layer3.DstIP.V4[:]...)
	}

	k := Key{
		IPVersion:  ipVersion,
		SrcIP:      src,
		DstIP:      dst,
		IPProtocol: s.Layer3.ProtoType,
		// Wire order, not host order: downstream adapters expect the
		// same byte order ct_flow_add_sample submits (§9) — only the
		// filter boundary (enrich.View) converts to host order.
		SPort:  s.Layer3.SrcPort,
		DPort:  s.Layer3.DstPort,
		FStart: s.Start,
		FEnd:   s.End,
	}
	if s.HasSrcMAC {
		k.SMAC = append([]byte(nil), s.SrcMAC[:]...)
	}
	if s.HasDstMAC {
		k.DMAC = append([]byte(nil), s.DstMAC[:]...)
	}
	return k
}
