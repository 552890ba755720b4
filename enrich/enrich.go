// Package enrich implements the enrichment and filter stage (§4.5): it
// attaches neighbor MAC addresses to a flow sample's endpoints and
// consults an external filter predicate before the sample is handed to
// the aggregator gateway.
package enrich

import (
	"net"

	"github.com/behrady/opensync/flowtypes"
	"github.com/behrady/opensync/internal/obslog"
)

// NeighborLookup resolves an IP address to a link-layer address. Absent
// entries are expected and are not an error (§4.5 step 1); the opaque
// neighbor table itself is out of scope (Non-goals).
type NeighborLookup interface {
	Lookup(ip flowtypes.SockAddr) (mac [6]byte, ok bool)
}

// View is the textual shape handed to the external filter predicate,
// mirroring the filter adapter contract in §6.
type View struct {
	FilterName       string
	SrcMAC, DstMAC   string
	SrcIP, DstIP     string
	SrcPort, DstPort uint16
	Proto            uint8
	Family           flowtypes.Family
	Packets, Bytes   uint64
}

// FilterFunc is the opaque external filter predicate (Non-goals); a
// false result drops the sample.
type FilterFunc func(View) bool

// Enriched pairs a flow sample with whatever neighbor MACs were found
// for it, ready for the aggregator key construction in §6.
type Enriched struct {
	flowtypes.FlowSample
	SrcMAC, DstMAC       [6]byte
	HasSrcMAC, HasDstMAC bool
}

// Stage runs the enrichment and filter pipeline over a batch of drained
// samples.
type Stage struct {
	neigh NeighborLookup
	log   *obslog.Log
}

// New returns a Stage backed by the given neighbor lookup collaborator.
// neigh may be nil, in which case every lookup is treated as a miss.
func New(neigh NeighborLookup, log *obslog.Log) *Stage {
	return &Stage{neigh: neigh, log: log}
}

// Process runs §4.5 over samples, returning only the ones that survive
// the filter. filterName empty (or filter nil) means no filter is
// configured and every sample passes step 2.
func (s *Stage) Process(samples []flowtypes.FlowSample, filterName string, filter FilterFunc) []Enriched {
	out := make([]Enriched, 0, len(samples))
	for _, sample := range samples {
		e := Enriched{FlowSample: sample}
		e.SrcMAC, e.HasSrcMAC = s.lookup(sample.Layer3.SrcIP)
		e.DstMAC, e.HasDstMAC = s.lookup(sample.Layer3.DstIP)

		if s.log != nil {
			s.log.Debugf("neighbor lookup src=%t dst=%t for %s->%s", e.HasSrcMAC, e.HasDstMAC,
				sample.Layer3.SrcIP, sample.Layer3.DstIP)
		}

		if filterName != "" && filter != nil {
			view := View{
				FilterName: filterName,
				SrcIP:      sample.Layer3.SrcIP.String(),
				DstIP:      sample.Layer3.DstIP.String(),
				SrcPort:    flowtypes.NtohsPort(sample.Layer3.SrcPort),
				DstPort:    flowtypes.NtohsPort(sample.Layer3.DstPort),
				Proto:      sample.Layer3.ProtoType,
				Family:     sample.Layer3.Family,
				Packets:    sample.Pkts.Packets,
				Bytes:      sample.Pkts.Bytes,
			}
			if e.HasSrcMAC {
				view.SrcMAC = macString(e.SrcMAC)
			}
			if e.HasDstMAC {
				view.DstMAC = macString(e.DstMAC)
			}
			if !filter(view) {
				continue
			}
		}

		out = append(out, e)
	}
	return out
}

func (s *Stage) lookup(ip flowtypes.SockAddr) ([6]byte, bool) {
	if s.neigh == nil {
		return [6]byte{}, false
	}
	return s.neigh.Lookup(ip)
}

func macString(mac [6]byte) string {
	return net.HardwareAddr(mac[:]).String()
}
