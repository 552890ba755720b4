package aggregator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behrady/opensync/enrich"
	"github.com/behrady/opensync/flowtypes"
)

type fakeAggregator struct {
	activateErr  error
	closeErr     error
	totalFlows   uint64
	resetCalled  bool
	reportErr    error
	reportCalled bool
	submitErr    error
	submitted    []Key
}

func (f *fakeAggregator) ActivateWindow() error { return f.activateErr }
func (f *fakeAggregator) CloseWindow() error    { return f.closeErr }
func (f *fakeAggregator) TotalFlows() uint64    { return f.totalFlows }
func (f *fakeAggregator) Reset()                { f.resetCalled = true }
func (f *fakeAggregator) SendReport(topic string) error {
	f.reportCalled = true
	return f.reportErr
}
func (f *fakeAggregator) Submit(key Key, counters Counters) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, key)
	return nil
}
func (f *fakeAggregator) SubmitEncoded(blob []byte) error { return nil }

func TestDeriveReportType(t *testing.T) {
	rt, err := DeriveReportType(FormatCumulative)
	require.NoError(t, err)
	assert.Equal(t, ReportAbsolute, rt)

	rt, err = DeriveReportType(FormatDelta)
	require.NoError(t, err)
	assert.Equal(t, ReportRelative, rt)

	_, err = DeriveReportType(HostFormat(99))
	assert.Error(t, err)
}

func TestSendReport_ZeroFlows_ResetsInsteadOfSending(t *testing.T) {
	agg := &fakeAggregator{totalFlows: 0}
	g := New(agg, nil)
	require.NoError(t, g.SendReport("topic"))
	assert.True(t, agg.resetCalled)
	assert.False(t, agg.reportCalled)
}

func TestSendReport_NonZeroFlows_Sends(t *testing.T) {
	agg := &fakeAggregator{totalFlows: 3}
	g := New(agg, nil)
	require.NoError(t, g.SendReport("topic"))
	assert.False(t, agg.resetCalled)
	assert.True(t, agg.reportCalled)
}

func TestSubmitAll_AbortsOnFirstFailure(t *testing.T) {
	agg := &fakeAggregator{submitErr: errors.New("boom")}
	g := New(agg, nil)
	samples := []enrich.Enriched{{}, {}}
	err := g.SubmitAll(samples)
	assert.Error(t, err)
	assert.Empty(t, agg.submitted)
}

func TestBuildKey_CopiesAddressBytes(t *testing.T) {
	sample := enrich.Enriched{
		FlowSample: flowtypes.FlowSample{CtFlow: flowtypes.CtFlow{
			Layer3: flowtypes.Layer3Info{
				SrcIP:     flowtypes.SockAddrFromV4([4]byte{10, 0, 0, 1}),
				DstIP:     flowtypes.SockAddrFromV4([4]byte{8, 8, 8, 8}),
				ProtoType: 17,
				Family:    flowtypes.FamilyV4,
			},
		}},
		HasSrcMAC: true,
		SrcMAC:    [6]byte{1, 2, 3, 4, 5, 6},
	}

	key := BuildKey(sample)
	assert.Equal(t, uint8(4), key.IPVersion)
	assert.Equal(t, []byte{10, 0, 0, 1}, key.SrcIP)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, key.SMAC)
	assert.Nil(t, key.DMAC)

	// Mutating the sample's own storage must not affect a previously
	// built key (Design Notes §9).
	sample.Layer3.SrcIP.V4[0] = 99
	assert.Equal(t, byte(10), key.SrcIP[0])
}

func TestBuildKey_PortsStayInWireOrder(t *testing.T) {
	sample := enrich.Enriched{
		FlowSample: flowtypes.FlowSample{CtFlow: flowtypes.CtFlow{
			Layer3: flowtypes.Layer3Info{
				SrcIP:   flowtypes.SockAddrFromV4([4]byte{10, 0, 0, 1}),
				DstIP:   flowtypes.SockAddrFromV4([4]byte{8, 8, 8, 8}),
				SrcPort: 0xe803, // port 1000 in network byte order
				DstPort: 0x3500, // port 53 in network byte order
				Family:  flowtypes.FamilyV4,
			},
		}},
	}

	key := BuildKey(sample)

	// The aggregator key must not be host-order normalized (§9):
	// downstream adapters expect wire order, same as
	// ct_flow_add_sample's unconverted key.sport/key.dport assignment.
	assert.Equal(t, uint16(0xe803), key.SPort)
	assert.Equal(t, uint16(0x3500), key.DPort)
}
