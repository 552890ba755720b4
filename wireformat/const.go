package wireformat

// Netlink attribute header flags, per linux/netlink.h. The reference
// decoder never inspects these bits directly (libmnl strips them before
// handing the type to mnl_attr_type_valid), but they live in the same
// two high bits of nla_type that we have to mask off before indexing
// our per-context tables.
const (
	nlaFNested       = 1 << 15
	nlaFNetByteorder = 1 << 14
	nlaTypeMask      = ^uint16(nlaFNested | nlaFNetByteorder)
)

// Top-level CTA_* attribute types, from linux/netfilter/nfnetlink_conntrack.h.
const (
	ctaTupleOrig     = 1
	ctaTupleReply    = 2
	ctaStatus        = 3
	ctaProtoInfo     = 4
	ctaHelp          = 5
	ctaNatSrc        = 6
	ctaTimeout       = 7
	ctaMark          = 8
	ctaCountersOrig  = 9
	ctaCountersReply = 10
	ctaUse           = 11
	ctaID            = 12
	ctaNatDst        = 13
	ctaTupleMaster   = 14
	ctaSeqAdjOrig    = 15
	ctaSeqAdjReply   = 16
	ctaSecmark       = 17
	ctaZone          = 18
	ctaSecCtx        = 19
	ctaTimestamp     = 20
	ctaMarkMask      = 21
	ctaLabels        = 22
	ctaLabelsMask    = 23
	ctaSynProxy      = 24
	ctaMax           = 24
)

// CTA_TUPLE_* — nested inside CTA_TUPLE_ORIG/REPLY/MASTER.
const (
	ctaTupleIP   = 1
	ctaTupleProt = 2
	ctaTupleZone = 3
	ctaTupleMax  = 3
)

// CTA_IP_* — nested inside CTA_TUPLE_IP.
const (
	ctaIPV4Src = 1
	ctaIPV4Dst = 2
	ctaIPV6Src = 3
	ctaIPV6Dst = 4
	ctaIPMax   = 4
)

// CTA_PROTO_* — nested inside CTA_TUPLE_PROTO.
const (
	ctaProtoNum       = 1
	ctaProtoSrcPort   = 2
	ctaProtoDstPort   = 3
	ctaProtoICMPID    = 4
	ctaProtoICMPType  = 5
	ctaProtoICMPCode  = 6
	ctaProtoICMP6ID   = 7
	ctaProtoICMP6Type = 8
	ctaProtoICMP6Code = 9
	ctaProtoMax       = 9
)

// CTA_PROTOINFO_* — nested inside CTA_PROTOINFO.
const (
	ctaProtoInfoTCP  = 1
	ctaProtoInfoDCCP = 2
	ctaProtoInfoSCTP = 3
	ctaProtoInfoMax  = 3
)

// CTA_PROTOINFO_TCP_* — nested inside CTA_PROTOINFO_TCP.
const (
	ctaProtoInfoTCPState          = 1
	ctaProtoInfoTCPWScaleOriginal = 2
	ctaProtoInfoTCPWScaleReply    = 3
	ctaProtoInfoTCPFlagsOriginal  = 4
	ctaProtoInfoTCPFlagsReply     = 5
	ctaProtoInfoTCPMax            = 5
)

// CTA_COUNTERS_* — nested inside CTA_COUNTERS_ORIG/REPLY.
const (
	ctaCountersPackets   = 1
	ctaCountersBytes     = 2
	ctaCounters32Packets = 3
	ctaCounters32Bytes   = 4
	ctaCountersMax       = 4
)

// TCPState is the conntrack TCP sub-state carried in
// CTA_PROTOINFO_TCP_STATE, from linux/netfilter/nf_conntrack_tcp.h.
type TCPState uint8

// TCP conntrack sub-states.
const (
	TCPConntrackNone        TCPState = 0
	TCPConntrackSynSent     TCPState = 1
	TCPConntrackSynRecv     TCPState = 2
	TCPConntrackEstablished TCPState = 3
	TCPConntrackFinWait     TCPState = 4
	TCPConntrackCloseWait   TCPState = 5
	TCPConntrackLastAck     TCPState = 6
	TCPConntrackTimeWait    TCPState = 7
	TCPConntrackClose       TCPState = 8
	TCPConntrackListen      TCPState = 9
	TCPConntrackMax         TCPState = 10
	TCPConntrackIgnore      TCPState = 11
	TCPConntrackRetrans     TCPState = 12
	TCPConntrackUnack       TCPState = 13
	TCPConntrackTimeoutMax  TCPState = 14
)

// ProtoUDP is the IP protocol number for UDP, used by the flow builder
// to decide whether CTA_PROTOINFO is required (§4.3 step 5).
const ProtoUDP = 17

// NetfilterSubsysCtnetlink and IPCtnlMsgCtGet compose the netlink dump request's
// message type per §4.1: (CTNETLINK_SUBSYS<<8)|CT_GET.
const (
	NetfilterSubsysCtnetlink = 1
	IPCtnlMsgCtGet           = 1
)
