// Package conntrack implements the raw netlink transport (C1): it opens
// a connection-tracking netlink socket, issues a full-table dump
// request per address family, and streams the raw message payloads up
// to the attribute decoder.
package conntrack

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/mdlayher/netlink"
	"github.com/mdlayher/netlink/nlenc"
	"golang.org/x/sys/unix"

	"github.com/behrady/opensync/internal/obslog"
)

// netfilterSubsysCtnetlink and ipCtnlMsgCtGet compose the dump request's
// message type: (CTNETLINK_SUBSYS<<8)|CT_GET (§4.1, §6).
const (
	netfilterSubsysCtnetlink = 1
	ipCtnlMsgCtGet           = 1
)

// RawMessage is one decoded conntrack netlink message's payload, ready
// for wireformat.DecodeEntry.
type RawMessage struct {
	Payload []byte
}

// netlinkConn is the subset of *netlink.Conn the reader needs, narrowed
// to an interface so tests can substitute a fake socket without opening
// a real NETLINK_NETFILTER connection (which requires CAP_NET_ADMIN).
type netlinkConn interface {
	Send(netlink.Message) (netlink.Message, error)
	Receive() ([]netlink.Message, error)
	SetDeadline(time.Time) error
	Close() error
}

// Reader dumps the conntrack table over a netlink socket bound to
// NETLINK_NETFILTER, the way ct_stats_get_ct_flow does with libmnl.
type Reader struct {
	log  *obslog.Log
	dial func() (netlinkConn, error)
}

// New returns a Reader that dials NETLINK_NETFILTER on every Dump call.
func New(log *obslog.Log) *Reader {
	return &Reader{
		log: log,
		dial: func() (netlinkConn, error) {
			conn, err := netlink.Dial(unix.NETLINK_NETFILTER, nil)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
	}
}

// newWithDialer is a test seam letting unit tests substitute a fake
// netlinkConn instead of opening a real NETLINK_NETFILTER socket.
func newWithDialer(log *obslog.Log, dial func() (netlinkConn, error)) *Reader {
	return &Reader{log: log, dial: dial}
}

// Dump opens a socket, requests a full dump for family (unix.AF_INET or
// unix.AF_INET6), and streams every reply's payload until the dump's
// Done message. The socket is scoped to this one call: opened at entry,
// closed on every exit path (§4.1, §5).
//
// ctx's deadline, if any, bounds the blocking receive loop — additive
// robustness over the reference, which has none (Design Notes §9,
// SPEC_FULL.md's C1 description).
func (r *Reader) Dump(ctx context.Context, family uint8) ([]RawMessage, error) {
	conn, err := r.dial()
	if err != nil {
		return nil, fmt.Errorf("conntrack: open netlink socket: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			if r.log != nil {
				r.log.Warnf("conntrack: set deadline: %v", err)
			}
		}
	}

	req := netlink.Message{
		Header: netlink.Header{
			Type:  netlink.HeaderType((netfilterSubsysCtnetlink << 8) | ipCtnlMsgCtGet),
			Flags: netlink.Request | netlink.Dump,
		},
		// Generic netfilter header: {family, version=0, res_id=0} (§6).
		Data: []byte{family, 0, 0, 0},
	}

	if _, err := conn.Send(req); err != nil {
		return nil, fmt.Errorf("conntrack: send dump request: %w", err)
	}

	var out []RawMessage
	for {
		msgs, err := conn.Receive()
		if err != nil {
			return nil, fmt.Errorf("conntrack: receive: %w", err)
		}

		done := false
		for _, m := range msgs {
			switch m.Header.Type {
			case netlink.Error:
				if err := checkError(m); err != nil {
					return nil, fmt.Errorf("conntrack: receive: %w", err)
				}
			case netlink.Done:
				done = true
			default:
				out = append(out, RawMessage{Payload: m.Data})
			}
		}
		if done {
			break
		}
	}

	return out, nil
}

// checkError decodes the errno embedded in a netlink.Error message's
// payload. A zero code is an ACK, not a failure; any other code aborts
// the sweep (§4.1: "any receive error is terminal for the sweep").
func checkError(m netlink.Message) error {
	const success = 0

	if len(m.Data) < 4 {
		return fmt.Errorf("conntrack: short netlink error message")
	}
	if c := nlenc.Int32(m.Data[0:4]); c != success {
		return syscall.Errno(-1 * int(c))
	}
	return nil
}
