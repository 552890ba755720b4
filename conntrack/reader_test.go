package conntrack

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/mdlayher/netlink"
	"github.com/mdlayher/netlink/nlenc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	sendErr    error
	recvBatches [][]netlink.Message
	recvErr    error
	recvCalls  int
	closed     bool
}

func (f *fakeConn) Send(m netlink.Message) (netlink.Message, error) {
	return m, f.sendErr
}

func (f *fakeConn) Receive() ([]netlink.Message, error) {
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	if f.recvCalls >= len(f.recvBatches) {
		return nil, errors.New("fakeConn: no more batches queued")
	}
	batch := f.recvBatches[f.recvCalls]
	f.recvCalls++
	return batch, nil
}

func (f *fakeConn) SetDeadline(time.Time) error { return nil }
func (f *fakeConn) Close() error                { f.closed = true; return nil }

func TestDump_StreamsUntilDone(t *testing.T) {
	fc := &fakeConn{
		recvBatches: [][]netlink.Message{
			{{Header: netlink.Header{Type: 100}, Data: []byte("one")}},
			{
				{Header: netlink.Header{Type: 100}, Data: []byte("two")},
				{Header: netlink.Header{Type: netlink.Done}},
			},
		},
	}
	r := newWithDialer(nil, func() (netlinkConn, error) { return fc, nil })

	msgs, err := r.Dump(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte("one"), msgs[0].Payload)
	assert.Equal(t, []byte("two"), msgs[1].Payload)
	assert.True(t, fc.closed)
}

func TestDump_ReceiveErrorIsSweepLevel(t *testing.T) {
	fc := &fakeConn{recvErr: errors.New("boom")}
	r := newWithDialer(nil, func() (netlinkConn, error) { return fc, nil })

	_, err := r.Dump(context.Background(), 2)
	assert.Error(t, err)
	assert.True(t, fc.closed)
}

func TestDump_SendErrorIsSweepLevel(t *testing.T) {
	fc := &fakeConn{sendErr: errors.New("send boom")}
	r := newWithDialer(nil, func() (netlinkConn, error) { return fc, nil })

	_, err := r.Dump(context.Background(), 2)
	assert.Error(t, err)
}

func TestDump_DialFailureIsSweepLevel(t *testing.T) {
	r := newWithDialer(nil, func() (netlinkConn, error) { return nil, errors.New("dial boom") })

	_, err := r.Dump(context.Background(), 2)
	assert.Error(t, err)
}

func TestDump_ZeroCodeNetlinkErrorIsAckNotFailure(t *testing.T) {
	ackData := make([]byte, 4)
	nlenc.PutInt32(ackData, 0)
	fc := &fakeConn{
		recvBatches: [][]netlink.Message{
			{
				{Header: netlink.Header{Type: netlink.Error}, Data: ackData},
				{Header: netlink.Header{Type: 100}, Data: []byte("payload")},
				{Header: netlink.Header{Type: netlink.Done}},
			},
		},
	}
	r := newWithDialer(nil, func() (netlinkConn, error) { return fc, nil })

	msgs, err := r.Dump(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, []byte("payload"), msgs[0].Payload)
}

func TestDump_NonzeroNetlinkErrorAbortsSweep(t *testing.T) {
	errData := make([]byte, 4)
	nlenc.PutInt32(errData, -int32(syscall.ENOENT))
	fc := &fakeConn{
		recvBatches: [][]netlink.Message{
			{{Header: netlink.Header{Type: netlink.Error}, Data: errData}},
		},
	}
	r := newWithDialer(nil, func() (netlinkConn, error) { return fc, nil })

	_, err := r.Dump(context.Background(), 2)
	assert.Error(t, err)
	assert.True(t, fc.closed)
}
