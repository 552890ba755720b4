package ipcsink

import (
	"fmt"
	"sync"

	"github.com/pebbe/zmq4"

	"github.com/behrady/opensync/internal/obslog"
)

// ZMQBackend is the real IPC transport: a ZeroMQ PULL socket bound to a
// fixed ipc:// address, matching the original imc.c's IMC_PULL endpoint
// (ipc:///tmp/imc_fsm2fcm). Present-but-broken (bind failure) is an init
// error per §6's dynamic-load contract; a missing zmq4 shared library at
// process start is instead represented by never constructing a
// ZMQBackend at all (the caller falls back to NoopBackend()).
type ZMQBackend struct {
	endpoint string
	log      *obslog.Log

	mu      sync.Mutex
	sock    *zmq4.Socket
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// NewZMQBackend binds a PULL socket at endpoint (e.g.
// "ipc:///tmp/imc_fsm2fcm"). Bind failure is returned immediately —
// "present but broken" per §6 — rather than deferred to Start.
func NewZMQBackend(endpoint string, log *obslog.Log) (*ZMQBackend, error) {
	sock, err := zmq4.NewSocket(zmq4.PULL)
	if err != nil {
		return nil, fmt.Errorf("ipcsink: new socket: %w", err)
	}
	if err := sock.Bind(endpoint); err != nil {
		sock.Close()
		return nil, fmt.Errorf("ipcsink: bind %s: %w", endpoint, err)
	}
	return &ZMQBackend{endpoint: endpoint, log: log, sock: sock}, nil
}

// Start launches the receive loop on its own goroutine, forwarding each
// received blob to sink verbatim (§4.7: "no parsing in this subsystem").
func (z *ZMQBackend) Start(sink UpdateSink) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.started {
		return fmt.Errorf("ipcsink: backend already started")
	}
	z.started = true
	z.stopCh = make(chan struct{})
	z.doneCh = make(chan struct{})

	go z.recvLoop(sink)
	return nil
}

func (z *ZMQBackend) recvLoop(sink UpdateSink) {
	defer close(z.doneCh)
	for {
		select {
		case <-z.stopCh:
			return
		default:
		}

		blob, err := z.sock.RecvBytes(0)
		if err != nil {
			if z.log != nil {
				z.log.Debugf("ipcsink recv: %v", err)
			}
			continue
		}
		if err := sink.SubmitEncoded(blob); err != nil && z.log != nil {
			z.log.Warnf("ipcsink submit: %v", err)
		}
	}
}

// Close stops the receive loop and releases the socket.
func (z *ZMQBackend) Close() error {
	z.mu.Lock()
	started := z.started
	z.mu.Unlock()

	if started {
		close(z.stopCh)
	}
	err := z.sock.Close()
	if started {
		<-z.doneCh
	}
	return err
}
