// Package ipcsink implements the optional inbound IPC sink (§4.7): a
// pull-style endpoint that hands pre-encoded flow-metadata blobs
// verbatim to the aggregator, with no parsing in this subsystem.
package ipcsink

import "github.com/behrady/opensync/internal/obslog"

// UpdateSink is the aggregator's verbatim-blob entry point
// (update_from_encoded in §4.7). It is the same Aggregator collaborator
// used by the aggregator package, narrowed to the one method this
// package needs.
type UpdateSink interface {
	SubmitEncoded(blob []byte) error
}

// Backend is the capability trait behind the IPC transport (Design
// Notes §9): a real implementation receives blobs from a peer process,
// a no-op implementation never yields any. Selecting between them at
// init time is the Go analogue of the reference's dynamic-loader shim.
type Backend interface {
	// Start begins delivering received blobs to sink. Start must not
	// block; delivery happens on a goroutine it owns.
	Start(sink UpdateSink) error
	// Close tears down the backend. Safe to call on an unstarted backend.
	Close() error
}

// noopBackend is selected when the real IPC module is not installed:
// init succeeds and the sink simply never yields messages (§4.7).
type noopBackend struct{}

// NoopBackend returns a Backend that never delivers anything.
func NoopBackend() Backend { return noopBackend{} }

func (noopBackend) Start(UpdateSink) error { return nil }
func (noopBackend) Close() error           { return nil }

// Sink owns the selected backend for the collector's lifetime.
type Sink struct {
	backend Backend
	log     *obslog.Log
}

// New wraps a Backend chosen by the caller — Real when the module
// loaded, NoopBackend() when it didn't (§4.7: "if the backend module is
// not installed, IPC becomes a silent no-op").
func New(backend Backend, log *obslog.Log) *Sink {
	if backend == nil {
		backend = NoopBackend()
	}
	return &Sink{backend: backend, log: log}
}

// Start begins receiving, forwarding every blob to sink.
func (s *Sink) Start(sink UpdateSink) error {
	if err := s.backend.Start(sink); err != nil {
		if s.log != nil {
			s.log.Errorf("ipc backend start: %v", err)
		}
		return err
	}
	return nil
}

// Close tears down the IPC server (§4.8 close).
func (s *Sink) Close() error {
	return s.backend.Close()
}
