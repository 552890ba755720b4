// Package pending holds the flow samples of one collection sweep until
// they are submitted: samples built from the decoded conntrack dumps are
// appended to it, and the flush at the end of the same sweep drains it
// wholesale (§4.4 of the design).
package pending

import (
	"sync"

	"github.com/behrady/opensync/flowtypes"
)

// List is a goroutine-safe FIFO of flow samples. The zero value is
// ready to use.
type List struct {
	mu    sync.Mutex
	items []flowtypes.FlowSample
}

// Append adds samples to the end of the list. Safe for concurrent use
// with Drain and other Append calls.
func (l *List) Append(samples ...flowtypes.FlowSample) {
	if len(samples) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, samples...)
}

// Len reports the number of samples currently queued.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Drain removes and returns every queued sample, leaving the list
// empty. The returned slice is owned by the caller; the list holds no
// further reference to it (Testable Property: a drained list never
// re-reports a sample).
func (l *List) Drain() []flowtypes.FlowSample {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return nil
	}
	out := l.items
	l.items = nil
	return out
}
