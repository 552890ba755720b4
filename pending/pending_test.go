package pending

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/behrady/opensync/flowtypes"
)

func sample(packets uint64) flowtypes.FlowSample {
	return flowtypes.FlowSample{CtFlow: flowtypes.CtFlow{Pkts: flowtypes.PktInfo{Packets: packets}}}
}

func TestList_AppendDrain(t *testing.T) {
	var l List
	assert.Equal(t, 0, l.Len())

	l.Append(sample(1), sample(2))
	assert.Equal(t, 2, l.Len())

	drained := l.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Drain())
}

func TestList_DrainIsDestructive(t *testing.T) {
	var l List
	l.Append(sample(1))
	first := l.Drain()
	assert.Len(t, first, 1)

	second := l.Drain()
	assert.Nil(t, second)
}

func TestList_ConcurrentAppend(t *testing.T) {
	var l List
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(sample(1))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, l.Len())
}
