package aodv

import (
	"sync"

	"github.com/loraaodv/node/internal/address"
)

// pendingBuffer holds payloads addressed to a destination with no known
// route yet, drained FIFO as soon as a route first becomes available
// (spec.md §3, §4.7). Guarded by an exclusive lock held only for a single
// push or drain, never across I/O.
type pendingBuffer struct {
	mu      sync.Mutex
	waiting map[address.Address][][]byte
}

func newPendingBuffer() *pendingBuffer {
	return &pendingBuffer{waiting: make(map[address.Address][][]byte)}
}

// push enqueues payload for dest.
func (p *pendingBuffer) push(dest address.Address, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waiting[dest] = append(p.waiting[dest], payload)
}

// drain removes and returns every payload queued for dest, in FIFO order.
// Returns nil if nothing was queued.
func (p *pendingBuffer) drain(dest address.Address) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	payloads := p.waiting[dest]
	delete(p.waiting, dest)
	return payloads
}
