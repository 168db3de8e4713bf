package aodv

import (
	"sync"

	"github.com/loraaodv/node/internal/address"
)

// seenKey identifies one RREQ by its end-to-end origin and request ID.
type seenKey struct {
	origin address.Address
	id     uint16
}

// seenRequests is an insertion-only set of (origin, request_id) pairs,
// preventing re-forwarding of an already-seen RREQ (spec.md §3, §4.7).
// No eviction is required for correctness within a session; this
// implementation never evicts, matching the spec's stated policy leeway.
type seenRequests struct {
	mu   sync.Mutex
	seen map[seenKey]struct{}
}

func newSeenRequests() *seenRequests {
	return &seenRequests{seen: make(map[seenKey]struct{})}
}

// observe records (origin, id) and reports whether it had already been
// seen before this call.
func (s *seenRequests) observe(origin address.Address, id uint16) (alreadySeen bool) {
	key := seenKey{origin: origin, id: id}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return true
	}
	s.seen[key] = struct{}{}
	return false
}
