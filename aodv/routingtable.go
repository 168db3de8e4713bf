package aodv

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/loraaodv/node/internal/address"
)

// RouteEntry is a live route to a destination (spec.md §3).
type RouteEntry struct {
	DestinationSequence uint16
	NextHop             address.Address
	HopCount            uint8
	LastSeen            time.Time
}

// tableEntry is the tagged union backing RoutingTable's map: either a
// live Route, or an Unreachable marker retaining the last known
// sequence so a future RREQ can still advertise it correctly.
type tableEntry struct {
	route        *RouteEntry // nil if unreachable
	lastKnownSeq uint16
}

// RoutingTable maps destination addresses to their current route, guarded
// by a single read/write mutex (spec.md §5: read path is get_route and
// neighbor enumeration, write path is every mutation; readers never take
// the write lock).
type RoutingTable struct {
	own address.Address

	mu      sync.RWMutex
	entries map[address.Address]tableEntry
}

// NewRoutingTable builds a table seeded with own's self-route:
// next_hop=self, hop_count=0, sequence=0, per spec.md §3.
func NewRoutingTable(own address.Address) *RoutingTable {
	t := &RoutingTable{own: own, entries: make(map[address.Address]tableEntry)}
	t.entries[own] = tableEntry{route: &RouteEntry{
		DestinationSequence: 0,
		NextHop:             own,
		HopCount:            0,
		LastSeen:            time.Time{},
	}}
	return t
}

// GetRoute returns the current live route to dest, or ok=false if there
// is none (absent or Unreachable).
func (t *RoutingTable) GetRoute(dest address.Address) (RouteEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, found := t.entries[dest]
	if !found || e.route == nil {
		return RouteEntry{}, false
	}
	return *e.route, true
}

// GetLastKnownSequence returns the sequence number recorded for dest,
// from either a live route or an Unreachable marker.
func (t *RoutingTable) GetLastKnownSequence(dest address.Address) (uint16, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, found := t.entries[dest]
	if !found {
		return 0, false
	}
	if e.route != nil {
		return e.route.DestinationSequence, true
	}
	return e.lastKnownSeq, true
}

// AddRoute installs a route to dest iff there is no entry, the existing
// entry is Unreachable, or seq is strictly newer than the existing live
// route's sequence. It returns the installed route and changed=true only
// when this is an observable change (a new route, or one whose fields
// other than LastSeen differ), which is the signal callers use to drain
// the pending-message buffer.
func (t *RoutingTable) AddRoute(dest address.Address, seq uint16, nextHop address.Address, hopCount uint8) (RouteEntry, bool) {
	if dest == t.own {
		return RouteEntry{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	existing, found := t.entries[dest]
	if found && existing.route != nil && !newer(seq, existing.route.DestinationSequence) {
		return RouteEntry{}, false
	}

	newRoute := RouteEntry{
		DestinationSequence: seq,
		NextHop:             nextHop,
		HopCount:            hopCount,
		LastSeen:            time.Now(),
	}

	changed := true
	if found && existing.route != nil {
		prev := *existing.route
		changed = prev.DestinationSequence != newRoute.DestinationSequence ||
			prev.NextHop != newRoute.NextHop ||
			prev.HopCount != newRoute.HopCount
	}

	t.entries[dest] = tableEntry{route: &newRoute}
	return newRoute, changed
}

// RemoveRoute invalidates the route to dest iff its current next hop is
// via, replacing it with an Unreachable marker retaining the old
// sequence. Returns whether the table actually changed.
func (t *RoutingTable) RemoveRoute(dest address.Address, via address.Address) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, found := t.entries[dest]
	if !found || existing.route == nil || existing.route.NextHop != via {
		return false
	}

	t.entries[dest] = tableEntry{lastKnownSeq: existing.route.DestinationSequence}
	return true
}

// Neighbors returns every destination reachable in exactly one hop
// (destination == next_hop), excluding the own-address entry.
func (t *RoutingTable) Neighbors() map[address.Address]RouteEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[address.Address]RouteEntry)
	for dest, e := range t.entries {
		if dest == t.own || e.route == nil {
			continue
		}
		if e.route.NextHop == dest {
			out[dest] = *e.route
		}
	}
	return out
}

// RoutesWithNextHop returns every (destination, route) pair whose next
// hop is via, used to expire all routes that depended on a dead neighbor.
func (t *RoutingTable) RoutesWithNextHop(via address.Address) map[address.Address]RouteEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[address.Address]RouteEntry)
	for dest, e := range t.entries {
		if e.route != nil && e.route.NextHop == via {
			out[dest] = *e.route
		}
	}
	return out
}

// String renders a snapshot of the table for operational logging, in the
// spirit of the original controller's routing-table dump. Never consulted
// by protocol logic.
func (t *RoutingTable) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var b strings.Builder
	b.WriteString("+------+--------+------+----------+\n")
	b.WriteString("| dest | nexthop| hops | seq      |\n")
	b.WriteString("+------+--------+------+----------+\n")
	for dest, e := range t.entries {
		if e.route == nil {
			fmt.Fprintf(&b, "| %s | (unreachable, last seq %d)\n", dest, e.lastKnownSeq)
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %4d | %8d |\n", dest, e.route.NextHop, e.route.HopCount, e.route.DestinationSequence)
	}
	b.WriteString("+------+--------+------+----------+")
	return b.String()
}
