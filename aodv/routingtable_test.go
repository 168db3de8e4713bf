package aodv

import (
	"testing"

	"github.com/loraaodv/node/internal/address"
)

func TestNewRoutingTableSeedsOwnAddress(t *testing.T) {
	own := address.MustParse("4290")
	tbl := NewRoutingTable(own)

	route, ok := tbl.GetRoute(own)
	if !ok {
		t.Fatal("expected own-address route to be present")
	}
	if route.NextHop != own || route.HopCount != 0 {
		t.Fatalf("unexpected own route: %+v", route)
	}
}

func TestAddRouteRejectsOwnAddress(t *testing.T) {
	own := address.MustParse("4290")
	tbl := NewRoutingTable(own)

	_, changed := tbl.AddRoute(own, 99, address.MustParse("1234"), 1)
	if changed {
		t.Fatal("expected no-op when adding a route to self")
	}
	route, _ := tbl.GetRoute(own)
	if route.NextHop != own {
		t.Fatal("own route was overwritten")
	}
}

func TestAddRouteAcceptsFirstInsert(t *testing.T) {
	tbl := NewRoutingTable(address.MustParse("4290"))
	dest := address.MustParse("1234")

	route, changed := tbl.AddRoute(dest, 5, address.MustParse("ABCD"), 2)
	if !changed {
		t.Fatal("expected first insert to be a change")
	}
	if route.DestinationSequence != 5 || route.HopCount != 2 {
		t.Fatalf("unexpected route: %+v", route)
	}
}

func TestAddRouteRejectsEqualOrOlderSequence(t *testing.T) {
	tbl := NewRoutingTable(address.MustParse("4290"))
	dest := address.MustParse("1234")

	tbl.AddRoute(dest, 5, address.MustParse("ABCD"), 2)

	if _, changed := tbl.AddRoute(dest, 5, address.MustParse("EEEE"), 1); changed {
		t.Fatal("equal sequence must not overwrite")
	}
	if _, changed := tbl.AddRoute(dest, 3, address.MustParse("EEEE"), 1); changed {
		t.Fatal("older sequence must not overwrite")
	}

	route, _ := tbl.GetRoute(dest)
	if route.NextHop != address.MustParse("ABCD") {
		t.Fatalf("route was overwritten despite stale sequence: %+v", route)
	}
}

func TestAddRouteAcceptsStrictlyNewerSequence(t *testing.T) {
	tbl := NewRoutingTable(address.MustParse("4290"))
	dest := address.MustParse("1234")

	tbl.AddRoute(dest, 5, address.MustParse("ABCD"), 2)
	route, changed := tbl.AddRoute(dest, 6, address.MustParse("EEEE"), 1)
	if !changed {
		t.Fatal("strictly newer sequence must win")
	}
	if route.NextHop != address.MustParse("EEEE") || route.HopCount != 1 {
		t.Fatalf("unexpected route after update: %+v", route)
	}
}

func TestAddRouteAfterUnreachableAlwaysAccepted(t *testing.T) {
	tbl := NewRoutingTable(address.MustParse("4290"))
	dest := address.MustParse("1234")
	via := address.MustParse("ABCD")

	tbl.AddRoute(dest, 10, via, 1)
	tbl.RemoveRoute(dest, via)

	// Even an equal-or-older sequence is accepted once the entry is
	// Unreachable, since there is no live route to compare against.
	route, changed := tbl.AddRoute(dest, 10, via, 1)
	if !changed {
		t.Fatal("expected add_route to accept after Unreachable")
	}
	if route.NextHop != via {
		t.Fatalf("unexpected route: %+v", route)
	}
}

func TestRemoveRouteOnlyWhenNextHopMatches(t *testing.T) {
	tbl := NewRoutingTable(address.MustParse("4290"))
	dest := address.MustParse("1234")
	via := address.MustParse("ABCD")

	tbl.AddRoute(dest, 5, via, 1)

	if tbl.RemoveRoute(dest, address.MustParse("EEEE")) {
		t.Fatal("remove_route must be a no-op when next_hop differs")
	}
	if _, ok := tbl.GetRoute(dest); !ok {
		t.Fatal("route should still be present")
	}

	if !tbl.RemoveRoute(dest, via) {
		t.Fatal("remove_route should succeed when next_hop matches")
	}
	if _, ok := tbl.GetRoute(dest); ok {
		t.Fatal("route should be gone after removal")
	}

	seq, ok := tbl.GetLastKnownSequence(dest)
	if !ok || seq != 5 {
		t.Fatalf("expected last known sequence to be retained, got %d, ok=%v", seq, ok)
	}
}

func TestNeighborsExcludesSelfAndMultiHop(t *testing.T) {
	own := address.MustParse("4290")
	tbl := NewRoutingTable(own)

	neighbor := address.MustParse("ABCD")
	multiHop := address.MustParse("1234")

	tbl.AddRoute(neighbor, 1, neighbor, 1)
	tbl.AddRoute(multiHop, 1, neighbor, 2)

	neighbors := tbl.Neighbors()
	if len(neighbors) != 1 {
		t.Fatalf("expected exactly one neighbor, got %d", len(neighbors))
	}
	if _, ok := neighbors[neighbor]; !ok {
		t.Fatalf("expected %v to be a neighbor", neighbor)
	}
	if _, ok := neighbors[multiHop]; ok {
		t.Fatal("multi-hop destination must not appear as a neighbor")
	}
	if _, ok := neighbors[own]; ok {
		t.Fatal("own address must never appear as a neighbor")
	}
}

func TestRoutesWithNextHopFindsAllDependents(t *testing.T) {
	tbl := NewRoutingTable(address.MustParse("4290"))
	via := address.MustParse("BEEF")

	destA := address.MustParse("AAAA")
	destB := address.MustParse("BBBB")
	destC := address.MustParse("CCCC")

	tbl.AddRoute(destA, 1, via, 1)
	tbl.AddRoute(destB, 1, via, 2)
	tbl.AddRoute(destC, 1, address.MustParse("1111"), 1)

	dependents := tbl.RoutesWithNextHop(via)
	if len(dependents) != 2 {
		t.Fatalf("expected 2 dependents, got %d", len(dependents))
	}
	if _, ok := dependents[destA]; !ok {
		t.Fatal("missing destA")
	}
	if _, ok := dependents[destB]; !ok {
		t.Fatal("missing destB")
	}
	if _, ok := dependents[destC]; ok {
		t.Fatal("destC should not be a dependent of via")
	}
}
