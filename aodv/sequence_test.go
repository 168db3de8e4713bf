package aodv

import (
	"sync"
	"testing"
)

func TestNewerHandlesWraparound(t *testing.T) {
	cases := []struct {
		a, b uint16
		want bool
	}{
		{1, 0, true},
		{0, 1, false},
		{0, 0xFFFF, true},
		{0xFFFF, 0, false},
		{5, 5, false},
	}
	for _, c := range cases {
		if got := newer(c.a, c.b); got != c.want {
			t.Errorf("newer(%d, %d) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestSequenceCounterNextIsMonotone(t *testing.T) {
	var c sequenceCounter
	if v := c.next(); v != 1 {
		t.Fatalf("first next() = %d, want 1", v)
	}
	if v := c.next(); v != 2 {
		t.Fatalf("second next() = %d, want 2", v)
	}
}

func TestSequenceCounterObserveNeverRegresses(t *testing.T) {
	var c sequenceCounter
	c.observe(100)
	if c.load() != 100 {
		t.Fatalf("load() = %d, want 100", c.load())
	}
	c.observe(50)
	if c.load() != 100 {
		t.Fatalf("observe regressed counter to %d", c.load())
	}
	c.observe(101)
	if c.load() != 101 {
		t.Fatalf("load() = %d, want 101", c.load())
	}
}

func TestSequenceCounterConcurrentObserveNeverRegresses(t *testing.T) {
	var c sequenceCounter
	var wg sync.WaitGroup
	values := []uint16{10, 500, 20, 999, 1, 1000, 2}
	for _, v := range values {
		wg.Add(1)
		go func(v uint16) {
			defer wg.Done()
			c.observe(v)
		}(v)
	}
	wg.Wait()
	if c.load() != 1000 {
		t.Fatalf("load() = %d, want 1000", c.load())
	}
}

func TestRequestIDCounterIsMonotone(t *testing.T) {
	var c requestIDCounter
	first := c.next()
	second := c.next()
	if second != first+1 {
		t.Fatalf("expected monotone increment, got %d then %d", first, second)
	}
}
