package address

import (
	"errors"
	"testing"
)

func TestNewNormalizesCase(t *testing.T) {
	a, err := New([4]byte{'a', 'b', 'c', 'd'})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.String() != "ABCD" {
		t.Fatalf("expected ABCD, got %s", a.String())
	}
}

func TestNewRejectsInvalidDigits(t *testing.T) {
	cases := []string{"123G", "12 3", "XYZZ", "!2#4"}
	for _, c := range cases {
		_, err := Parse(c)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%q): expected ErrInvalid, got %v", c, err)
		}
	}
}

func TestNewRejectsBroadcast(t *testing.T) {
	cases := []string{"FFFF", "ffff", "FfFf"}
	for _, c := range cases {
		_, err := Parse(c)
		if !errors.Is(err, ErrBroadcast) {
			t.Errorf("Parse(%q): expected ErrBroadcast, got %v", c, err)
		}
	}
}

func TestBroadcastConstant(t *testing.T) {
	if !Broadcast.IsBroadcast() {
		t.Fatal("Broadcast.IsBroadcast() should be true")
	}
	if Broadcast.String() != "FFFF" {
		t.Fatalf("expected FFFF, got %s", Broadcast.String())
	}
}

func TestRoundTrip(t *testing.T) {
	valid := []string{"0000", "1234", "ABCD", "9F0E", "FFFE"}
	for _, s := range valid {
		a, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error %v", s, err)
		}
		b := a.Bytes()
		reconstructed, err := New(b)
		if err != nil {
			t.Fatalf("New(%v): unexpected error %v", b, err)
		}
		if reconstructed != a {
			t.Fatalf("round trip mismatch: %v != %v", reconstructed, a)
		}
		if reconstructed.String() != s {
			t.Fatalf("expected %s, got %s", s, reconstructed.String())
		}
	}
}

func TestParseRejectsWrongLength(t *testing.T) {
	cases := []string{"", "123", "12345"}
	for _, c := range cases {
		if _, err := Parse(c); !errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%q): expected ErrInvalid, got %v", c, err)
		}
	}
}
