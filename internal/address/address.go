// Package address implements the 16-bit node address used by the AT link
// and the AODV routing layer: four ASCII hex digits, upper-cased on input,
// with FFFF reserved as the broadcast address.
package address

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when an address contains a byte outside [0-9A-Fa-f].
var ErrInvalid = errors.New("address: invalid hex digit")

// ErrBroadcast is returned when FFFF is used where a unicast address is required.
var ErrBroadcast = errors.New("address: FFFF is reserved for broadcast")

// Broadcast is the distinguished address meaning "every neighbor".
var Broadcast = Address{'F', 'F', 'F', 'F'}

// Address is an immutable 4-ASCII-hex-digit node identifier.
type Address [4]byte

// New validates and normalizes four raw bytes into an Address. Lowercase hex
// digits are normalized to uppercase. FFFF (in any case) is rejected with
// ErrBroadcast; callers that want the broadcast address should use Broadcast
// directly.
func New(raw [4]byte) (Address, error) {
	var out Address
	for i, b := range raw {
		switch {
		case b >= '0' && b <= '9':
			out[i] = b
		case b >= 'A' && b <= 'F':
			out[i] = b
		case b >= 'a' && b <= 'f':
			out[i] = b - 'a' + 'A'
		default:
			return Address{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
		}
	}
	if out == Broadcast {
		return Address{}, ErrBroadcast
	}
	return out, nil
}

// Parse is New applied to a string's bytes.
func Parse(s string) (Address, error) {
	if len(s) != 4 {
		return Address{}, fmt.Errorf("%w: %q is not 4 characters", ErrInvalid, s)
	}
	return New([4]byte{s[0], s[1], s[2], s[3]})
}

// MustParse is Parse but panics on error; intended for literals known at
// compile time (tests, constants).
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns the four raw ASCII bytes of the address.
func (a Address) Bytes() [4]byte { return a }

// IsBroadcast reports whether a is the broadcast address.
func (a Address) IsBroadcast() bool { return a == Broadcast }

// String implements fmt.Stringer.
func (a Address) String() string { return string(a[:]) }
