package aodv

import "errors"

// Error taxonomy for the packet codec and controller (spec §7), mirroring
// atlink's own sentinels for the same taxonomy applied to this layer.
var (
	// ErrInvalidData marks malformed ASCII, a bad hex digit, a bad packet
	// prefix, or a length violation in a packet body.
	ErrInvalidData = errors.New("aodv: invalid data")

	// ErrUnexpectedEOF marks an empty packet body. A non-empty body that
	// is shorter than its packet type's length is reported as
	// ErrInvalidData, not as ErrUnexpectedEOF.
	ErrUnexpectedEOF = errors.New("aodv: unexpected EOF")
)
