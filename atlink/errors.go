package atlink

import "errors"

// Error taxonomy for the AT link driver (spec §7). These are sentinel values
// meant to be wrapped with fmt.Errorf("...: %w", ...) and tested with
// errors.Is.
var (
	// ErrInvalidData marks malformed ASCII, a bad hex digit, a bad frame
	// prefix, or a length/charset violation.
	ErrInvalidData = errors.New("atlink: invalid data")

	// ErrUnexpectedEOF marks the link closing mid-frame.
	ErrUnexpectedEOF = errors.New("atlink: unexpected EOF")

	// ErrProtocol marks an unexpected reply during a send dialogue (e.g.
	// "AT,ERR:..." where "AT,OK" was expected).
	ErrProtocol = errors.New("atlink: unexpected radio reply")
)
