package gohui

import "errors"

var (
	// ErrDesync is returned when a continuation message arrives without the
	// message it continues, or with a state nibble that makes no sense.
	ErrDesync = errors.New("hui: protocol desync")
	// ErrMalformed is returned for framing or range violations.
	ErrMalformed = errors.New("hui: malformed message")
	// ErrUnrecognized is returned for messages that are not part of HUI.
	ErrUnrecognized = errors.New("hui: unrecognized message")
	// ErrOverwrite reports a zone select that replaced an unconsumed one.
	ErrOverwrite = errors.New("hui: pending zone select overwritten")
	// ErrUnknownChar reports display codes outside the character table.
	ErrUnknownChar = errors.New("hui: unknown display character")
	// ErrWrongDirection is returned when encoding an event the given role
	// never receives.
	ErrWrongDirection = errors.New("hui: event not valid in this direction")
	// ErrOutOfRange is returned when encoding a value the wire cannot carry.
	ErrOutOfRange = errors.New("hui: value out of range")
)
