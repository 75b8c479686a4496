package message

import (
	"fmt"
	"strings"
)

// Type classifies what kind of message was executed.
type Type uint8

const (
	TypeCommand Type = 1
	TypeQuery   Type = 2
	TypeEvent   Type = 3
)

var typeNames = map[Type]string{
	TypeCommand: "command",
	TypeQuery:   "query",
	TypeEvent:   "event",
}

// String returns the lower-case name of the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// Code is the value stored in the type column.
func (t Type) Code() int16 { return int16(t) }

// TypeFromCode maps a stored column value back to a Type.
func TypeFromCode(code int64) (Type, error) {
	t := Type(code)
	if code < 0 || code > 255 || !t.Valid() {
		return 0, fmt.Errorf("unknown message type code %d", code)
	}
	return t, nil
}

// ParseType accepts a type name (case-insensitive) or its numeric code.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s || fmt.Sprint(uint8(t)) == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown message type %q", ErrInvalidArgument, s)
}

// Status is the processing outcome of a message.
type Status uint8

const (
	StatusNotInitialized Status = 0
	StatusProcessing     Status = 1
	StatusCompleted      Status = 2
	StatusFailed         Status = 3
	StatusRejected       Status = 4
)

var statusNames = map[Status]string{
	StatusNotInitialized: "not_initialized",
	StatusProcessing:     "processing",
	StatusCompleted:      "completed",
	StatusFailed:         "failed",
	StatusRejected:       "rejected",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Code is the value stored in the status column.
func (s Status) Code() int16 { return int16(s) }

// StatusFromCode maps a stored column value back to a Status.
func StatusFromCode(code int64) (Status, error) {
	s := Status(code)
	if code < 0 || code > 255 || !s.Valid() {
		return 0, fmt.Errorf("unknown message status code %d", code)
	}
	return s, nil
}

// ParseStatus accepts a status name (case-insensitive) or its numeric code.
func ParseStatus(str string) (Status, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	for s, name := range statusNames {
		if name == str || fmt.Sprint(uint8(s)) == str {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown message status %q", ErrInvalidArgument, str)
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusRejected
}

// Failing reports whether s records an unsuccessful execution that must carry
// error information.
func (s Status) Failing() bool {
	return s == StatusFailed
}

// CanTransitionTo reports whether a message in status s may move to next.
// Transitions are monotonic: never backwards, never out of a terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.Valid() || s.Terminal() {
		return false
	}
	if next.Terminal() {
		return true
	}
	return next > s
}
