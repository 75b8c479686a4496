package message

import "errors"

// ErrInvalidArgument reports a missing or malformed argument detected before
// any I/O is attempted. Callers match it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")
