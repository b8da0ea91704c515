package core

import "errors"

// ErrInvalidArgument marks caller mistakes (negative demand, bad thresholds)
// as opposed to malformed upstream data, which is always tolerated silently.
// Callers can match it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")
