package model

import "errors"

// ErrInvalidTransition is returned when a case event is not legal in the
// case's current state. Wrapped errors carry the state and event as goerr
// values.
var ErrInvalidTransition = errors.New("invalid case transition")
