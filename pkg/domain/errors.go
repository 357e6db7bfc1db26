package domain

import "errors"

// ErrUnknownAction is returned when an OpID has no catalog entry.
// The original UI silently ignored unrecognized selections; here the
// gap is surfaced as an explicit error.
var ErrUnknownAction = errors.New("unknown action")

// ErrVariableNotFound is returned when a selected variable ID is not
// in the pool.
var ErrVariableNotFound = errors.New("variable not found")

// ErrTranscriptNotFound is returned when a session transcript does not
// exist in the store.
var ErrTranscriptNotFound = errors.New("transcript not found")

// ErrEmptySelection is returned when an action is dispatched with no
// selected variables.
var ErrEmptySelection = errors.New("no variables selected")
