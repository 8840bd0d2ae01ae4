package types

import (
	"fmt"
	"strings"
)

// CaseEvent is an input to the case state machine
type CaseEvent string

const (
	CaseEventAssign      CaseEvent = "ASSIGN"
	CaseEventUnassign    CaseEvent = "UNASSIGN"
	CaseEventCallForJump CaseEvent = "CALL_FOR_JUMP"
	CaseEventPause       CaseEvent = "PAUSE"
	CaseEventResume      CaseEvent = "RESUME"
	CaseEventSuccess     CaseEvent = "SUCCESS"
	CaseEventClose       CaseEvent = "CLOSE"
)

// AllCaseEvents returns all valid case events
func AllCaseEvents() []CaseEvent {
	return []CaseEvent{
		CaseEventAssign,
		CaseEventUnassign,
		CaseEventCallForJump,
		CaseEventPause,
		CaseEventResume,
		CaseEventSuccess,
		CaseEventClose,
	}
}

// IsValid checks if the case event is valid
func (e CaseEvent) IsValid() bool {
	switch e {
	case CaseEventAssign,
		CaseEventUnassign,
		CaseEventCallForJump,
		CaseEventPause,
		CaseEventResume,
		CaseEventSuccess,
		CaseEventClose:
		return true
	default:
		return false
	}
}

// String returns the string representation of the case event
func (e CaseEvent) String() string {
	return string(e)
}

// CloseReason records why a case left the live board
type CloseReason string

const (
	CloseReasonSuccess CloseReason = "SUCCESS"
	CloseReasonInvalid CloseReason = "INVALID"
	CloseReasonPurged  CloseReason = "PURGED"
	CloseReasonTimeout CloseReason = "TIMEOUT"
)

// IsValid checks if the close reason is valid
func (r CloseReason) IsValid() bool {
	switch r {
	case CloseReasonSuccess, CloseReasonInvalid, CloseReasonPurged, CloseReasonTimeout:
		return true
	default:
		return false
	}
}

// String returns the string representation of the close reason
func (r CloseReason) String() string {
	return string(r)
}

// ParseCloseReason parses a string into a CloseReason, ignoring case
func ParseCloseReason(s string) (CloseReason, error) {
	reason := CloseReason(strings.ToUpper(strings.TrimSpace(s)))
	if !reason.IsValid() {
		return "", fmt.Errorf("invalid close reason: %s", s)
	}
	return reason, nil
}
