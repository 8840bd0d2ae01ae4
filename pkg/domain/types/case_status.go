package types

import "fmt"

// CaseStatus represents the lifecycle state of a rescue case
type CaseStatus string

const (
	CaseStatusOpen        CaseStatus = "OPEN"
	CaseStatusAssigned    CaseStatus = "ASSIGNED"
	CaseStatusCallForJump CaseStatus = "CALL_FOR_JUMP"
	CaseStatusPaused      CaseStatus = "PAUSED"
	CaseStatusClosed      CaseStatus = "CLOSED"
)

// AllCaseStatuses returns all valid case statuses
func AllCaseStatuses() []CaseStatus {
	return []CaseStatus{
		CaseStatusOpen,
		CaseStatusAssigned,
		CaseStatusCallForJump,
		CaseStatusPaused,
		CaseStatusClosed,
	}
}

// IsValid checks if the case status is valid
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusOpen,
		CaseStatusAssigned,
		CaseStatusCallForJump,
		CaseStatusPaused,
		CaseStatusClosed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is accepted
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusClosed
}

// Normalize returns the status, treating empty as CaseStatusOpen for records
// written before the status field existed.
func (s CaseStatus) Normalize() CaseStatus {
	if s == "" {
		return CaseStatusOpen
	}
	return s
}

// String returns the string representation of the case status
func (s CaseStatus) String() string {
	return string(s)
}

// ParseCaseStatus parses a string into a CaseStatus
func ParseCaseStatus(s string) (CaseStatus, error) {
	status := CaseStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid case status: %s", s)
	}
	return status, nil
}
