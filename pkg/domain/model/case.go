package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/domain/types"
)

// Quote is a chat line attached to a case: the original signal plus any
// injected notes.
type Quote struct {
	Author string
	Text   string
	Time   time.Time
}

// Case represents a tracked rescue from first signal to closure. All
// mutation goes through the board; these methods only enforce the state
// machine on a single instance.
type Case struct {
	ID           int
	ArchiveID    string // assigned when the case is archived
	Reporter     string
	Channel      string
	System       string
	Platform     types.Platform
	Unidentified bool
	Status       types.CaseStatus
	PausedFrom   types.CaseStatus
	CloseReason  types.CloseReason
	Responders   []string
	Quotes       []Quote
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewCase creates an open case from a detected or manually reported signal
func NewCase(id int, reporter, rawText, channel string, at time.Time) *Case {
	platform := types.SniffPlatform(rawText)
	c := &Case{
		ID:           id,
		Reporter:     reporter,
		Channel:      channel,
		Platform:     platform,
		System:       SniffSystem(rawText),
		Unidentified: platform == types.PlatformUnknown,
		Status:       types.CaseStatusOpen,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	if rawText != "" {
		c.Quotes = append(c.Quotes, Quote{Author: reporter, Text: rawText, Time: at})
	}
	return c
}

func (c *Case) invalid(event types.CaseEvent) error {
	return goerr.Wrap(ErrInvalidTransition, "event not allowed in current state",
		goerr.V("case_id", c.ID),
		goerr.V("status", c.Status),
		goerr.V("event", event),
	)
}

// Assign adds a responder. The first responder moves the case from Open to
// Assigned. Re-assigning the same responder is a no-op, not an error.
func (c *Case) Assign(responder string, at time.Time) (added bool, err error) {
	switch c.Status.Normalize() {
	case types.CaseStatusOpen, types.CaseStatusAssigned, types.CaseStatusCallForJump:
	default:
		return false, c.invalid(types.CaseEventAssign)
	}

	for _, r := range c.Responders {
		if r == responder {
			return false, nil
		}
	}

	c.Responders = append(c.Responders, responder)
	if c.Status.Normalize() == types.CaseStatusOpen {
		c.Status = types.CaseStatusAssigned
	}
	c.UpdatedAt = at
	return true, nil
}

// Unassign removes a responder. Removing the last responder returns the case
// to Open; on a paused case the state it will resume into is downgraded the
// same way. Removing a responder that was never assigned is a no-op.
func (c *Case) Unassign(responder string, at time.Time) (removed bool, err error) {
	if c.Status.IsTerminal() {
		return false, c.invalid(types.CaseEventUnassign)
	}

	for i, r := range c.Responders {
		if r == responder {
			c.Responders = append(c.Responders[:i], c.Responders[i+1:]...)
			if len(c.Responders) == 0 {
				switch {
				case c.Status == types.CaseStatusAssigned:
					c.Status = types.CaseStatusOpen
				case c.Status == types.CaseStatusPaused && c.PausedFrom != types.CaseStatusOpen:
					c.PausedFrom = types.CaseStatusOpen
				}
			}
			c.UpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

// Apply drives the state machine for the pure lifecycle events. Assign,
// unassign and close carry extra data and have dedicated methods; the board
// routes them there.
func (c *Case) Apply(event types.CaseEvent, at time.Time) error {
	if c.Status.IsTerminal() {
		return c.invalid(event)
	}

	switch event {
	case types.CaseEventCallForJump:
		if c.Status != types.CaseStatusAssigned {
			return c.invalid(event)
		}
		c.Status = types.CaseStatusCallForJump

	case types.CaseEventPause:
		switch c.Status.Normalize() {
		case types.CaseStatusOpen, types.CaseStatusAssigned, types.CaseStatusCallForJump:
			c.PausedFrom = c.Status.Normalize()
			c.Status = types.CaseStatusPaused
		default:
			return c.invalid(event)
		}

	case types.CaseEventResume:
		if c.Status != types.CaseStatusPaused {
			return c.invalid(event)
		}
		c.Status = c.PausedFrom.Normalize()
		c.PausedFrom = ""

	case types.CaseEventSuccess:
		if c.Status != types.CaseStatusCallForJump {
			return c.invalid(event)
		}
		c.Status = types.CaseStatusClosed
		c.CloseReason = types.CloseReasonSuccess

	default:
		return c.invalid(event)
	}

	c.UpdatedAt = at
	return nil
}

// Close moves the case to its terminal state. Legal from any non-terminal
// state.
func (c *Case) Close(reason types.CloseReason, at time.Time) error {
	if c.Status.IsTerminal() {
		return c.invalid(types.CaseEventClose)
	}
	c.Status = types.CaseStatusClosed
	c.CloseReason = reason
	c.UpdatedAt = at
	return nil
}

// AddQuote appends a note to the case
func (c *Case) AddQuote(author, text string, at time.Time) {
	c.Quotes = append(c.Quotes, Quote{Author: author, Text: text, Time: at})
	c.UpdatedAt = at
}

// SetPlatform records the reporter's platform and clears the Unidentified
// flag.
func (c *Case) SetPlatform(p types.Platform, at time.Time) {
	c.Platform = p
	c.Unidentified = false
	c.UpdatedAt = at
}

// IsAssigned reports whether the responder is on the case
func (c *Case) IsAssigned(responder string) bool {
	for _, r := range c.Responders {
		if r == responder {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can never mutate board-owned state
func (c *Case) Clone() *Case {
	copied := *c
	copied.Responders = make([]string, len(c.Responders))
	copy(copied.Responders, c.Responders)
	copied.Quotes = make([]Quote, len(c.Quotes))
	copy(copied.Quotes, c.Quotes)
	return &copied
}
