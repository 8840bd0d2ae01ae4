package irc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fuelrats/ratboard/pkg/domain/model"
	"github.com/fuelrats/ratboard/pkg/domain/types"
	"github.com/fuelrats/ratboard/pkg/usecase"
)

// caseTag is the short chat handle for a case, e.g. "#3 (Nova)"
func caseTag(c *model.Case) string {
	return fmt.Sprintf("#%d (%s)", c.ID, c.Reporter)
}

func statusWord(s types.CaseStatus) string {
	switch s.Normalize() {
	case types.CaseStatusOpen:
		return "open"
	case types.CaseStatusAssigned:
		return "assigned"
	case types.CaseStatusCallForJump:
		return "call for jump"
	case types.CaseStatusPaused:
		return "paused"
	case types.CaseStatusClosed:
		return "closed"
	default:
		return strings.ToLower(string(s))
	}
}

func platformWord(p types.Platform) string {
	if p == types.PlatformUnknown {
		return "unknown platform"
	}
	return string(p)
}

// summaryLine renders one case for !list
func summaryLine(c *model.Case) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s, %s]", caseTag(c), statusWord(c.Status), platformWord(c.Platform))
	if c.System != "" {
		fmt.Fprintf(&sb, " in %q", c.System)
	}
	if len(c.Responders) > 0 {
		fmt.Fprintf(&sb, " rats: %s", strings.Join(c.Responders, ", "))
	}
	if c.Unidentified {
		sb.WriteString(" (unidentified)")
	}
	return sb.String()
}

// detailLines renders a case for !quote: the summary plus every quote
func detailLines(c *model.Case) []string {
	lines := []string{summaryLine(c)}
	for i, q := range c.Quotes {
		lines = append(lines, fmt.Sprintf("  [%d] <%s> %s", i, q.Author, q.Text))
	}
	return lines
}

// errorLine maps usecase errors to a short chat reply
func errorLine(err error) string {
	switch {
	case errors.Is(err, usecase.ErrCaseNotFound):
		return "no such case on the board"
	case errors.Is(err, usecase.ErrDuplicateActiveCase):
		return "that client already has an open case"
	case errors.Is(err, usecase.ErrInvalidTransition):
		return "that doesn't fit the case's current state"
	case errors.Is(err, usecase.ErrPersistenceUnavailable):
		return "board storage is unavailable, changes are not being saved"
	case errors.Is(err, usecase.ErrFactNotFound):
		return "no such fact"
	default:
		return "something went wrong, check the logs"
	}
}
