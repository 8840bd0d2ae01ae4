package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/fuelrats/ratboard/pkg/domain/types"
)

// SignalMatch is an ephemeral record of a rescue trigger seen in chat. It is
// consumed immediately by the board and never persisted.
type SignalMatch struct {
	Text     string
	Reporter string
	Channel  string
	Platform types.Platform
	System   string
	Time     time.Time
}

var systemHintPattern = regexp.MustCompile(`(?i)\bsystem:?\s+([^,(\-]+)`)

// SniffSystem extracts a star system hint from free-form signal text, e.g.
// "CMDR Ada - System: Fuelum - Platform: PC". Returns "" when no hint is
// present.
func SniffSystem(text string) string {
	m := systemHintPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
