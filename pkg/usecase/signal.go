package usecase

import (
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/fuelrats/ratboard/pkg/domain/model"
	"github.com/fuelrats/ratboard/pkg/domain/types"
)

// Detector scans chat lines for the configured rescue trigger. It is pure
// over its inputs and configuration; a non-match is a nil result, never an
// error.
type Detector struct {
	trigger       string
	caseSensitive bool
	prefixes      []string
	clock         clockwork.Clock
}

// DetectorOption configures a Detector
type DetectorOption func(*Detector)

// WithCaseSensitive makes trigger matching exact-case
func WithCaseSensitive() DetectorOption {
	return func(d *Detector) {
		d.caseSensitive = true
	}
}

// WithDetectorClock injects the clock used to timestamp matches
func WithDetectorClock(clock clockwork.Clock) DetectorOption {
	return func(d *Detector) {
		d.clock = clock
	}
}

// NewDetector creates a Detector. prefixes are the command prefixes whose
// lines are never treated as signals, so a bot command quoting the trigger
// does not open a case.
func NewDetector(trigger string, prefixes []string, opts ...DetectorOption) *Detector {
	d := &Detector{
		trigger:  trigger,
		prefixes: prefixes,
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns a SignalMatch when line contains the trigger and is not a
// command. Empty input is a normal non-match.
func (d *Detector) Detect(line, sender, channel string) *model.SignalMatch {
	if line == "" || d.trigger == "" {
		return nil
	}

	for _, prefix := range d.prefixes {
		if prefix != "" && strings.HasPrefix(line, prefix) {
			return nil
		}
	}

	haystack, needle := line, d.trigger
	if !d.caseSensitive {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}
	if !strings.Contains(haystack, needle) {
		return nil
	}

	return &model.SignalMatch{
		Text:     line,
		Reporter: sender,
		Channel:  channel,
		Platform: types.SniffPlatform(line),
		System:   model.SniffSystem(line),
		Time:     d.clock.Now().UTC(),
	}
}
