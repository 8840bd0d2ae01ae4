package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/fuelrats/ratboard/pkg/domain/types"
)

func TestCaseStatus(t *testing.T) {
	t.Run("all statuses are valid", func(t *testing.T) {
		for _, s := range types.AllCaseStatuses() {
			gt.Bool(t, s.IsValid()).True()
		}
	})

	t.Run("unknown status is invalid", func(t *testing.T) {
		gt.Bool(t, types.CaseStatus("LOST").IsValid()).False()
	})

	t.Run("only closed is terminal", func(t *testing.T) {
		for _, s := range types.AllCaseStatuses() {
			gt.Value(t, s.IsTerminal()).Equal(s == types.CaseStatusClosed)
		}
	})

	t.Run("normalize treats empty as open", func(t *testing.T) {
		gt.Value(t, types.CaseStatus("").Normalize()).Equal(types.CaseStatusOpen)
		gt.Value(t, types.CaseStatusPaused.Normalize()).Equal(types.CaseStatusPaused)
	})

	t.Run("parse round-trips", func(t *testing.T) {
		parsed, err := types.ParseCaseStatus("CALL_FOR_JUMP")
		gt.NoError(t, err).Required()
		gt.Value(t, parsed).Equal(types.CaseStatusCallForJump)

		_, err = types.ParseCaseStatus("call_for_jump")
		gt.Error(t, err)
	})
}

func TestCaseEvent(t *testing.T) {
	t.Run("all events are valid", func(t *testing.T) {
		for _, e := range types.AllCaseEvents() {
			gt.Bool(t, e.IsValid()).True()
		}
	})

	t.Run("unknown event is invalid", func(t *testing.T) {
		gt.Bool(t, types.CaseEvent("REBOOT").IsValid()).False()
	})
}

func TestCloseReason(t *testing.T) {
	t.Run("parse known reasons", func(t *testing.T) {
		reason, err := types.ParseCloseReason("SUCCESS")
		gt.NoError(t, err).Required()
		gt.Value(t, reason).Equal(types.CloseReasonSuccess)
	})

	t.Run("parse ignores case, as typed in chat", func(t *testing.T) {
		for arg, want := range map[string]types.CloseReason{
			"invalid":  types.CloseReasonInvalid,
			"Success":  types.CloseReasonSuccess,
			" purged ": types.CloseReasonPurged,
			"timeout":  types.CloseReasonTimeout,
		} {
			reason, err := types.ParseCloseReason(arg)
			gt.NoError(t, err).Required()
			gt.Value(t, reason).Equal(want)
		}
	})

	t.Run("parse rejects unknown reason", func(t *testing.T) {
		_, err := types.ParseCloseReason("BOREDOM")
		gt.Error(t, err)
	})
}

func TestSniffPlatform(t *testing.T) {
	cases := []struct {
		name string
		text string
		want types.Platform
	}{
		{"plain pc tag", "ratsignal pc cmdr stuck", types.PlatformPC},
		{"bracketed xbox tag", "ratsignal [xb1] out of fuel", types.PlatformXbox},
		{"playstation long form", "help me playstation please", types.PlatformPlaystation},
		{"no tag", "ratsignal cmdr stranded", types.PlatformUnknown},
		{"tag inside a word is ignored", "expstorm brewing", types.PlatformUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, types.SniffPlatform(tc.text)).Equal(tc.want)
		})
	}
}

func TestParsePlatform(t *testing.T) {
	p, ok := types.ParsePlatform(" XBOX ")
	gt.Bool(t, ok).True()
	gt.Value(t, p).Equal(types.PlatformXbox)

	_, ok = types.ParsePlatform("amiga")
	gt.Bool(t, ok).False()
}
