package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/fuelrats/ratboard/pkg/domain/model"
	"github.com/fuelrats/ratboard/pkg/domain/types"
)

var t0 = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func TestNewCase(t *testing.T) {
	t.Run("starts open with the signal quoted", func(t *testing.T) {
		c := model.NewCase(4, "Nova", "ratsignal pc cmdr stranded", "#rescue", t0)

		gt.Value(t, c.Status).Equal(types.CaseStatusOpen)
		gt.Value(t, c.Reporter).Equal("Nova")
		gt.Value(t, c.Platform).Equal(types.PlatformPC)
		gt.Bool(t, c.Unidentified).False()
		gt.Array(t, c.Quotes).Length(1)
		gt.Value(t, c.Quotes[0].Text).Equal("ratsignal pc cmdr stranded")
	})

	t.Run("missing platform tag sets unidentified", func(t *testing.T) {
		c := model.NewCase(0, "Nova", "ratsignal cmdr stranded", "#rescue", t0)

		gt.Value(t, c.Platform).Equal(types.PlatformUnknown)
		gt.Bool(t, c.Unidentified).True()
	})

	t.Run("system hint from the signal text", func(t *testing.T) {
		c := model.NewCase(0, "Nova", "RATSIGNAL - System: LHS 3447 - Platform: XB", "#rescue", t0)

		gt.Value(t, c.System).Equal("LHS 3447")
		gt.Value(t, c.Platform).Equal(types.PlatformXbox)
	})
}

func TestSniffSystem(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{text: "RATSIGNAL - CMDR Nova - System: Fuelum - Platform: PC", want: "Fuelum"},
		{text: "ratsignal stuck in system Eravate, fuel low", want: "Eravate"},
		{text: "ratsignal pc cmdr stranded", want: ""},
		{text: "", want: ""},
	}
	for _, tc := range cases {
		gt.Value(t, model.SniffSystem(tc.text)).Equal(tc.want)
	}
}

func TestCaseAssign(t *testing.T) {
	t.Run("first responder moves open to assigned", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)

		added, err := c.Assign("Ada", t0.Add(time.Minute))
		gt.NoError(t, err).Required()
		gt.Bool(t, added).True()
		gt.Value(t, c.Status).Equal(types.CaseStatusAssigned)
		gt.Array(t, c.Responders).Length(1)
	})

	t.Run("re-assigning same responder is idempotent", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)

		_, err := c.Assign("Ada", t0)
		gt.NoError(t, err).Required()
		added, err := c.Assign("Ada", t0)
		gt.NoError(t, err).Required()
		gt.Bool(t, added).False()
		gt.Array(t, c.Responders).Length(1)
	})

	t.Run("assign on closed case fails", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)
		gt.NoError(t, c.Close(types.CloseReasonInvalid, t0)).Required()

		_, err := c.Assign("Ada", t0)
		gt.Bool(t, errors.Is(err, model.ErrInvalidTransition)).True()
	})
}

func TestCaseUnassign(t *testing.T) {
	t.Run("assign then unassign round-trips to open", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)

		_, err := c.Assign("Ada", t0)
		gt.NoError(t, err).Required()
		removed, err := c.Unassign("Ada", t0)
		gt.NoError(t, err).Required()
		gt.Bool(t, removed).True()
		gt.Value(t, c.Status).Equal(types.CaseStatusOpen)
		gt.Array(t, c.Responders).Length(0)
	})

	t.Run("unassigning an unknown responder is a no-op", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)

		removed, err := c.Unassign("Ada", t0)
		gt.NoError(t, err).Required()
		gt.Bool(t, removed).False()
	})

	t.Run("unassigning the last responder while paused resumes to open", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)

		_, err := c.Assign("Ada", t0)
		gt.NoError(t, err).Required()
		gt.NoError(t, c.Apply(types.CaseEventPause, t0)).Required()

		removed, err := c.Unassign("Ada", t0)
		gt.NoError(t, err).Required()
		gt.Bool(t, removed).True()

		gt.NoError(t, c.Apply(types.CaseEventResume, t0)).Required()
		gt.Value(t, c.Status).Equal(types.CaseStatusOpen)
		gt.Array(t, c.Responders).Length(0)
	})

	t.Run("unassign keeps assigned while others remain", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)

		_, err := c.Assign("Ada", t0)
		gt.NoError(t, err).Required()
		_, err = c.Assign("Brin", t0)
		gt.NoError(t, err).Required()

		_, err = c.Unassign("Ada", t0)
		gt.NoError(t, err).Required()
		gt.Value(t, c.Status).Equal(types.CaseStatusAssigned)
		gt.Array(t, c.Responders).Length(1)
	})
}

func TestCaseApply(t *testing.T) {
	t.Run("full rescue lifecycle", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal cmdr stranded", "#rescue", t0)

		_, err := c.Assign("Ada", t0)
		gt.NoError(t, err).Required()
		gt.NoError(t, c.Apply(types.CaseEventCallForJump, t0)).Required()
		gt.Value(t, c.Status).Equal(types.CaseStatusCallForJump)

		gt.NoError(t, c.Apply(types.CaseEventSuccess, t0)).Required()
		gt.Value(t, c.Status).Equal(types.CaseStatusClosed)
		gt.Value(t, c.CloseReason).Equal(types.CloseReasonSuccess)
	})

	t.Run("call for jump requires assigned", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)

		err := c.Apply(types.CaseEventCallForJump, t0)
		gt.Bool(t, errors.Is(err, model.ErrInvalidTransition)).True()
	})

	t.Run("success requires call for jump", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)
		_, err := c.Assign("Ada", t0)
		gt.NoError(t, err).Required()

		err = c.Apply(types.CaseEventSuccess, t0)
		gt.Bool(t, errors.Is(err, model.ErrInvalidTransition)).True()
	})

	t.Run("pause and resume restore prior state", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)
		_, err := c.Assign("Ada", t0)
		gt.NoError(t, err).Required()
		gt.NoError(t, c.Apply(types.CaseEventCallForJump, t0)).Required()

		gt.NoError(t, c.Apply(types.CaseEventPause, t0)).Required()
		gt.Value(t, c.Status).Equal(types.CaseStatusPaused)

		gt.NoError(t, c.Apply(types.CaseEventResume, t0)).Required()
		gt.Value(t, c.Status).Equal(types.CaseStatusCallForJump)
	})

	t.Run("pause while paused fails", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)
		gt.NoError(t, c.Apply(types.CaseEventPause, t0)).Required()

		err := c.Apply(types.CaseEventPause, t0)
		gt.Bool(t, errors.Is(err, model.ErrInvalidTransition)).True()
	})

	t.Run("resume while not paused fails", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)

		err := c.Apply(types.CaseEventResume, t0)
		gt.Bool(t, errors.Is(err, model.ErrInvalidTransition)).True()
	})

	t.Run("every event fails on a closed case", func(t *testing.T) {
		for _, reason := range []types.CloseReason{
			types.CloseReasonSuccess,
			types.CloseReasonInvalid,
			types.CloseReasonPurged,
			types.CloseReasonTimeout,
		} {
			c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)
			gt.NoError(t, c.Close(reason, t0)).Required()

			for _, event := range types.AllCaseEvents() {
				err := c.Apply(event, t0)
				gt.Bool(t, errors.Is(err, model.ErrInvalidTransition)).True()
			}
		}
	})
}

func TestCaseClose(t *testing.T) {
	t.Run("close is legal from any non-terminal state", func(t *testing.T) {
		setups := map[string]func(c *model.Case){
			"open": func(c *model.Case) {},
			"assigned": func(c *model.Case) {
				_, _ = c.Assign("Ada", t0)
			},
			"call for jump": func(c *model.Case) {
				_, _ = c.Assign("Ada", t0)
				_ = c.Apply(types.CaseEventCallForJump, t0)
			},
			"paused": func(c *model.Case) {
				_ = c.Apply(types.CaseEventPause, t0)
			},
		}

		for name, setup := range setups {
			t.Run(name, func(t *testing.T) {
				c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)
				setup(c)

				gt.NoError(t, c.Close(types.CloseReasonPurged, t0)).Required()
				gt.Value(t, c.Status).Equal(types.CaseStatusClosed)
			})
		}
	})

	t.Run("closing twice fails", func(t *testing.T) {
		c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)
		gt.NoError(t, c.Close(types.CloseReasonSuccess, t0)).Required()

		err := c.Close(types.CloseReasonSuccess, t0)
		gt.Bool(t, errors.Is(err, model.ErrInvalidTransition)).True()
	})
}

func TestCaseClone(t *testing.T) {
	c := model.NewCase(1, "Nova", "ratsignal", "#rescue", t0)
	_, err := c.Assign("Ada", t0)
	gt.NoError(t, err).Required()

	clone := c.Clone()
	clone.Responders[0] = "Mallory"
	clone.Quotes[0].Text = "tampered"

	gt.Value(t, c.Responders[0]).Equal("Ada")
	gt.Value(t, c.Quotes[0].Text).Equal("ratsignal")
}
