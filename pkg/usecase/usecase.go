package usecase

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fuelrats/ratboard/pkg/domain/interfaces"
)

// UseCases bundles the board and fact operations behind one constructor
type UseCases struct {
	Board *Board
	Facts *Facts
}

// Option configures the use case bundle
type Option func(*options)

type options struct {
	clock          clockwork.Clock
	persistTimeout time.Duration
}

// WithUseCaseClock injects a shared clock, used by tests for deterministic
// timestamps.
func WithUseCaseClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithUseCasePersistTimeout bounds repository writes
func WithUseCasePersistTimeout(d time.Duration) Option {
	return func(o *options) {
		o.persistTimeout = d
	}
}

// New creates the use case bundle on top of a repository
func New(repo interfaces.Repository, opts ...Option) *UseCases {
	o := &options{
		clock:          clockwork.NewRealClock(),
		persistTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	return &UseCases{
		Board: NewBoard(repo, WithClock(o.clock), WithPersistTimeout(o.persistTimeout)),
		Facts: NewFacts(repo, o.clock),
	}
}
