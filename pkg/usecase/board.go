package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/domain/interfaces"
	"github.com/fuelrats/ratboard/pkg/domain/model"
	"github.com/fuelrats/ratboard/pkg/domain/types"
	"github.com/fuelrats/ratboard/pkg/utils/errutil"
)

// BoardEventKind classifies board notifications
type BoardEventKind string

const (
	BoardEventOpened     BoardEventKind = "opened"
	BoardEventResignal   BoardEventKind = "resignal"
	BoardEventNote       BoardEventKind = "note"
	BoardEventAssigned   BoardEventKind = "assigned"
	BoardEventUnassigned BoardEventKind = "unassigned"
	BoardEventStatus     BoardEventKind = "status"
	BoardEventSystem     BoardEventKind = "system"
	BoardEventPlatform   BoardEventKind = "platform"
	BoardEventClosed     BoardEventKind = "closed"
)

// BoardEvent is pushed to registered notifiers after every accepted
// mutation. Case is a clone; notifiers may keep it.
type BoardEvent struct {
	Kind   BoardEventKind
	Case   *model.Case
	Detail string
}

// Board is the authoritative registry of live rescue cases. It owns the live
// mapping exclusively: every mutation validates the state machine, writes
// through to the repository, and only then becomes visible.
type Board struct {
	repo           interfaces.Repository
	clock          clockwork.Clock
	persistTimeout time.Duration

	// openMu serializes case creation so one reporter can never race two
	// cases into existence
	openMu sync.Mutex

	// mu guards cases and locks; per-case locks serialize mutation of a
	// single case while different cases proceed concurrently
	mu    sync.RWMutex
	cases map[int]*model.Case
	locks map[int]*sync.Mutex

	degradedMu sync.Mutex
	degraded   bool

	notifyMu  sync.RWMutex
	notifiers []func(BoardEvent)
}

// BoardOption configures a Board
type BoardOption func(*Board)

// WithClock injects the clock used for case timestamps
func WithClock(clock clockwork.Clock) BoardOption {
	return func(b *Board) {
		b.clock = clock
	}
}

// WithPersistTimeout bounds every repository write. A write that misses the
// deadline fails the operation with ErrPersistenceUnavailable.
func WithPersistTimeout(d time.Duration) BoardOption {
	return func(b *Board) {
		b.persistTimeout = d
	}
}

// NewBoard creates an empty board. Call Load to repopulate from storage.
func NewBoard(repo interfaces.Repository, opts ...BoardOption) *Board {
	b := &Board{
		repo:           repo,
		clock:          clockwork.NewRealClock(),
		persistTimeout: 5 * time.Second,
		cases:          make(map[int]*model.Case),
		locks:          make(map[int]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Notify registers a callback invoked synchronously after every accepted
// mutation, in per-case order.
func (b *Board) Notify(fn func(BoardEvent)) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()
	b.notifiers = append(b.notifiers, fn)
}

func (b *Board) publish(event BoardEvent) {
	b.notifyMu.RLock()
	defer b.notifyMu.RUnlock()
	for _, fn := range b.notifiers {
		fn(event)
	}
}

// Load repopulates the live mapping from storage. Called once at startup.
func (b *Board) Load(ctx context.Context) error {
	open, err := b.repo.Case().ListOpen(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load open cases")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range open {
		b.cases[c.ID] = c
		b.locks[c.ID] = &sync.Mutex{}
	}
	return nil
}

// checkAvailable gates mutations while persistence is degraded. A
// successful ping leaves degraded mode.
func (b *Board) checkAvailable(ctx context.Context) error {
	b.degradedMu.Lock()
	defer b.degradedMu.Unlock()

	if !b.degraded {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, b.persistTimeout)
	defer cancel()
	if err := b.repo.Ping(pingCtx); err != nil {
		return goerr.Wrap(ErrPersistenceUnavailable, "repository still unreachable",
			goerr.V("cause", err.Error()))
	}

	b.degraded = false
	return nil
}

func (b *Board) markDegraded(ctx context.Context, err error, msg string) error {
	b.degradedMu.Lock()
	b.degraded = true
	b.degradedMu.Unlock()

	_ = errutil.Alert(ctx, err, msg)
	return goerr.Wrap(ErrPersistenceUnavailable, msg, goerr.V("cause", err.Error()))
}

// persist writes a live case through to storage under the write deadline
func (b *Board) persist(ctx context.Context, c *model.Case) error {
	saveCtx, cancel := context.WithTimeout(ctx, b.persistTimeout)
	defer cancel()

	if err := b.repo.Case().Save(saveCtx, c); err != nil {
		return b.markDegraded(ctx, err, "failed to persist case")
	}
	return nil
}

func (b *Board) lowestFreeID() int {
	for id := 0; ; id++ {
		if _, taken := b.cases[id]; !taken {
			return id
		}
	}
}

func (b *Board) findByReporter(reporter string) *model.Case {
	for _, c := range b.cases {
		if strings.EqualFold(c.Reporter, reporter) {
			return c
		}
	}
	return nil
}

// Open records a rescue signal. If the reporter already has an open case the
// signal text is appended to it as a note and the existing ID is returned
// with merged=true.
func (b *Board) Open(ctx context.Context, reporter, rawText, channel string) (int, bool, error) {
	return b.open(ctx, reporter, rawText, channel, true)
}

// OpenExclusive opens a case and fails with ErrDuplicateActiveCase if the
// reporter already has one. Used by the manual open command.
func (b *Board) OpenExclusive(ctx context.Context, reporter, rawText, channel string) (int, error) {
	id, _, err := b.open(ctx, reporter, rawText, channel, false)
	return id, err
}

func (b *Board) open(ctx context.Context, reporter, rawText, channel string, merge bool) (int, bool, error) {
	if err := b.checkAvailable(ctx); err != nil {
		return 0, false, err
	}

	b.openMu.Lock()
	defer b.openMu.Unlock()

	b.mu.RLock()
	existing := b.findByReporter(reporter)
	b.mu.RUnlock()

	if existing != nil {
		if !merge {
			return 0, false, goerr.Wrap(ErrDuplicateActiveCase, "reporter already on the board",
				goerr.V("reporter", reporter), goerr.V("case_id", existing.ID))
		}
		err := b.withCase(ctx, existing.ID, BoardEvent{Kind: BoardEventResignal, Detail: rawText},
			func(c *model.Case) error {
				c.AddQuote(reporter, rawText, b.clock.Now().UTC())
				return nil
			})
		if err != nil {
			return 0, false, err
		}
		return existing.ID, true, nil
	}

	b.mu.RLock()
	id := b.lowestFreeID()
	b.mu.RUnlock()

	c := model.NewCase(id, reporter, rawText, channel, b.clock.Now().UTC())
	if err := b.persist(ctx, c); err != nil {
		return 0, false, err
	}

	b.mu.Lock()
	b.cases[id] = c
	if _, exists := b.locks[id]; !exists {
		b.locks[id] = &sync.Mutex{}
	}
	b.mu.Unlock()

	b.publish(BoardEvent{Kind: BoardEventOpened, Case: c.Clone()})
	return id, false, nil
}

// withCase runs a mutation on one case with per-case mutual exclusion. The
// mutation is applied to a clone and only swapped into the live mapping
// after the write-through succeeds, so a failed persist never leaves a
// half-applied case visible.
func (b *Board) withCase(ctx context.Context, id int, event BoardEvent, fn func(c *model.Case) error) error {
	if err := b.checkAvailable(ctx); err != nil {
		return err
	}

	b.mu.RLock()
	lock, exists := b.locks[id]
	b.mu.RUnlock()
	if !exists {
		return goerr.Wrap(ErrCaseNotFound, "no such case", goerr.V("case_id", id))
	}

	lock.Lock()
	defer lock.Unlock()

	b.mu.RLock()
	c, live := b.cases[id]
	b.mu.RUnlock()
	if !live {
		return goerr.Wrap(ErrCaseNotFound, "no such case", goerr.V("case_id", id))
	}

	clone := c.Clone()
	if err := fn(clone); err != nil {
		return err
	}

	if clone.Status.IsTerminal() {
		if err := b.finalize(ctx, clone); err != nil {
			return err
		}
		event.Kind = BoardEventClosed
		event.Case = clone.Clone()
		b.publish(event)
		return nil
	}

	if err := b.persist(ctx, clone); err != nil {
		return err
	}

	b.mu.Lock()
	b.cases[id] = clone
	b.mu.Unlock()

	event.Case = clone.Clone()
	b.publish(event)
	return nil
}

// finalize archives a closed case and removes it from the live mapping.
// The archive record is written before the live record is deleted.
func (b *Board) finalize(ctx context.Context, c *model.Case) error {
	if c.ArchiveID == "" {
		c.ArchiveID = uuid.NewString()
	}

	archiveCtx, cancel := context.WithTimeout(ctx, b.persistTimeout)
	defer cancel()
	if err := b.repo.Case().Archive(archiveCtx, c); err != nil {
		return b.markDegraded(ctx, err, "failed to archive case")
	}

	deleteCtx, cancel := context.WithTimeout(ctx, b.persistTimeout)
	defer cancel()
	if err := b.repo.Case().Delete(deleteCtx, c.ID); err != nil {
		return b.markDegraded(ctx, err, "failed to delete closed case")
	}

	b.mu.Lock()
	delete(b.cases, c.ID)
	b.mu.Unlock()
	return nil
}

// Assign adds a responder to a case. Idempotent for an already assigned
// responder.
func (b *Board) Assign(ctx context.Context, id int, responder string) error {
	return b.withCase(ctx, id, BoardEvent{Kind: BoardEventAssigned, Detail: responder},
		func(c *model.Case) error {
			_, err := c.Assign(responder, b.clock.Now().UTC())
			return err
		})
}

// Unassign removes a responder from a case. Not an error if the responder
// was never assigned.
func (b *Board) Unassign(ctx context.Context, id int, responder string) error {
	return b.withCase(ctx, id, BoardEvent{Kind: BoardEventUnassigned, Detail: responder},
		func(c *model.Case) error {
			_, err := c.Unassign(responder, b.clock.Now().UTC())
			return err
		})
}

// Apply drives the state machine with a lifecycle event and returns the new
// state. Assign, unassign and close have dedicated operations because they
// carry extra data; routing them here is an invalid transition.
func (b *Board) Apply(ctx context.Context, id int, event types.CaseEvent) (types.CaseStatus, error) {
	switch event {
	case types.CaseEventAssign, types.CaseEventUnassign, types.CaseEventClose:
		return "", goerr.Wrap(ErrInvalidTransition, "event requires its dedicated operation",
			goerr.V("case_id", id), goerr.V("event", event))
	}

	var newStatus types.CaseStatus
	err := b.withCase(ctx, id, BoardEvent{Kind: BoardEventStatus, Detail: event.String()},
		func(c *model.Case) error {
			if err := c.Apply(event, b.clock.Now().UTC()); err != nil {
				return err
			}
			newStatus = c.Status
			return nil
		})
	if err != nil {
		return "", err
	}
	return newStatus, nil
}

// Close archives the case and removes it from the live board. Closing a
// case that is no longer live fails with ErrCaseNotFound; callers treat
// that as informational, not fatal.
func (b *Board) Close(ctx context.Context, id int, reason types.CloseReason) error {
	return b.withCase(ctx, id, BoardEvent{Kind: BoardEventClosed, Detail: reason.String()},
		func(c *model.Case) error {
			return c.Close(reason, b.clock.Now().UTC())
		})
}

// Annotate appends a note to a case
func (b *Board) Annotate(ctx context.Context, id int, author, note string) error {
	return b.withCase(ctx, id, BoardEvent{Kind: BoardEventNote, Detail: note},
		func(c *model.Case) error {
			c.AddQuote(author, note, b.clock.Now().UTC())
			return nil
		})
}

// SetSystem records the star system annotation
func (b *Board) SetSystem(ctx context.Context, id int, system string) error {
	return b.withCase(ctx, id, BoardEvent{Kind: BoardEventSystem, Detail: system},
		func(c *model.Case) error {
			c.System = system
			c.UpdatedAt = b.clock.Now().UTC()
			return nil
		})
}

// SetPlatform records the reporter's platform and clears the unidentified
// flag.
func (b *Board) SetPlatform(ctx context.Context, id int, platform types.Platform) error {
	return b.withCase(ctx, id, BoardEvent{Kind: BoardEventPlatform, Detail: platform.String()},
		func(c *model.Case) error {
			c.SetPlatform(platform, b.clock.Now().UTC())
			return nil
		})
}

// Lookup returns a copy of a live case, or nil if the ID is not on the
// board.
func (b *Board) Lookup(id int) *model.Case {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, exists := b.cases[id]
	if !exists {
		return nil
	}
	return c.Clone()
}

// LookupByReporter returns a copy of the reporter's live case, or nil
func (b *Board) LookupByReporter(reporter string) *model.Case {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c := b.findByReporter(reporter)
	if c == nil {
		return nil
	}
	return c.Clone()
}

// ListOpen returns copies of all live cases ordered by creation time
func (b *Board) ListOpen() []*model.Case {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]*model.Case, 0, len(b.cases))
	for _, c := range b.cases {
		result = append(result, c.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}

// GetArchived fetches a closed case from the archive
func (b *Board) GetArchived(ctx context.Context, archiveID string) (*model.Case, error) {
	c, err := b.repo.Case().GetArchived(ctx, archiveID)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrCaseNotFound, "no archived case", goerr.V("archive_id", archiveID))
		}
		return nil, goerr.Wrap(err, "failed to read archive", goerr.V("archive_id", archiveID))
	}
	return c, nil
}
