// Package tracker drives the list surface of a resource's issues: loading,
// paging, status changes held in a pending buffer, and deletes that persist
// immediately.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/idilsaglam/issuetracker/internal/host"
	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store"
)

var (
	ErrClosed    = errors.New("tracker session closed")
	ErrStale     = errors.New("load superseded by a newer load")
	ErrNotLoaded = errors.New("issues not loaded")
)

// Session is one list surface instance. It exclusively owns its in-memory
// copy of the list; other sessions writing the same resource are not seen
// and the last save wins.
type Session struct {
	mu         sync.Mutex
	host       host.Context
	store      store.Store
	resourceID string
	pageSize   int
	autosave   bool
	logger     *slog.Logger

	issues  []model.Issue
	saved   []model.Issue
	page    int
	loaded  bool
	closed  bool
	cancel  context.CancelFunc
	loadSeq int
}

type Option func(*Session)

// WithAutosave persists after every status change instead of waiting for
// Flush.
func WithAutosave(on bool) Option {
	return func(s *Session) { s.autosave = on }
}

func WithPageSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(hc host.Context, st store.Store, opts ...Option) (*Session, error) {
	id, err := hc.ResourceID()
	if err != nil {
		return nil, err
	}
	s := &Session{
		host:       hc,
		store:      st,
		resourceID: id,
		pageSize:   model.PageSize,
		logger:     slog.Default(),
		page:       1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) ResourceID() string { return s.resourceID }

// Load fetches the list. A result that arrives after Close, or after a newer
// Load started, is dropped.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()
	defer cancel()

	issues, err := s.store.Load(ctx, s.resourceID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Debug("dropping load after close", "resource", s.resourceID)
		return ErrClosed
	}
	if seq != s.loadSeq {
		s.logger.Debug("dropping stale load", "resource", s.resourceID)
		return ErrStale
	}
	s.cancel = nil
	if err != nil {
		return err
	}
	s.issues = issues
	s.saved = model.Clone(issues)
	s.loaded = true
	s.page = model.ClampPage(s.page, model.TotalPages(len(s.issues), s.pageSize))
	return nil
}

// Loaded reports whether the first load completed.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Issues returns a copy of the local list.
func (s *Session) Issues() []model.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Clone(s.issues)
}

// Page returns the rows of the current page.
func (s *Session) Page() []model.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Clone(model.Paginate(s.issues, s.page, s.pageSize))
}

func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Session) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.TotalPages(len(s.issues), s.pageSize)
}

func (s *Session) HasNextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page < model.TotalPages(len(s.issues), s.pageSize)
}

func (s *Session) HasPreviousPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page > 1
}

// NextPage advances one page unless already on the last.
func (s *Session) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page >= model.TotalPages(len(s.issues), s.pageSize) {
		return false
	}
	s.page++
	return true
}

// PreviousPage goes back one page unless already on the first.
func (s *Session) PreviousPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page <= 1 {
		return false
	}
	s.page--
	return true
}

// SetPage jumps to page, clamped to the valid range.
func (s *Session) SetPage(page int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = model.ClampPage(page, model.TotalPages(len(s.issues), s.pageSize))
	return s.page
}

// Dirty reports unsaved local changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !model.Equal(s.issues, s.saved)
}

// ChangeStatus sets the completed flag of one issue locally. It is persisted
// by the next Flush, or right away with autosave.
func (s *Session) ChangeStatus(ctx context.Context, id int, status string) error {
	completed, err := model.ParseStatus(status)
	if err != nil {
		return fmt.Errorf("change status of %d: %w", id, err)
	}
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return err
	}
	next, err := model.SetCompleted(s.issues, id, completed)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("change status of %d: %w", id, err)
	}
	s.issues = next
	autosave := s.autosave
	s.mu.Unlock()

	if autosave {
		return s.Flush(ctx)
	}
	return nil
}

// Toggle flips the status of one issue.
func (s *Session) Toggle(ctx context.Context, id int) error {
	s.mu.Lock()
	it, ok := model.Find(s.issues, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("toggle %d: %w", id, model.ErrNotFound)
	}
	status := model.StatusCompleted
	if it.Completed {
		status = model.StatusTodo
	}
	return s.ChangeStatus(ctx, id, status)
}

// Delete removes an issue and persists the resulting list at once, pending
// status changes included. Deleting an absent id still saves an unchanged
// list.
func (s *Session) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.issues = model.Delete(s.issues, id)
	s.page = model.ClampPage(s.page, model.TotalPages(len(s.issues), s.pageSize))
	s.mu.Unlock()
	return s.Flush(ctx)
}

// Flush persists the local list verbatim.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := model.Clone(s.issues)
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.resourceID, snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	s.saved = snapshot
	s.mu.Unlock()
	s.logger.Debug("flushed issues", "resource", s.resourceID, "count", len(snapshot))
	return nil
}

// Submit is the form submission: it flushes the local list.
func (s *Session) Submit(ctx context.Context) error { return s.Flush(ctx) }

// Reset drops pending changes, restoring the last persisted list.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = model.Clone(s.saved)
	s.page = model.ClampPage(s.page, model.TotalPages(len(s.issues), s.pageSize))
}

// AddIssue navigates to the action surface in create mode.
func (s *Session) AddIssue() error {
	return s.host.Navigate(host.ActionTarget(nil))
}

// EditIssue navigates to the action surface editing id.
func (s *Session) EditIssue(id int) error {
	s.mu.Lock()
	_, ok := model.Find(s.issues, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("edit %d: %w", id, model.ErrNotFound)
	}
	return s.host.Navigate(host.ActionTarget(&id))
}

// Close cancels an in-flight load and makes the session unusable.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) usable() error {
	if s.closed {
		return ErrClosed
	}
	if !s.loaded {
		return ErrNotLoaded
	}
	return nil
}
