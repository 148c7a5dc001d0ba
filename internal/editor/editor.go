// Package editor drives the create/edit surface of a single issue.
//
// A session moves Loading -> Ready -> Submitting -> Closed. A failed
// validation or a recommendation keeps it Ready; a failed save returns it to
// Ready so the user can retry.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/idilsaglam/issuetracker/internal/host"
	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store"
)

type State int

const (
	Loading State = iota
	Ready
	Submitting
	Closed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Closed:
		return "closed"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

var (
	ErrNotReady = errors.New("editor not ready")
	ErrInvalid  = errors.New("issue form invalid")
)

// Suggestion is a recommended title and description.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Recommender proposes an issue for a resource. A nil suggestion means there
// is nothing to recommend.
type Recommender interface {
	Recommend(ctx context.Context, resourceID string) (*Suggestion, error)
}

type Session struct {
	mu         sync.Mutex
	host       host.Context
	store      store.Store
	rec        Recommender
	resourceID string
	logger     *slog.Logger

	state        State
	all          []model.Issue
	requested    string
	editing      bool
	editID       int
	title        string
	description  string
	errs         model.FormErrors
	recommending bool
	saved        model.Issue
	submitted    bool
}

type Option func(*Session)

func WithRecommender(r Recommender) Option {
	return func(s *Session) { s.rec = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New reads the target issue id from the launch URL's issueId parameter.
func New(hc host.Context, st store.Store, opts ...Option) (*Session, error) {
	id, err := hc.ResourceID()
	if err != nil {
		return nil, err
	}
	s := &Session{
		host:       hc,
		store:      st,
		resourceID: id,
		logger:     slog.Default(),
		state:      Loading,
	}
	s.requested, _ = hc.LaunchParam(host.IssueIDParam)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load fetches the list and selects the requested issue. A requested id that
// is not in the list, or is not a number, leaves the session in create mode;
// Missing reports that case.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Loading {
		s.mu.Unlock()
		return fmt.Errorf("load: %w", ErrNotReady)
	}
	s.mu.Unlock()

	issues, err := s.store.Load(ctx, s.resourceID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Loading {
		return fmt.Errorf("load: %w", ErrNotReady)
	}
	s.all = issues
	if s.requested != "" {
		if id, err := strconv.Atoi(s.requested); err == nil {
			if it, ok := model.Find(issues, id); ok {
				s.editing = true
				s.editID = it.ID
				s.title = it.Title
				s.description = it.Description
			}
		}
		if !s.editing {
			s.logger.Warn("requested issue not found, creating instead",
				"resource", s.resourceID, "issue", s.requested)
		}
	}
	s.state = Ready
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Editing reports whether submit overwrites an existing issue.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// Missing reports that an issue id was requested but not found.
func (s *Session) Missing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested != "" && !s.editing && s.state != Loading
}

// EditID is the id being edited; ok is false in create mode.
func (s *Session) EditID() (id int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editID, s.editing
}

// Fields returns the current form values.
func (s *Session) Fields() (title, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title, s.description
}

// Saved is the issue written by the last successful Submit.
func (s *Session) Saved() (model.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved, s.submitted
}

// Errors returns the flags from the last submit attempt.
func (s *Session) Errors() model.FormErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs
}

func (s *Session) Recommending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recommending
}

func (s *Session) SetTitle(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = v
}

func (s *Session) SetDescription(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.description = v
}

// Submit validates the form and, when valid, writes the full list with the
// issue overwritten (edit) or appended (create), then closes the surface.
// The returned validation is meaningful even when err is ErrInvalid.
func (s *Session) Submit(ctx context.Context) (model.Validation, error) {
	s.mu.Lock()
	if s.state != Ready {
		s.mu.Unlock()
		return model.Validation{}, fmt.Errorf("submit: %w", ErrNotReady)
	}
	v := model.Validate(s.title, s.description)
	s.errs = v.Errors
	if !v.IsValid {
		s.mu.Unlock()
		return v, ErrInvalid
	}
	d := model.Draft{Title: s.title, Description: s.description}
	if s.editing {
		id := s.editID
		d.ID = &id
	}
	next, saved := model.Upsert(s.all, d)
	s.state = Submitting
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.resourceID, next); err != nil {
		s.mu.Lock()
		s.state = Ready
		s.mu.Unlock()
		return v, err
	}

	s.mu.Lock()
	s.all = next
	s.saved = saved
	s.submitted = true
	s.state = Closed
	s.mu.Unlock()
	s.logger.Debug("saved issue", "resource", s.resourceID, "issue", saved.ID, "editing", d.ID != nil)
	s.host.Done()
	return v, nil
}

// Cancel closes the surface without saving.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return
	}
	s.state = Closed
	s.mu.Unlock()
	s.host.Done()
}

// Recommend asks the recommender for a suggestion and, when one comes back,
// replaces both form fields with it. The edited issue's id is kept. It
// reports whether the fields changed.
func (s *Session) Recommend(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.state != Ready || s.rec == nil || s.recommending {
		s.mu.Unlock()
		return false, fmt.Errorf("recommend: %w", ErrNotReady)
	}
	s.recommending = true
	s.mu.Unlock()

	sug, err := s.rec.Recommend(ctx, s.resourceID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommending = false
	if err != nil {
		return false, err
	}
	if sug == nil || s.state != Ready {
		return false, nil
	}
	s.title = sug.Title
	s.description = sug.Description
	return true, nil
}
