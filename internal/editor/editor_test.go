package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/idilsaglam/issuetracker/internal/host"
	"github.com/idilsaglam/issuetracker/internal/model"
)

const product = "gid://shopify/Product/1"

type memStore struct {
	issues  []model.Issue
	saves   int
	saveErr error
	// when set, Load signals entered and blocks until gate is closed
	entered chan struct{}
	gate    chan struct{}
}

func (m *memStore) Load(context.Context, string) ([]model.Issue, error) {
	if m.gate != nil {
		m.entered <- struct{}{}
		<-m.gate
	}
	return model.Clone(m.issues), nil
}

func (m *memStore) Save(_ context.Context, _ string, issues []model.Issue) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.issues = model.Clone(issues)
	return nil
}

type fixedRecommender struct {
	sug *Suggestion
	err error
}

func (f fixedRecommender) Recommend(context.Context, string) (*Suggestion, error) {
	return f.sug, f.err
}

func newSession(t *testing.T, st *memStore, launchURL string, opts ...Option) (*Session, *bool) {
	t.Helper()
	closed := false
	hc := host.Context{
		Selected:  []host.Resource{{ID: product}},
		LaunchURL: launchURL,
		Close:     func() { closed = true },
	}
	s, err := New(hc, st, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.State() != Loading {
		t.Fatalf("initial state = %v", s.State())
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s, &closed
}

func TestCreateAgainstEmptyList(t *testing.T) {
	st := &memStore{}
	s, closed := newSession(t, st, "")
	if s.Editing() {
		t.Fatal("expected create mode")
	}
	s.SetTitle("Leak")
	s.SetDescription("Memory leak on checkout")
	v, err := s.Submit(context.Background())
	if err != nil || !v.IsValid {
		t.Fatalf("Submit = %+v, %v", v, err)
	}
	want := model.Issue{ID: 0, Title: "Leak", Description: "Memory leak on checkout", Completed: false}
	if len(st.issues) != 1 || st.issues[0] != want {
		t.Errorf("persisted = %+v", st.issues)
	}
	if s.State() != Closed || !*closed {
		t.Errorf("state = %v closed = %v", s.State(), *closed)
	}
}

func TestEditKeepsID(t *testing.T) {
	st := &memStore{issues: []model.Issue{
		{ID: 0, Title: "Leak", Description: "Memory leak on checkout", Completed: true},
		{ID: 1, Title: "Other", Description: "x"},
	}}
	s, _ := newSession(t, st, host.ActionTarget(new(int)))
	if !s.Editing() {
		t.Fatal("expected edit mode")
	}
	title, desc := s.Fields()
	if title != "Leak" || desc != "Memory leak on checkout" {
		t.Errorf("prefill = %q, %q", title, desc)
	}
	s.SetDescription("Fixed")
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	got := st.issues[0]
	if got.ID != 0 || got.Description != "Fixed" || got.Title != "Leak" || !got.Completed {
		t.Errorf("persisted = %+v", got)
	}
	if len(st.issues) != 2 {
		t.Errorf("len = %d", len(st.issues))
	}
}

func TestMissingIDFallsBackToCreate(t *testing.T) {
	st := &memStore{issues: []model.Issue{{ID: 3, Title: "a", Description: "b"}}}
	for _, launch := range []string{
		"extension:issue-tracker-action?issueId=42",
		"extension:issue-tracker-action?issueId=abc",
	} {
		s, _ := newSession(t, st, launch)
		if s.Editing() || !s.Missing() {
			t.Errorf("%s: editing=%v missing=%v", launch, s.Editing(), s.Missing())
		}
	}
}

func TestValidationFailureStaysReady(t *testing.T) {
	st := &memStore{}
	s, closed := newSession(t, st, "")
	s.SetDescription("x")
	v, err := s.Submit(context.Background())
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
	if v.IsValid || !v.Errors.Title || v.Errors.Description {
		t.Errorf("validation = %+v", v)
	}
	if s.State() != Ready || *closed || st.saves != 0 {
		t.Errorf("state=%v closed=%v saves=%d", s.State(), *closed, st.saves)
	}
	if !s.Errors().Title {
		t.Error("errors not kept for display")
	}
}

func TestSaveFailureReturnsToReady(t *testing.T) {
	st := &memStore{saveErr: errors.New("remote down")}
	s, closed := newSession(t, st, "")
	s.SetTitle("a")
	s.SetDescription("b")
	if _, err := s.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if s.State() != Ready || *closed {
		t.Errorf("state=%v closed=%v", s.State(), *closed)
	}
}

func TestRecommendOverwritesFields(t *testing.T) {
	st := &memStore{issues: []model.Issue{{ID: 2, Title: "Old", Description: "old"}}}
	rec := fixedRecommender{sug: &Suggestion{Title: "Sizing", Description: "Runs small"}}
	s, _ := newSession(t, st, "extension:issue-tracker-action?issueId=2", WithRecommender(rec))
	changed, err := s.Recommend(context.Background())
	if err != nil || !changed {
		t.Fatalf("Recommend = %v, %v", changed, err)
	}
	title, desc := s.Fields()
	if title != "Sizing" || desc != "Runs small" {
		t.Errorf("fields = %q, %q", title, desc)
	}
	if id, ok := s.EditID(); !ok || id != 2 {
		t.Errorf("EditID = %d, %v", id, ok)
	}
	if s.State() != Ready {
		t.Errorf("state = %v", s.State())
	}
}

func TestRecommendNothing(t *testing.T) {
	s, _ := newSession(t, &memStore{}, "", WithRecommender(fixedRecommender{}))
	s.SetTitle("keep")
	changed, err := s.Recommend(context.Background())
	if err != nil || changed {
		t.Fatalf("Recommend = %v, %v", changed, err)
	}
	if title, _ := s.Fields(); title != "keep" {
		t.Errorf("title = %q", title)
	}
}

func TestRecommendWithoutRecommender(t *testing.T) {
	s, _ := newSession(t, &memStore{}, "")
	if _, err := s.Recommend(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("err = %v", err)
	}
}

func TestCancelAndSubmitAfterClose(t *testing.T) {
	s, closed := newSession(t, &memStore{}, "")
	s.Cancel()
	if !*closed || s.State() != Closed {
		t.Fatal("Cancel did not close")
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("err = %v", err)
	}
}

func TestLoadAfterCancelIsDropped(t *testing.T) {
	st := &memStore{
		issues:  []model.Issue{{ID: 0, Title: "Leak", Description: "Memory leak on checkout"}},
		entered: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	closed := false
	hc := host.Context{
		Selected:  []host.Resource{{ID: product}},
		LaunchURL: host.ActionTarget(new(int)),
		Close:     func() { closed = true },
	}
	s, err := New(hc, st)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()
	<-st.entered
	s.Cancel()
	close(st.gate)

	if err := <-done; !errors.Is(err, ErrNotReady) {
		t.Errorf("Load err = %v, want ErrNotReady", err)
	}
	if title, desc := s.Fields(); title != "" || desc != "" {
		t.Errorf("fields = %q, %q after a late load", title, desc)
	}
	if s.Editing() {
		t.Error("late load selected the issue")
	}
	if s.State() != Closed || !closed {
		t.Errorf("state = %v, closed = %v", s.State(), closed)
	}
}
