package store

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/idilsaglam/issuetracker/internal/model"
)

type stubStore struct {
	issues []model.Issue
	err    error
}

func (s *stubStore) Load(context.Context, string) ([]model.Issue, error) { return s.issues, s.err }
func (s *stubStore) Save(_ context.Context, _ string, issues []model.Issue) error {
	if s.err != nil {
		return s.err
	}
	s.issues = issues
	return nil
}

func TestInstrumentCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	inner := &stubStore{}
	s := Instrument(inner, m)
	ctx := context.Background()

	if err := s.Save(ctx, "p1", []model.Issue{{ID: 0, Title: "a", Description: "b"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Load(ctx, "p1"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	inner.err = errors.New("boom")
	if _, err := s.Load(ctx, "p1"); err == nil {
		t.Fatal("expected error")
	}

	if got := testutil.ToFloat64(m.Operations.WithLabelValues("save", "ok")); got != 1 {
		t.Errorf("save ok = %v", got)
	}
	if got := testutil.ToFloat64(m.Operations.WithLabelValues("load", "ok")); got != 1 {
		t.Errorf("load ok = %v", got)
	}
	if got := testutil.ToFloat64(m.Operations.WithLabelValues("load", "error")); got != 1 {
		t.Errorf("load error = %v", got)
	}
}
