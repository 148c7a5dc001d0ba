// Package store defines the issue list persistence contract.
//
// A resource owns exactly one list and the list is the unit of persistence:
// callers read the whole list, transform it, and write the whole list back.
// There is no concurrency token, so two sessions saving in turn overwrite
// each other; the last write wins.
package store

import (
	"context"
	"errors"

	"github.com/idilsaglam/issuetracker/internal/model"
)

var ErrResourceNotFound = errors.New("resource not found")

// Store loads and saves the issue list of a resource.
//
// Load returns an empty, non-nil list when nothing is stored yet. Remote
// failures and unparseable values are returned as errors.
type Store interface {
	Load(ctx context.Context, resourceID string) ([]model.Issue, error)
	Save(ctx context.Context, resourceID string, issues []model.Issue) error
}
