package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store"
)

// JSON-backed storage for working offline. One human-readable file maps each
// resource id to its encoded list, the same string a metafield would hold.
// Writes are serialized within a process only and replace the file with a
// rename, so a failed write leaves the previous file intact.

const dataFileName = "issues.json"

type Store struct {
	dir string
	mu  sync.Mutex
}

var _ store.Store = (*Store)(nil)

// New stores data under dir; an empty dir means the working directory.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) dataPath() (string, error) {
	dir := s.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = wd
	}
	return filepath.Join(dir, dataFileName), nil
}

func (s *Store) readSlots() (map[string]string, error) {
	p, err := s.dataPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	slots := map[string]string{}
	if err := json.Unmarshal(b, &slots); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return slots, nil
}

func (s *Store) Load(_ context.Context, resourceID string) ([]model.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, err := s.readSlots()
	if err != nil {
		return nil, err
	}
	issues, err := model.Decode(slots[resourceID])
	if err != nil {
		return nil, fmt.Errorf("load issues for %s: %w", resourceID, err)
	}
	return issues, nil
}

func (s *Store) Save(_ context.Context, resourceID string, issues []model.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, err := s.readSlots()
	if err != nil {
		return err
	}
	value, err := model.Encode(issues)
	if err != nil {
		return err
	}
	slots[resourceID] = value

	p, err := s.dataPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return writeFileAtomic(p, b)
}

func writeFileAtomic(path string, b []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), dataFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
