// Package store owns the canonical knowledge collections: concepts,
// relationships, repository records, and the four wisdom categories. Each
// collection persists as one JSON document under the store directory. A
// missing document reads as an empty collection; a malformed one surfaces
// as a typed *CorruptStoreError so callers can decide to rebuild.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/utcpkb/kbforge/internal/kb"
)

// Collection file names under the store directory.
const (
	conceptsFile      = "concepts.json"
	relationshipsFile = "relationships.json"
	repositoriesFile  = "repositories.json"
	wisdomDir         = "wisdom"
)

// CorruptStoreError reports a persisted collection that exists but cannot
// be decoded. Callers may catch it and rebuild from raw extractions.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt store document %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// Store holds the loaded canonical collections for one knowledge base.
// A Store is not safe for concurrent mutation; the pipeline serializes
// writes behind a directory lock.
type Store struct {
	dir string

	concepts      []kb.Concept
	relationships []kb.Relationship
	repositories  []kb.Repository
	wisdom        map[kb.WisdomCategory][]kb.WisdomItem
}

// New creates a Store rooted at dir. Nothing is loaded until Load or the
// Replace* setters run.
func New(dir string) *Store {
	return &Store{
		dir:    dir,
		wisdom: make(map[kb.WisdomCategory][]kb.WisdomItem),
	}
}

// Dir returns the store root directory.
func (s *Store) Dir() string { return s.dir }

// Concepts returns the canonical concept collection.
func (s *Store) Concepts() []kb.Concept { return s.concepts }

// Relationships returns the canonical relationship collection.
func (s *Store) Relationships() []kb.Relationship { return s.relationships }

// Repositories returns the repository extraction records.
func (s *Store) Repositories() []kb.Repository { return s.repositories }

// Wisdom returns one wisdom collection. Unknown categories read as empty.
func (s *Store) Wisdom(category kb.WisdomCategory) []kb.WisdomItem {
	return s.wisdom[category]
}

// ReplaceKnowledge swaps in a full batch run's output, superseding any
// prior collections. Runs replace, never merge.
func (s *Store) ReplaceKnowledge(concepts []kb.Concept, relationships []kb.Relationship, repositories []kb.Repository) {
	s.concepts = concepts
	s.relationships = relationships
	s.repositories = repositories
}

// ReplaceWisdom swaps in one wisdom category's full collection.
func (s *Store) ReplaceWisdom(category kb.WisdomCategory, items []kb.WisdomItem) {
	s.wisdom[category] = items
}

// Save persists every collection as one JSON document each.
func (s *Store) Save() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if err := writeJSON(filepath.Join(s.dir, conceptsFile), emptyIfNil(s.concepts)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(s.dir, relationshipsFile), emptyIfNil(s.relationships)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(s.dir, repositoriesFile), emptyIfNil(s.repositories)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(s.dir, wisdomDir), 0o755); err != nil {
		return fmt.Errorf("failed to create wisdom directory: %w", err)
	}
	for _, category := range kb.WisdomCategories {
		path := filepath.Join(s.dir, wisdomDir, string(category)+".json")
		if err := writeJSON(path, emptyIfNil(s.wisdom[category])); err != nil {
			return err
		}
	}
	return nil
}

// Load reads every collection from disk. Missing documents load as empty
// collections; malformed ones return *CorruptStoreError.
func (s *Store) Load() error {
	if err := readJSON(filepath.Join(s.dir, conceptsFile), &s.concepts); err != nil {
		return err
	}
	if err := readJSON(filepath.Join(s.dir, relationshipsFile), &s.relationships); err != nil {
		return err
	}
	if err := readJSON(filepath.Join(s.dir, repositoriesFile), &s.repositories); err != nil {
		return err
	}

	s.wisdom = make(map[kb.WisdomCategory][]kb.WisdomItem)
	for _, category := range kb.WisdomCategories {
		var items []kb.WisdomItem
		path := filepath.Join(s.dir, wisdomDir, string(category)+".json")
		if err := readJSON(path, &items); err != nil {
			return err
		}
		s.wisdom[category] = items
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // Missing collection reads as empty.
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &CorruptStoreError{Path: path, Err: err}
	}
	return nil
}

// emptyIfNil keeps persisted collections as [] rather than null so external
// readers always see a JSON array.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
