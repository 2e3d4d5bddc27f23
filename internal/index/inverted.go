// Package index builds inverted lexical indexes over the knowledge
// collections: token -> ordered list of entity positions. Building is a
// pure function of the input collection, so rebuilding from an unchanged
// collection is idempotent.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/utcpkb/kbforge/internal/kb"
)

// minTokenLen is the exclusive lower bound on indexed token length:
// tokens of length <= 2 are discarded.
const minTokenLen = 2

// Inverted maps lowercased tokens to the positions of the entities whose
// searchable text contains them. Posting lists preserve first-seen entity
// order and never repeat a position for the same token.
type Inverted map[string][]int

// BuildConceptIndex indexes each concept's name and description.
func BuildConceptIndex(concepts []kb.Concept) Inverted {
	inv := make(Inverted)
	for i, c := range concepts {
		inv.add(i, c.Name+" "+c.Description)
	}
	return inv
}

// BuildRelationshipIndex indexes each relationship's source, target, and
// context.
func BuildRelationshipIndex(relationships []kb.Relationship) Inverted {
	inv := make(Inverted)
	for i, r := range relationships {
		inv.add(i, r.Source+" "+r.Target+" "+r.Context)
	}
	return inv
}

// add tokenizes text by whitespace, lowercases, drops short tokens, and
// appends position once per distinct token. No stemming, no stopwords.
func (inv Inverted) add(position int, text string) {
	seen := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if len(token) <= minTokenLen || seen[token] {
			continue
		}
		seen[token] = true
		inv[token] = append(inv[token], position)
	}
}

// Lookup returns the posting list for token (lowercased by the caller's
// convention is not required; Lookup lowercases).
func (inv Inverted) Lookup(token string) []int {
	return inv[strings.ToLower(token)]
}

// Save persists the index as one JSON document.
func (inv Inverted) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index %s: %w", path, err)
	}
	return nil
}

// Load reads an index document. A missing file loads as an empty index.
func Load(path string) (Inverted, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(Inverted), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", path, err)
	}
	var inv Inverted
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", path, err)
	}
	return inv, nil
}
