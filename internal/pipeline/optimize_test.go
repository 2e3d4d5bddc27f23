package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utcpkb/kbforge/internal/kb"
)

func TestEmbeddingTexts(t *testing.T) {
	concept := kb.Concept{Name: "CallTemplate", Description: "Tool call shape", Context: "src/core.py"}
	rel := kb.Relationship{Source: "UTCP", Target: "API", Type: kb.RelationCoOccurrence, Context: "same file"}
	item := kb.WisdomItem{Name: "Transport Design", Description: "Keep transports simple", Context: "principles"}

	assert.Equal(t, "CallTemplate Tool call shape src/core.py", conceptText(concept))
	assert.Equal(t, "UTCP co_occurrence API same file", relationshipText(rel))
	assert.Equal(t, "Transport Design Keep transports simple principles", wisdomText(item))
}

func TestRepositoryText_DoublesNameForWeight(t *testing.T) {
	repo := kb.Repository{Name: "utcp-spec"}

	assert.Equal(t, "utcp-spec utcp-spec implementation details", repositoryText(repo))
}
