package graph

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utcpkb/kbforge/internal/kb"
)

func bundleWith(ext kb.Extraction) kb.RepoExtraction {
	return kb.RepoExtraction{
		Repository:  kb.Repository{Name: "demo-repo"},
		Extractions: []kb.Extraction{ext},
	}
}

func TestBuild_ScenarioFile(t *testing.T) {
	// Given: a code file with two functions and one class
	b := NewBuilder()
	ext := kb.Extraction{
		FilePath:    "src/api/client.py",
		ContentType: kb.ContentTypeCode,
		Title:       "Client Module",
		Summary:     "Implements the client.",
		KeyTerms:    []string{"UTCP", "API"},
		Code: kb.CodeFacts{
			Functions: []string{"foo", "bar"},
			Classes:   []string{"Baz"},
		},
	}

	concepts, rels := b.Build(bundleWith(ext))

	// Then: title, terms, functions, class, and path components all appear
	names := map[string][]kb.ConceptType{}
	for _, c := range concepts {
		names[c.Name] = append(names[c.Name], c.Type)
	}
	assert.Contains(t, names["Client Module"], kb.ConceptTypeTitle)
	assert.Contains(t, names["UTCP"], kb.ConceptTypeTerm)
	assert.Contains(t, names["foo"], kb.ConceptTypeFunction)
	assert.Contains(t, names["Baz"], kb.ConceptTypeClass)
	assert.Contains(t, names["src"], kb.ConceptTypePathComponent)
	assert.Contains(t, names["api"], kb.ConceptTypePathComponent)
	// Filename with a recognized extension is not a path component.
	assert.NotContains(t, names, "client.py")

	// And: 1 co_occurrence + 1 same_file + 2 contains relationships
	byType := map[kb.RelationType][]kb.Relationship{}
	for _, r := range rels {
		byType[r.Type] = append(byType[r.Type], r)
	}
	require.Len(t, byType[kb.RelationCoOccurrence], 1)
	require.Len(t, byType[kb.RelationSameFile], 1)
	require.Len(t, byType[kb.RelationContains], 2)

	co := byType[kb.RelationCoOccurrence][0]
	assert.Equal(t, "UTCP", co.Source)
	assert.Equal(t, "API", co.Target)
	assert.Equal(t, kb.StrengthCoOccurrence, co.Strength)
	assert.Equal(t, "Terms 'UTCP' and 'API' appear in the same file: src/api/client.py", co.Context)

	same := byType[kb.RelationSameFile][0]
	assert.Equal(t, kb.StrengthSameFile, same.Strength)
	assert.Equal(t, "Both functions appear in src/api/client.py", same.Context)

	for _, r := range byType[kb.RelationContains] {
		assert.Equal(t, "Baz", r.Source)
		assert.Equal(t, kb.StrengthContains, r.Strength)
	}
}

func TestBuild_SentinelTitleProducesNoTitleConcept(t *testing.T) {
	b := NewBuilder()
	ext := kb.Extraction{
		FilePath: "misc/data.txt",
		Title:    kb.NoTitle,
	}

	concepts, _ := b.Build(bundleWith(ext))

	for _, c := range concepts {
		assert.NotEqual(t, kb.ConceptTypeTitle, c.Type)
	}
}

func TestBuild_TitleContextTruncatedSummary(t *testing.T) {
	b := NewBuilder()
	long := ""
	for range 30 {
		long += "0123456789"
	}
	ext := kb.Extraction{
		FilePath: "docs/long.md",
		Title:    "Long Doc",
		Summary:  long,
	}

	concepts, _ := b.Build(bundleWith(ext))

	require.NotEmpty(t, concepts)
	title := concepts[0]
	require.Equal(t, kb.ConceptTypeTitle, title.Type)
	assert.Len(t, title.Context, 103)
	assert.Equal(t, long[:100]+"...", title.Context)
	assert.Equal(t, long, title.Description)
}

func TestBuild_NoSelfRelationships(t *testing.T) {
	// Given: duplicate names across terms, functions, and classes
	b := NewBuilder()
	ext := kb.Extraction{
		FilePath: "src/dup.go",
		KeyTerms: []string{"Thing", "Thing"},
		Code: kb.CodeFacts{
			Functions: []string{"handle", "handle"},
			Classes:   []string{"handle"},
		},
	}

	_, rels := b.Build(bundleWith(ext))

	for _, r := range rels {
		assert.NotEqual(t, r.Source, r.Target, "relationship %s must not be a self-pair", r.Type)
	}
}

func TestBuild_DeclarationCap(t *testing.T) {
	// Given: more functions than the declaration cap
	b := NewBuilder()
	var functions []string
	for i := range MaxDeclarations + 15 {
		functions = append(functions, fmt.Sprintf("fn%02d", i))
	}
	ext := kb.Extraction{
		FilePath: "gen/machine.go",
		Code:     kb.CodeFacts{Functions: functions, Classes: []string{"Machine"}},
	}

	_, rels := b.Build(bundleWith(ext))

	var sameFile, contains int
	for _, r := range rels {
		switch r.Type {
		case kb.RelationSameFile:
			sameFile++
		case kb.RelationContains:
			contains++
		}
	}
	// C(20,2) same_file pairs and 1x20 contains pairs.
	assert.Equal(t, MaxDeclarations*(MaxDeclarations-1)/2, sameFile)
	assert.Equal(t, MaxDeclarations, contains)
}

func TestBuild_ErrorRecordsExcluded(t *testing.T) {
	b := NewBuilder()
	bundle := kb.RepoExtraction{
		Repository: kb.Repository{Name: "demo-repo"},
		Errors: []kb.ExtractionError{
			{FilePath: "broken.md", Error: "permission denied", Timestamp: time.Now()},
		},
	}

	concepts, rels := b.Build(bundle)

	assert.Empty(t, concepts)
	assert.Empty(t, rels)
}
