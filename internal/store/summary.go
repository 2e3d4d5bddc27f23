package store

import (
	"path/filepath"
	"time"
)

// ConceptSummary counts concepts by type and by source repository.
type ConceptSummary struct {
	TotalConcepts      int            `json:"total_concepts"`
	ConceptTypes       map[string]int `json:"concept_types"`
	SourceRepositories map[string]int `json:"source_repositories"`
	GeneratedAt        time.Time      `json:"timestamp"`
}

// RelationshipSummary counts relationships by type and by source repository.
type RelationshipSummary struct {
	TotalRelationships int            `json:"total_relationships"`
	RelationshipTypes  map[string]int `json:"relationship_types"`
	SourceRepositories map[string]int `json:"source_repositories"`
	GeneratedAt        time.Time      `json:"timestamp"`
}

// RepositorySummary lists the repositories with extraction records.
type RepositorySummary struct {
	TotalRepositories int       `json:"total_repositories"`
	Repositories      []string  `json:"repositories"`
	GeneratedAt       time.Time `json:"timestamp"`
}

// SummarizeConcepts builds the per-dimension concept summary. The per-type
// counts always sum to TotalConcepts.
func (s *Store) SummarizeConcepts() ConceptSummary {
	summary := ConceptSummary{
		TotalConcepts:      len(s.concepts),
		ConceptTypes:       make(map[string]int),
		SourceRepositories: make(map[string]int),
		GeneratedAt:        time.Now(),
	}
	for _, c := range s.concepts {
		summary.ConceptTypes[string(c.Type)]++
		summary.SourceRepositories[c.SourceRepo]++
	}
	return summary
}

// SummarizeRelationships builds the per-dimension relationship summary.
func (s *Store) SummarizeRelationships() RelationshipSummary {
	summary := RelationshipSummary{
		TotalRelationships: len(s.relationships),
		RelationshipTypes:  make(map[string]int),
		SourceRepositories: make(map[string]int),
		GeneratedAt:        time.Now(),
	}
	for _, r := range s.relationships {
		summary.RelationshipTypes[string(r.Type)]++
		summary.SourceRepositories[r.SourceRepo]++
	}
	return summary
}

// SummarizeRepositories builds the repository summary.
func (s *Store) SummarizeRepositories() RepositorySummary {
	names := make([]string, 0, len(s.repositories))
	for _, r := range s.repositories {
		names = append(names, r.Name)
	}
	return RepositorySummary{
		TotalRepositories: len(s.repositories),
		Repositories:      names,
		GeneratedAt:       time.Now(),
	}
}

// SaveSummaries persists the three summaries alongside the collections.
func (s *Store) SaveSummaries() error {
	if err := writeJSON(s.summaryPath("concepts_summary.json"), s.SummarizeConcepts()); err != nil {
		return err
	}
	if err := writeJSON(s.summaryPath("relationships_summary.json"), s.SummarizeRelationships()); err != nil {
		return err
	}
	return writeJSON(s.summaryPath("repositories_summary.json"), s.SummarizeRepositories())
}

func (s *Store) summaryPath(name string) string {
	return filepath.Join(s.dir, name)
}
