package wisdom

import (
	"fmt"
	"strings"
	"time"

	"github.com/utcpkb/kbforge/internal/kb"
)

// Engine runs the heuristic inference pass. It is stateless: each call
// consumes the full collections and produces full replacement lists.
type Engine struct {
	rules RuleSet
	now   func() time.Time
}

// NewEngine creates an Engine with the given rule set.
func NewEngine(rules RuleSet) *Engine {
	return &Engine{rules: rules, now: time.Now}
}

// Infer derives all four wisdom collections in one pass.
func (e *Engine) Infer(concepts []kb.Concept, relationships []kb.Relationship) map[kb.WisdomCategory][]kb.WisdomItem {
	return map[kb.WisdomCategory][]kb.WisdomItem{
		kb.WisdomPrinciples:    e.Principles(concepts),
		kb.WisdomPatterns:      e.Patterns(concepts),
		kb.WisdomBestPractices: e.BestPractices(concepts),
		kb.WisdomInsights:      e.Insights(relationships),
	}
}

// Principles selects concepts whose name carries a principle indicator,
// then appends the fixed seed table. The seeds are present even when the
// concept collection is empty.
func (e *Engine) Principles(concepts []kb.Concept) []kb.WisdomItem {
	now := e.now()
	var items []kb.WisdomItem

	for _, c := range concepts {
		if containsAny(strings.ToLower(c.Name), e.rules.PrincipleIndicators) {
			items = append(items, kb.WisdomItem{
				Name:        c.Name,
				Description: c.Description,
				SourceRepo:  c.SourceRepo,
				SourceFile:  c.SourceFile,
				Context:     c.Context,
				Timestamp:   now,
			})
		}
	}

	for _, seed := range SeedPrinciples {
		seed.Timestamp = now
		items = append(items, seed)
	}
	return items
}

// Patterns selects concepts whose name carries a pattern indicator.
func (e *Engine) Patterns(concepts []kb.Concept) []kb.WisdomItem {
	now := e.now()
	var items []kb.WisdomItem

	for _, c := range concepts {
		if containsAny(strings.ToLower(c.Name), e.rules.PatternIndicators) {
			items = append(items, kb.WisdomItem{
				Name:        c.Name,
				Description: c.Description,
				SourceRepo:  c.SourceRepo,
				SourceFile:  c.SourceFile,
				Context:     c.Context,
				Timestamp:   now,
			})
		}
	}
	return items
}

// BestPractices selects eligible-typed concepts whose description carries
// a practice indicator phrase.
func (e *Engine) BestPractices(concepts []kb.Concept) []kb.WisdomItem {
	now := e.now()
	eligible := make(map[kb.ConceptType]bool, len(e.rules.PracticeTypes))
	for _, t := range e.rules.PracticeTypes {
		eligible[t] = true
	}

	var items []kb.WisdomItem
	for _, c := range concepts {
		if !eligible[c.Type] {
			continue
		}
		if containsAny(strings.ToLower(c.Description), e.rules.PracticeIndicators) {
			items = append(items, kb.WisdomItem{
				Name:        "Best Practice: " + c.Name,
				Description: c.Description,
				SourceRepo:  c.SourceRepo,
				SourceFile:  c.SourceFile,
				Context:     c.Context,
				Timestamp:   now,
			})
		}
	}
	return items
}

// Insights materializes every relationship above the strength threshold as
// a descriptive record. With the stock constants that is all same_file and
// contains relationships and never co_occurrence.
func (e *Engine) Insights(relationships []kb.Relationship) []kb.WisdomItem {
	now := e.now()
	var items []kb.WisdomItem

	for _, r := range relationships {
		if r.Strength <= e.rules.InsightStrengthThreshold {
			continue
		}
		items = append(items, kb.WisdomItem{
			Name:             fmt.Sprintf("Relationship: %s -> %s", r.Source, r.Target),
			Description:      r.Context,
			SourceRepo:       r.SourceRepo,
			SourceFile:       r.SourceFile,
			Context:          r.Context,
			RelationshipType: r.Type,
			Strength:         r.Strength,
			Timestamp:        now,
		})
	}
	return items
}

func containsAny(text string, indicators []string) bool {
	for _, indicator := range indicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}
