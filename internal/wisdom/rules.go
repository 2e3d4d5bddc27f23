// Package wisdom infers higher-order items (principles, patterns, best
// practices, insights) from the concept and relationship collections using
// heuristic indicator rules. The rule sets are pluggable so they can be
// replaced or tested in isolation.
package wisdom

import "github.com/utcpkb/kbforge/internal/kb"

// RuleSet holds the indicator lists and thresholds driving inference.
type RuleSet struct {
	// PrincipleIndicators match against lowercased concept names.
	PrincipleIndicators []string
	// PatternIndicators match against lowercased concept names.
	PatternIndicators []string
	// PracticeIndicators match against lowercased descriptions of
	// comment/documentation/section concepts.
	PracticeIndicators []string
	// PracticeTypes are the concept types eligible for best practices.
	PracticeTypes []kb.ConceptType
	// InsightStrengthThreshold is exclusive: relationships with strength
	// strictly above it become insights.
	InsightStrengthThreshold float64
}

// DefaultRules returns the stock rule set.
func DefaultRules() RuleSet {
	return RuleSet{
		PrincipleIndicators: []string{
			"principle", "pattern", "design", "architecture", "protocol",
			"standard", "specification", "rule", "guideline",
		},
		PatternIndicators: []string{
			"pattern", "architecture", "design", "model", "approach",
			"method", "strategy", "technique", "implementation",
		},
		PracticeIndicators: []string{
			"best practice", "recommendation", "guideline", "should", "must",
			"advice", "tip", "approach", "method", "procedure",
		},
		PracticeTypes: []kb.ConceptType{
			"comment", kb.ConceptTypeSection, "documentation",
		},
		InsightStrengthThreshold: 0.7,
	}
}

// SeedPrinciples is the fixed seed table appended to every principles run.
// These are constant domain knowledge, not derived from input, and are
// kept separate from the inference rules so the two never mix.
var SeedPrinciples = []kb.WisdomItem{
	{
		Name:        "Universal Tool Calling",
		Description: "A protocol that lets AI agents call any native endpoint, over any channel - directly and without wrappers",
		SourceRepo:  "utcp-specification",
		SourceFile:  "specification",
		Context:     "Core protocol principle",
	},
	{
		Name:        "Direct Tool Access",
		Description: "AI agents can call tools directly without extra middleware",
		SourceRepo:  "utcp-specification",
		SourceFile:  "specification",
		Context:     "Core protocol principle",
	},
}
