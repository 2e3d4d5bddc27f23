package extract

import "regexp"

// Language-agnostic declaration patterns covering the common conventions
// across Python, TypeScript/JavaScript, Go, Rust, and Elixir. These are
// deliberately regex-based: extraction must work uniformly over any text
// file without per-language parsers.
var (
	functionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`def\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`),
		regexp.MustCompile(`function\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`),
		regexp.MustCompile(`func\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`),
		regexp.MustCompile(`fn\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`),
	}

	classPatterns = []*regexp.Regexp{
		regexp.MustCompile(`class\s+([a-zA-Z_][a-zA-Z0-9_]*)`),
		regexp.MustCompile(`interface\s+([a-zA-Z_][a-zA-Z0-9_]*)`),
	}

	importPatterns = []*regexp.Regexp{
		regexp.MustCompile(`import\s+([a-zA-Z0-9_./"-]+)`),
		regexp.MustCompile(`from\s+([a-zA-Z0-9_.]+)\s+import`),
		regexp.MustCompile(`require\(['"]([a-zA-Z0-9_/.@-]+)['"]\)`),
		regexp.MustCompile(`use\s+([a-zA-Z0-9_:]+)`),
	}

	commentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`//\s*(.+)`),
		regexp.MustCompile(`#\s*(.+)`),
		regexp.MustCompile(`(?s)/\*\*?\s*(.*?)\s*\*/`),
		regexp.MustCompile(`(?s)"""\s*(.*?)\s*"""`),
		regexp.MustCompile(`(?s)'''\s*(.*?)\s*'''`),
	}

	sectionPattern = regexp.MustCompile(`(?m)^#+\s+(.+)$`)
	examplePattern = regexp.MustCompile("(?s)```(?:\\w+\n)?(.*?)```")

	requirementPattern = regexp.MustCompile(
		`(?i)(?:MUST NOT|MUST|SHOULD NOT|SHOULD|MAY|REQUIRED|RECOMMENDED)\s+[^.!?]*[.!?]`)
)

// Key-term patterns: CamelCase identifiers, all-caps acronyms, and
// hyphenated tokens.
var (
	camelCasePattern  = regexp.MustCompile(`\b[A-Z][a-z]+(?:[A-Z][a-zA-Z0-9]*)+\b`)
	acronymPattern    = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	hyphenatedPattern = regexp.MustCompile(`\b[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)+\b`)
)

// domainVocabulary is the fixed vocabulary always checked for key terms,
// independent of surface form in the text.
var domainVocabulary = []string{
	"protocol", "api", "interface", "endpoint", "transport",
	"provider", "tool", "agent", "schema", "authentication",
	"specification", "manual", "registry", "discovery",
}

var domainVocabularyPatterns = compileVocabulary(domainVocabulary)

func compileVocabulary(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return patterns
}
