// Package extract classifies file content and pulls structural facts out
// of it: title, summary, key terms, and per-content-type details such as
// function names or normative requirements. It is the first pipeline stage
// and never fails a batch: callers record read errors as
// kb.ExtractionError and move on.
package extract

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/utcpkb/kbforge/internal/kb"
)

// MaxKeyTerms caps key terms per file. The cap bounds co-occurrence
// relationship generation at C(20,2)=190 pairs per file.
const MaxKeyTerms = 20

// maxSummaryLen is the character budget for extracted summaries.
const maxSummaryLen = 200

var codeExtensions = map[string]bool{
	".py": true, ".ts": true, ".js": true, ".go": true, ".rs": true, ".ex": true,
}

// Extractor turns raw file content into a facts record.
type Extractor struct {
	now func() time.Time
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{now: time.Now}
}

// ExtractFile produces the facts record for one file. The path is used for
// classification and for the filename-derived title fallback.
func (e *Extractor) ExtractFile(path, content string) kb.Extraction {
	contentType := Classify(path, content)

	title := ExtractTitle(content)
	if title == kb.NoTitle {
		title = titleFromFilename(path)
	}

	ext := kb.Extraction{
		FilePath:    filepath.ToSlash(path),
		ContentType: contentType,
		Title:       title,
		Summary:     ExtractSummary(content),
		KeyTerms:    ExtractKeyTerms(content),
		LineCount:   strings.Count(content, "\n") + 1,
		WordCount:   len(strings.Fields(content)),
		Timestamp:   e.now(),
	}

	switch contentType {
	case kb.ContentTypeCode:
		ext.Code = kb.CodeFacts{
			Functions: extractAll(content, functionPatterns),
			Classes:   extractAll(content, classPatterns),
			Imports:   extractAll(content, importPatterns),
			Comments:  extractComments(content),
		}
	case kb.ContentTypeDocumentation:
		ext.Doc = kb.DocFacts{
			Sections: extractCaptures(content, sectionPattern),
			Examples: extractExamples(content),
		}
	case kb.ContentTypeSpecification:
		ext.Doc = kb.DocFacts{
			Sections: extractCaptures(content, sectionPattern),
			Examples: extractExamples(content),
		}
		ext.Spec = kb.SpecFacts{
			Requirements: requirementPattern.FindAllString(content, -1),
		}
	}

	return ext
}

// Classify determines the content type of a file. Checks are
// priority-ordered: path and content signals outrank the extension.
func Classify(path, content string) kb.ContentType {
	lowerPath := strings.ToLower(filepath.ToSlash(path))
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case strings.Contains(lowerPath, "specification") || strings.Contains(strings.ToLower(content), "spec"):
		return kb.ContentTypeSpecification
	case strings.Contains(lowerPath, "readme"):
		return kb.ContentTypeDocumentation
	case strings.Contains(lowerPath, "test") || strings.Contains(lowerPath, "spec"):
		return kb.ContentTypeTest
	case codeExtensions[ext]:
		return kb.ContentTypeCode
	case ext == ".md" || ext == ".rst":
		return kb.ContentTypeDocumentation
	case ext == ".json" || ext == ".yaml" || ext == ".yml":
		return kb.ContentTypeConfiguration
	default:
		return kb.ContentTypeOther
	}
}

// ExtractTitle finds a title in the first 10 lines: a "# " markdown header
// or a "title:" front-matter line. Returns kb.NoTitle when absent.
func ExtractTitle(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(after)
		}
		if after, ok := strings.CutPrefix(trimmed, "title:"); ok {
			return strings.Trim(strings.TrimSpace(after), `"'`)
		}
	}
	return kb.NoTitle
}

// titleFromFilename derives a title from the file name: underscores and
// hyphens become spaces, words are title-cased.
func titleFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)

	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return kb.NoTitle
	}
	return strings.Join(words, " ")
}

// ExtractSummary joins the first three non-empty lines that are neither
// headers nor fence markers, truncated to 200 characters.
func ExtractSummary(content string) string {
	var picked []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "```") {
			continue
		}
		picked = append(picked, trimmed)
		if len(picked) >= 3 {
			break
		}
	}

	summary := strings.Join(picked, " ")
	if len(summary) > maxSummaryLen {
		return summary[:maxSummaryLen] + "..."
	}
	return summary
}

// ExtractKeyTerms collects CamelCase words, all-caps acronyms, hyphenated
// tokens, and domain vocabulary hits. Terms are deduplicated in first-seen
// order and capped at MaxKeyTerms.
func ExtractKeyTerms(content string) []string {
	seen := make(map[string]bool)
	var terms []string

	add := func(term string) {
		if term == "" || seen[term] || len(terms) >= MaxKeyTerms {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	for _, p := range []*regexp.Regexp{camelCasePattern, acronymPattern, hyphenatedPattern} {
		for _, m := range p.FindAllString(content, -1) {
			add(m)
		}
	}
	for i, p := range domainVocabularyPatterns {
		if p.MatchString(content) {
			add(domainVocabulary[i])
		}
	}

	return terms
}

// extractAll runs a set of single-capture patterns over content and returns
// the captures deduplicated in first-seen order.
func extractAll(content string, patterns []*regexp.Regexp) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(content, -1) {
			name := strings.TrimSpace(m[1])
			if name != "" && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func extractCaptures(content string, pattern *regexp.Regexp) []string {
	var out []string
	for _, m := range pattern.FindAllStringSubmatch(content, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// extractComments collects line and block comments, dropping anything of
// 10 characters or fewer as noise.
func extractComments(content string) []string {
	var out []string
	for _, p := range commentPatterns {
		for _, m := range p.FindAllStringSubmatch(content, -1) {
			c := strings.TrimSpace(m[1])
			if len(c) > 10 {
				out = append(out, c)
			}
		}
	}
	return out
}

// extractExamples returns fenced code block bodies longer than 10 chars
// after trimming.
func extractExamples(content string) []string {
	var out []string
	for _, m := range examplePattern.FindAllStringSubmatch(content, -1) {
		body := strings.TrimSpace(m[1])
		if len(body) > 10 {
			out = append(out, body)
		}
	}
	return out
}
