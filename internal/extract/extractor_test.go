package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utcpkb/kbforge/internal/kb"
)

func TestClassify_PriorityOrder(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    kb.ContentType
	}{
		{"specification in path wins", "docs/specification/core.md", "hello", kb.ContentTypeSpecification},
		{"spec in content wins over extension", "notes.go", "this file describes the spec", kb.ContentTypeSpecification},
		{"readme is documentation", "README.md", "hello world", kb.ContentTypeDocumentation},
		{"readme beats test in path", "tests/readme.md", "hello world", kb.ContentTypeDocumentation},
		{"test in path", "tests/util_helpers.py", "assert things", kb.ContentTypeTest},
		{"code extension", "src/main.go", "package main", kb.ContentTypeCode},
		{"markdown is documentation", "docs/guide.md", "a guide", kb.ContentTypeDocumentation},
		{"yaml is configuration", "conf/app.yaml", "key: value", kb.ContentTypeConfiguration},
		{"unknown extension is other", "data/blob.bin", "binaryish", kb.ContentTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path, tt.content))
		})
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"markdown header", "# Transport Layer\n\nbody", "Transport Layer"},
		{"front matter title", "---\ntitle: \"Core Concepts\"\n---\n", "Core Concepts"},
		{"header beyond ten lines is ignored", strings.Repeat("line\n", 11) + "# Late Header\n", kb.NoTitle},
		{"no title", "just prose\nmore prose", kb.NoTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.content))
		})
	}
}

func TestExtractFile_TitleFallsBackToFilename(t *testing.T) {
	e := New()

	ext := e.ExtractFile("docs/tool_call-format.md", "no header here\n")

	assert.Equal(t, "Tool Call Format", ext.Title)
}

func TestExtractSummary(t *testing.T) {
	// Given: content with headers, fences, and blank lines interleaved
	content := "# Header\n\n```\ncode\n```\nFirst line.\nSecond line.\n\nThird line.\nFourth line.\n"

	got := ExtractSummary(content)

	// Then: exactly the first three eligible lines joined
	assert.Equal(t, "code First line. Second line.", got)
}

func TestExtractSummary_TruncatesAt200(t *testing.T) {
	long := strings.Repeat("a", 300)

	got := ExtractSummary(long)

	require.Len(t, got, 203)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestExtractKeyTerms(t *testing.T) {
	// Given: camelcase, acronyms, hyphenated tokens, and domain vocabulary
	content := "The CallTemplate uses HTTP via a call-template wrapper over the protocol."

	terms := ExtractKeyTerms(content)

	assert.Contains(t, terms, "CallTemplate")
	assert.Contains(t, terms, "HTTP")
	assert.Contains(t, terms, "call-template")
	assert.Contains(t, terms, "protocol")
}

func TestExtractKeyTerms_DedupAndCap(t *testing.T) {
	// Given: more distinct acronyms than the cap, some repeated
	var sb strings.Builder
	for range 3 {
		for _, a := range []string{"AA", "BB", "CC", "DD", "EE", "FF", "GG", "HH", "II", "JJ",
			"KK", "LL", "MM", "NN", "OO", "PP", "QQ", "RR", "SS", "TT", "UU", "VV"} {
			sb.WriteString(a + " ")
		}
	}

	terms := ExtractKeyTerms(sb.String())

	require.Len(t, terms, MaxKeyTerms)
	// First-seen order preserved, no repeats.
	assert.Equal(t, "AA", terms[0])
	assert.Equal(t, "TT", terms[len(terms)-1])
}

func TestExtractFile_CodeFacts(t *testing.T) {
	e := New()
	content := `package demo

import "net/http"

// fetchRemote downloads the manual over HTTP.
func fetchRemote(url string) {}

func parseManual(data string) {}
`

	ext := e.ExtractFile("src/client.go", content)

	require.Equal(t, kb.ContentTypeCode, ext.ContentType)
	assert.Equal(t, []string{"fetchRemote", "parseManual"}, ext.Code.Functions)
	assert.Contains(t, ext.Code.Imports, `"net/http"`)
	assert.Contains(t, ext.Code.Comments, "fetchRemote downloads the manual over HTTP.")
}

func TestExtractFile_TestFilesCarryNoCodeFacts(t *testing.T) {
	e := New()
	content := `class Harness:
    def check_foo(self):
        pass

    def check_bar(self):
        pass
`

	// When a file classifies as test, no declarations are mined from it.
	ext := e.ExtractFile("tests/test_harness.py", content)

	require.Equal(t, kb.ContentTypeTest, ext.ContentType)
	assert.Empty(t, ext.Code.Functions)
	assert.Empty(t, ext.Code.Classes)
	assert.Empty(t, ext.Code.Imports)
}

func TestExtractFile_DocumentationFacts(t *testing.T) {
	e := New()
	content := "# My Title\n\nThe UTCP API enables direct tool calls.\n\n## Usage\n\n```go\nclient.Call(\"tool\")\n```\n"

	ext := e.ExtractFile("docs/intro.md", content)

	// Then: the scenario facts all land
	assert.Equal(t, kb.ContentTypeDocumentation, ext.ContentType)
	assert.Equal(t, "My Title", ext.Title)
	assert.Contains(t, ext.KeyTerms, "UTCP")
	assert.Contains(t, ext.KeyTerms, "API")
	assert.Equal(t, []string{"My Title", "Usage"}, ext.Doc.Sections)
	assert.Equal(t, []string{`client.Call("tool")`}, ext.Doc.Examples)
}

func TestExtractFile_SpecificationRequirements(t *testing.T) {
	e := New()
	content := "# Spec\n\nClients MUST validate the manual. Servers SHOULD cache responses.\n"

	ext := e.ExtractFile("specification/core.md", content)

	require.Equal(t, kb.ContentTypeSpecification, ext.ContentType)
	require.Len(t, ext.Spec.Requirements, 2)
	assert.Contains(t, ext.Spec.Requirements[0], "MUST validate")
	assert.Contains(t, ext.Spec.Requirements[1], "SHOULD cache")
}

func TestExtractFile_Counts(t *testing.T) {
	e := New()

	ext := e.ExtractFile("notes.txt", "one two\nthree\n")

	assert.Equal(t, 3, ext.LineCount)
	assert.Equal(t, 3, ext.WordCount)
}
