// Package graph converts per-file extraction facts into concept and
// relationship records. It is a pure transform: one extraction bundle in,
// concept/relationship slices out, no shared state.
package graph

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/utcpkb/kbforge/internal/kb"
)

// MaxDeclarations caps how many functions and classes per file participate
// in relationship generation. Without it the class x function cross product
// is quadratic in declarations and can blow up on generated files, the same
// failure mode the 20-term cap already guards against.
const MaxDeclarations = 20

// recognizedExtensions marks path segments that are themselves filenames;
// those segments never become path_component concepts.
var recognizedExtensions = map[string]bool{
	".py": true, ".ts": true, ".js": true, ".go": true, ".rs": true, ".ex": true,
	".md": true, ".rst": true, ".json": true, ".yaml": true, ".yml": true,
}

// Builder emits concepts and relationships from extraction bundles.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build processes every non-error extraction in the bundle and returns the
// accumulated concepts and relationships.
func (b *Builder) Build(bundle kb.RepoExtraction) ([]kb.Concept, []kb.Relationship) {
	var concepts []kb.Concept
	var relationships []kb.Relationship

	repo := bundle.Repository.Name
	for _, ext := range bundle.Extractions {
		concepts = append(concepts, b.buildConcepts(repo, ext)...)
		relationships = append(relationships, b.buildRelationships(repo, ext)...)
	}
	return concepts, relationships
}

// buildConcepts emits one concept per extraction event: the title (unless
// sentinel), each key term, each function/class/section, and each
// significant path segment.
func (b *Builder) buildConcepts(repo string, ext kb.Extraction) []kb.Concept {
	now := b.now()
	var concepts []kb.Concept

	base := func(name string, typ kb.ConceptType, context, description string, tags ...string) kb.Concept {
		return kb.Concept{
			Name:        name,
			Type:        typ,
			SourceRepo:  repo,
			SourceFile:  ext.FilePath,
			Context:     context,
			Description: description,
			Tags:        tags,
			Timestamp:   now,
		}
	}

	if ext.Title != "" && ext.Title != kb.NoTitle {
		context := ext.Summary
		if len(context) > 100 {
			context = context[:100] + "..."
		}
		concepts = append(concepts,
			base(ext.Title, kb.ConceptTypeTitle, context, ext.Summary, string(ext.ContentType), "title"))
	}

	for _, term := range ext.KeyTerms {
		concepts = append(concepts,
			base(term, kb.ConceptTypeTerm, ext.Title, ext.Summary, string(ext.ContentType), "term"))
	}

	for _, fn := range ext.Code.Functions {
		concepts = append(concepts,
			base(fn, kb.ConceptTypeFunction, ext.Title, ext.Summary, "code", "function"))
	}
	for _, cls := range ext.Code.Classes {
		concepts = append(concepts,
			base(cls, kb.ConceptTypeClass, ext.Title, ext.Summary, "code", "class"))
	}
	for _, section := range ext.Doc.Sections {
		concepts = append(concepts,
			base(section, kb.ConceptTypeSection, ext.Title, ext.Summary, "documentation", "section"))
	}

	for _, part := range pathComponents(ext.FilePath) {
		concepts = append(concepts,
			base(part, kb.ConceptTypePathComponent, ext.Title,
				fmt.Sprintf("Part of file path: %s", ext.FilePath), "path", "structure"))
	}

	return concepts
}

// buildRelationships emits co_occurrence pairs over key terms, same_file
// pairs over functions, and the class x function contains cross product.
// Self-pairs are excluded; declaration lists are capped at MaxDeclarations.
func (b *Builder) buildRelationships(repo string, ext kb.Extraction) []kb.Relationship {
	now := b.now()
	var rels []kb.Relationship

	rel := func(source, target string, typ kb.RelationType, strength float64, context string) kb.Relationship {
		return kb.Relationship{
			Source:     source,
			Target:     target,
			Type:       typ,
			Strength:   strength,
			SourceRepo: repo,
			SourceFile: ext.FilePath,
			Context:    context,
			Timestamp:  now,
		}
	}

	terms := ext.KeyTerms
	for i, t1 := range terms {
		for _, t2 := range terms[i+1:] {
			if t1 == t2 {
				continue
			}
			rels = append(rels, rel(t1, t2, kb.RelationCoOccurrence, kb.StrengthCoOccurrence,
				fmt.Sprintf("Terms '%s' and '%s' appear in the same file: %s", t1, t2, ext.FilePath)))
		}
	}

	functions := capList(ext.Code.Functions, MaxDeclarations)
	classes := capList(ext.Code.Classes, MaxDeclarations)

	for i, f1 := range functions {
		for _, f2 := range functions[i+1:] {
			if f1 == f2 {
				continue
			}
			rels = append(rels, rel(f1, f2, kb.RelationSameFile, kb.StrengthSameFile,
				fmt.Sprintf("Both functions appear in %s", ext.FilePath)))
		}
	}

	for _, cls := range classes {
		for _, fn := range functions {
			if cls == fn {
				continue
			}
			rels = append(rels, rel(cls, fn, kb.RelationContains, kb.StrengthContains,
				fmt.Sprintf("Class %s may contain or use function %s", cls, fn)))
		}
	}

	return rels
}

// pathComponents returns the significant path segments: longer than two
// characters and not a filename with a recognized extension.
func pathComponents(filePath string) []string {
	var parts []string
	for _, part := range strings.Split(path.Clean(filePath), "/") {
		if len(part) <= 2 || part == "." {
			continue
		}
		if recognizedExtensions[strings.ToLower(path.Ext(part))] {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
