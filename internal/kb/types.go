// Package kb defines the core knowledge-base data model: concepts,
// relationships, repository records, wisdom items, and the per-file
// extraction records the pipeline stages exchange.
package kb

import "time"

// ContentType classifies the content of an extracted file.
type ContentType string

const (
	ContentTypeCode          ContentType = "code"
	ContentTypeDocumentation ContentType = "documentation"
	ContentTypeSpecification ContentType = "specification"
	ContentTypeConfiguration ContentType = "configuration"
	ContentTypeTest          ContentType = "test"
	ContentTypeOther         ContentType = "other"
)

// ConceptType classifies a concept entity.
type ConceptType string

const (
	ConceptTypeTitle         ConceptType = "title"
	ConceptTypeTerm          ConceptType = "term"
	ConceptTypePathComponent ConceptType = "path_component"
	ConceptTypeFunction      ConceptType = "function"
	ConceptTypeClass         ConceptType = "class"
	ConceptTypeSection       ConceptType = "section"
	ConceptTypeEntity        ConceptType = "entity"
)

// RelationType classifies a relationship between two concept names.
type RelationType string

const (
	RelationCoOccurrence RelationType = "co_occurrence"
	RelationSameFile     RelationType = "same_file"
	RelationContains     RelationType = "contains"
)

// Strength constants per relationship type. These are fixed by the data
// model, not measured scores.
const (
	StrengthCoOccurrence = 0.5
	StrengthContains     = 0.8
	StrengthSameFile     = 1.0
)

// Concept is a named, typed entity extracted from source content.
// Concepts are not deduplicated: each extraction event produces its own
// record, so identical (name, type, source_repo) tuples may coexist when
// extracted from different files.
type Concept struct {
	Name        string      `json:"name"`
	Type        ConceptType `json:"type"`
	SourceRepo  string      `json:"source_repo"`
	SourceFile  string      `json:"source_file"`
	Context     string      `json:"context"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Relationship is a typed, strength-weighted directed link between two
// concept names. Source and Target are never equal for generated pairs.
type Relationship struct {
	Source     string       `json:"source"`
	Target     string       `json:"target"`
	Type       RelationType `json:"type"`
	Strength   float64      `json:"strength"`
	SourceRepo string       `json:"source_repo"`
	SourceFile string       `json:"source_file"`
	Context    string       `json:"context"`
	Timestamp  time.Time    `json:"timestamp"`
}

// Repository records one extraction run over one repository. A repository
// may accumulate multiple historical records across runs.
type Repository struct {
	Name            string    `json:"name"`
	RunID           string    `json:"run_id"`
	CommitHash      string    `json:"commit_hash"`
	CommitTimestamp time.Time `json:"commit_timestamp"`
	FileCount       int       `json:"file_count"`
	ExtractedAt     time.Time `json:"extraction_timestamp"`
}

// WisdomCategory names one of the four wisdom collections.
type WisdomCategory string

const (
	WisdomPrinciples    WisdomCategory = "principles"
	WisdomPatterns      WisdomCategory = "patterns"
	WisdomBestPractices WisdomCategory = "best_practices"
	WisdomInsights      WisdomCategory = "insights"
)

// WisdomCategories lists all categories in canonical order.
var WisdomCategories = []WisdomCategory{
	WisdomPrinciples,
	WisdomPatterns,
	WisdomBestPractices,
	WisdomInsights,
}

// WisdomItem is a higher-order artifact inferred from the concept and
// relationship collections. RelationshipType and Strength are only set on
// insight items.
type WisdomItem struct {
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	SourceRepo       string       `json:"source_repo"`
	SourceFile       string       `json:"source_file"`
	Context          string       `json:"context"`
	RelationshipType RelationType `json:"relationship_type,omitempty"`
	Strength         float64      `json:"strength,omitempty"`
	Timestamp        time.Time    `json:"timestamp"`
}

// NoTitle is the sentinel produced when no title could be derived from
// file content. The entity builder never emits a title concept for it.
const NoTitle = "No Title Found"

// CodeFacts holds the structural facts extracted from code files.
type CodeFacts struct {
	Functions []string `json:"functions,omitempty"`
	Classes   []string `json:"classes,omitempty"`
	Imports   []string `json:"imports,omitempty"`
	Comments  []string `json:"comments,omitempty"`
}

// DocFacts holds the structural facts extracted from documentation files.
type DocFacts struct {
	Sections []string `json:"sections,omitempty"`
	Examples []string `json:"examples,omitempty"`
}

// SpecFacts holds the facts extracted from specification files.
type SpecFacts struct {
	Requirements []string `json:"requirements,omitempty"`
}

// Extraction is the facts record produced for one successfully read file.
type Extraction struct {
	FilePath    string      `json:"file_path"`
	ContentType ContentType `json:"content_type"`
	Title       string      `json:"title"`
	Summary     string      `json:"summary"`
	KeyTerms    []string    `json:"key_terms"`
	Code        CodeFacts   `json:"code,omitempty"`
	Doc         DocFacts    `json:"doc,omitempty"`
	Spec        SpecFacts   `json:"spec,omitempty"`
	LineCount   int         `json:"line_count"`
	WordCount   int         `json:"word_count"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ExtractionError marks a file that could not be extracted. The file is
// excluded from all downstream stages; the batch continues.
type ExtractionError struct {
	FilePath  string    `json:"file_path"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// RepoExtraction bundles everything one run extracted from one repository.
// It is the unit persisted under raw-extractions/<repo>/ and the unit the
// entity builder consumes.
type RepoExtraction struct {
	Repository  Repository        `json:"repository"`
	Extractions []Extraction      `json:"extractions"`
	Errors      []ExtractionError `json:"errors,omitempty"`
}
