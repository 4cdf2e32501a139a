package models

import (
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Artifact file names inside the output directory.
const (
	LegendFile      = "master-legend.json"
	EmbeddingsFile  = "embeddings.json"
	SearchIndexFile = "search-index.json"
	TemplatesFile   = "error-templates.json"
	SummaryFile     = "KNOWLEDGE_GRAPH_SUMMARY.md"
)

// TimeLayout is the ISO-8601 layout used for every timestamp in the artifacts.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t in UTC using TimeLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Embedding is the vector record produced for one box.
type Embedding struct {
	Model     string    `json:"model"`
	Embedding []float64 `json:"embedding"`
	Tokens    int       `json:"tokens"`
	Timestamp string    `json:"timestamp"`
}

// EmbeddingMap maps box ids to embeddings in generation order.
type EmbeddingMap = orderedmap.OrderedMap[string, Embedding]

// NewEmbeddingMap returns an empty embedding map.
func NewEmbeddingMap() *EmbeddingMap {
	return orderedmap.New[string, Embedding]()
}

// SearchIndex is the flat lookup view over the legend and embeddings.
type SearchIndex struct {
	Metadata    SearchIndexMetadata `json:"metadata"`
	Vectors     *VectorMap          `json:"vectors"`
	SearchCache map[string]any      `json:"searchCache"`
}

// SearchIndexMetadata describes a search index.
type SearchIndexMetadata struct {
	Created             string `json:"created"`
	TotalBoxes          int    `json:"totalBoxes"`
	EmbeddingDimensions int    `json:"embeddingDimensions"`
}

// VectorEntry is one row of the search index.
type VectorEntry struct {
	Embedding   []float64 `json:"embedding"`
	BoxPath     string    `json:"boxPath"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
}

// VectorMap maps box ids to search index rows.
type VectorMap = orderedmap.OrderedMap[string, VectorEntry]

// NewSearchIndex returns an index with empty, non-nil collections.
func NewSearchIndex(meta SearchIndexMetadata) *SearchIndex {
	return &SearchIndex{
		Metadata:    meta,
		Vectors:     orderedmap.New[string, VectorEntry](),
		SearchCache: map[string]any{},
	}
}

// ErrorTemplates is the error-templates.json document.
type ErrorTemplates struct {
	Metadata  TemplatesMetadata `json:"metadata"`
	Templates *TemplateMap      `json:"templates"`
}

// TemplatesMetadata describes the template document.
type TemplatesMetadata struct {
	Protocol string `json:"protocol"`
	Version  string `json:"version"`
	Created  string `json:"created"`
}

// TemplateMap maps box ids to their error templates.
type TemplateMap = orderedmap.OrderedMap[string, *ErrorTemplate]

// NewErrorTemplates returns a template document with an empty template map.
func NewErrorTemplates(meta TemplatesMetadata) *ErrorTemplates {
	return &ErrorTemplates{
		Metadata:  meta,
		Templates: orderedmap.New[string, *ErrorTemplate](),
	}
}

// ErrorTemplate is the context-rich error shape for one box.
type ErrorTemplate struct {
	BoxID           string          `json:"boxId"`
	BoxPath         string          `json:"boxPath"`
	Definition      string          `json:"definition"`
	Purpose         string          `json:"purpose"`
	Contract        Contract        `json:"contract"`
	RuntimeTemplate RuntimeTemplate `json:"runtimeTemplate"`
	RepairPrompt    string          `json:"repairPrompt"`
}

// RuntimeTemplate holds placeholders that a caller fills when an error occurs.
type RuntimeTemplate struct {
	Timestamp     string    `json:"timestamp"`
	InputReceived string    `json:"inputReceived"`
	ExpectedInput *FieldMap `json:"expectedInput"`
	StackTrace    string    `json:"stackTrace"`
	SystemState   string    `json:"systemState"`
}
