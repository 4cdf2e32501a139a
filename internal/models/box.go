package models

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Box is the externally exposed record for one analyzed file.
type Box struct {
	ID           string        `json:"id"`
	Path         string        `json:"path"`
	Type         FileType      `json:"type"`
	Category     string        `json:"category"`
	Description  string        `json:"description"`
	AIContext    string        `json:"aiContext"`
	Interface    Interface     `json:"interface"`
	Dependencies []string      `json:"dependencies"`
	Metadata     BoxMetadata   `json:"metadata"`
	Contract     Contract      `json:"contract"`
	Embedding    EmbeddingInfo `json:"embedding"`
}

// Interface summarizes the names a box exposes.
type Interface struct {
	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
	Opcodes   []string `json:"opcodes"`
}

// BoxMetadata holds size facts about the underlying file.
type BoxMetadata struct {
	Lines int    `json:"lines"`
	Size  int64  `json:"size"`
	Hash  string `json:"hash"`
}

// ContractField describes one input or output of a box contract.
type ContractField struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// FieldMap maps a function name to its contract entry, in encounter order.
type FieldMap = orderedmap.OrderedMap[string, ContractField]

// Contract is the heuristic interface description attached to every box.
// Errors and Guarantees are static documentation strings.
type Contract struct {
	Inputs     *FieldMap `json:"inputs"`
	Outputs    *FieldMap `json:"outputs"`
	Errors     []string  `json:"errors"`
	Guarantees []string  `json:"guarantees"`
}

// EmbeddingInfo tells consumers which embedding backs the box.
type EmbeddingInfo struct {
	Available  bool   `json:"available"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

// BoxMap maps box ids to boxes in registration order.
type BoxMap = orderedmap.OrderedMap[string, *Box]

// IndexMap maps a key (category or dependency name) to box ids in registration order.
type IndexMap = orderedmap.OrderedMap[string, []string]

// Legend is the complete box registry.
type Legend struct {
	Metadata     LegendMetadata `json:"metadata"`
	Boxes        *BoxMap        `json:"boxes"`
	Categories   *IndexMap      `json:"categories"`
	Dependencies *IndexMap      `json:"dependencies"`
	Security     Security       `json:"security"`
}

// LegendMetadata carries project information and the generation time.
type LegendMetadata struct {
	Project     string `json:"project"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Created     string `json:"created"`
	Protocol    string `json:"protocol"`
	TotalFiles  int    `json:"totalFiles"`
}

// Security is a static informational block copied from configuration.
type Security struct {
	Phase1Complete bool     `json:"phase1_complete" yaml:"phase1_complete" toml:"phase1_complete"`
	Phase2Pending  []string `json:"phase2_pending" yaml:"phase2_pending" toml:"phase2_pending"`
	AuditRequired  bool     `json:"audit_required" yaml:"audit_required" toml:"audit_required"`
}

// NewLegend returns a Legend with empty, non-nil collections.
func NewLegend(meta LegendMetadata, sec Security) *Legend {
	return &Legend{
		Metadata:     meta,
		Boxes:        orderedmap.New[string, *Box](),
		Categories:   orderedmap.New[string, []string](),
		Dependencies: orderedmap.New[string, []string](),
		Security:     sec,
	}
}

// NewFieldMap returns an empty contract field map.
func NewFieldMap() *FieldMap {
	return orderedmap.New[string, ContractField]()
}

// Append adds id to the list stored under key, creating the list on first use.
func Append(m *IndexMap, key, id string) {
	ids, _ := m.Get(key)
	m.Set(key, append(ids, id))
}
