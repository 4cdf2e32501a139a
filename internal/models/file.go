// Package models defines the domain types for boxgraph.
package models

// FileType is the coarse kind of a discovered file, derived from its extension.
type FileType string

// File types.
const (
	TypeSource        FileType = "source"
	TypeHeader        FileType = "header"
	TypeDocumentation FileType = "documentation"
	TypeScript        FileType = "script"
	TypeProject       FileType = "project"
	TypeConfig        FileType = "config"
	TypeOther         FileType = "other"
)

// HasSignatures reports whether functions and classes are extracted for this type.
func (t FileType) HasSignatures() bool {
	return t == TypeSource || t == TypeHeader
}

// FileDescriptor is a file found by the discoverer.
type FileDescriptor struct {
	RelPath string   `json:"path"` // slash-separated, relative to the scan root
	AbsPath string   `json:"-"`
	Type    FileType `json:"type"`
	Size    int64    `json:"size"`
}

// Function is a function signature found by an extractor.
type Function struct {
	Name       string `json:"name"`
	ReturnType string `json:"returnType"`
	Signature  string `json:"signature"`
}

// Class is a class declaration with at most one public parent.
type Class struct {
	Name   string `json:"name"`
	Parent string `json:"inherits,omitempty"`
}

// FileMetadata is everything the analyzer extracts from one file.
type FileMetadata struct {
	Path         string     `json:"path"`
	Type         FileType   `json:"type"`
	Size         int64      `json:"size"`
	Lines        int        `json:"lines"`
	Hash         string     `json:"hash"`
	Description  string     `json:"description"`
	Functions    []Function `json:"functions"`
	Classes      []Class    `json:"classes"`
	Dependencies []string   `json:"dependencies"`
	Opcodes      []string   `json:"opcodes"`
	AIContext    string     `json:"aiContext"`
	Excerpt      string     `json:"excerpt"`
}
