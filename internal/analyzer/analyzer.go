// Package analyzer extracts best-effort metadata from source files.
//
// Nothing here is a real parser. Descriptions, signatures, includes and
// opcodes come from line and regular-expression heuristics, and malformed
// input only ever produces empty lists or default strings.
package analyzer

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/starford/boxgraph/internal/checksum"
	"github.com/starford/boxgraph/internal/models"
)

const excerptLen = 1000

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithExtractor sets the signature extractor. The default is RegexExtractor.
func WithExtractor(e SignatureExtractor) Option {
	return func(a *Analyzer) {
		a.extractor = e
	}
}

// WithSubject sets the project phrase used in generic purpose strings,
// e.g. "Source file for <subject>".
func WithSubject(subject string) Option {
	return func(a *Analyzer) {
		a.subject = subject
	}
}

// Analyzer turns file content into FileMetadata.
type Analyzer struct {
	extractor SignatureExtractor
	subject   string
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		extractor: NewRegexExtractor(),
		subject:   "this project",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeFile reads fd from disk and analyzes it. Read errors are returned
// unchanged in meaning; everything after the read cannot fail.
func (a *Analyzer) AnalyzeFile(fd models.FileDescriptor) (models.FileMetadata, error) {
	data, err := os.ReadFile(fd.AbsPath)
	if err != nil {
		return models.FileMetadata{}, fmt.Errorf("analyzer: read %s: %w", fd.RelPath, err)
	}
	return a.Analyze(fd, data), nil
}

// Analyze extracts metadata from content. The same content always yields the
// same result.
func (a *Analyzer) Analyze(fd models.FileDescriptor, content []byte) models.FileMetadata {
	text := string(content)

	sig := Signatures{Functions: []models.Function{}, Classes: []models.Class{}}
	if fd.Type.HasSignatures() {
		sig = a.extractor.ExtractSignatures(text)
	}

	return models.FileMetadata{
		Path:         fd.RelPath,
		Type:         fd.Type,
		Size:         fd.Size,
		Lines:        strings.Count(text, "\n") + 1,
		Hash:         checksum.Sum(content),
		Description:  ExtractDescription(text),
		Functions:    sig.Functions,
		Classes:      sig.Classes,
		Dependencies: ExtractDependencies(text),
		Opcodes:      ExtractOpcodes(text),
		AIContext:    Context(fd.RelPath, fd.Type, a.subject),
		Excerpt:      excerpt(text),
	}
}

func excerpt(text string) string {
	if utf8.RuneCountInString(text) <= excerptLen {
		return text
	}
	return string([]rune(text)[:excerptLen])
}
