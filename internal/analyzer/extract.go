package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/boxgraph/internal/models"
)

// Extractor names accepted by NewExtractor.
const (
	ExtractorRegex      = "regex"
	ExtractorTreeSitter = "treesitter"
)

const (
	maxFunctions = 50
	maxOpcodes   = 20
)

// Signatures holds the functions and classes found in one file, in encounter order.
type Signatures struct {
	Functions []models.Function
	Classes   []models.Class
}

// SignatureExtractor finds function and class declarations in source text.
// Implementations never fail and return non-nil slices.
type SignatureExtractor interface {
	ExtractSignatures(content string) Signatures
}

// NewExtractor returns the extractor registered under name.
func NewExtractor(name string) (SignatureExtractor, error) {
	switch name {
	case "", ExtractorRegex:
		return NewRegexExtractor(), nil
	case ExtractorTreeSitter:
		return NewTreeSitterExtractor(), nil
	default:
		return nil, fmt.Errorf("analyzer: unknown extractor %q", name)
	}
}

var (
	functionRe = regexp.MustCompile(`(?m)(?:^\s*|\n\s*)(?:static\s+)?(?:inline\s+)?(\w+)\s+(\w+)\s*\([^)]*\)`)
	classRe    = regexp.MustCompile(`class\s+(\w+)(?:\s*:\s*public\s+(\w+))?`)
	includeRe  = regexp.MustCompile(`#include\s*[<"]([^>"]+)[>"]`)
	opcodeRe   = regexp.MustCompile(`\b(OP_[A-Z_0-9]+)\b`)
)

// controlKeywords look like return types to the function pattern
// ("if (x)" reads as type "if", name "x") and are dropped.
var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
}

// RegexExtractor is the line-oriented heuristic extractor. Argument lists
// with nested parentheses, templates and multiple inheritance are not handled.
type RegexExtractor struct{}

// NewRegexExtractor creates a RegexExtractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// ExtractSignatures implements SignatureExtractor.
func (RegexExtractor) ExtractSignatures(content string) Signatures {
	return Signatures{
		Functions: ExtractFunctions(content),
		Classes:   ExtractClasses(content),
	}
}

// ExtractFunctions returns up to 50 functions in encounter order.
func ExtractFunctions(content string) []models.Function {
	out := []models.Function{}
	for _, m := range functionRe.FindAllStringSubmatch(content, -1) {
		if controlKeywords[m[1]] {
			continue
		}
		out = append(out, models.Function{
			Name:       m[2],
			ReturnType: m[1],
			Signature:  strings.TrimSpace(m[0]),
		})
		if len(out) == maxFunctions {
			break
		}
	}
	return out
}

// ExtractClasses returns every "class Name [: public Parent]" occurrence.
func ExtractClasses(content string) []models.Class {
	out := []models.Class{}
	for _, m := range classRe.FindAllStringSubmatch(content, -1) {
		out = append(out, models.Class{Name: m[1], Parent: m[2]})
	}
	return out
}

// ExtractDependencies returns the distinct #include targets in first-seen order.
func ExtractDependencies(content string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, m := range includeRe.FindAllStringSubmatch(content, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}

// ExtractOpcodes returns up to 20 distinct OP_* tokens. Content without the
// literal "OP_" is not scanned at all.
func ExtractOpcodes(content string) []string {
	out := []string{}
	if !strings.Contains(content, "OP_") {
		return out
	}
	seen := make(map[string]bool)
	for _, m := range opcodeRe.FindAllStringSubmatch(content, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
		if len(out) == maxOpcodes {
			break
		}
	}
	return out
}
