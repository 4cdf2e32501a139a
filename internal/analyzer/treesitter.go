package analyzer

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/starford/boxgraph/internal/models"
)

// TreeSitterExtractor finds signatures by walking a C++ syntax tree. It is
// stricter than RegexExtractor (calls and macros are not mistaken for
// declarations) but returns the same shapes, caps and ordering.
type TreeSitterExtractor struct {
	lang *sitter.Language
}

// NewTreeSitterExtractor creates an extractor using the C++ grammar.
func NewTreeSitterExtractor() *TreeSitterExtractor {
	return &TreeSitterExtractor{lang: cpp.GetLanguage()}
}

// ExtractSignatures implements SignatureExtractor.
func (e *TreeSitterExtractor) ExtractSignatures(content string) Signatures {
	sig := Signatures{Functions: []models.Function{}, Classes: []models.Class{}}

	src := []byte(content)
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.lang)

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return sig
	}
	defer tree.Close()

	walkNode(tree.RootNode(), src, &sig)
	return sig
}

func walkNode(n *sitter.Node, src []byte, sig *Signatures) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_definition", "declaration", "field_declaration":
		if fn, ok := functionNode(n, src); ok && len(sig.Functions) < maxFunctions {
			sig.Functions = append(sig.Functions, fn)
		}
	case "class_specifier":
		if c, ok := classNode(n, src); ok {
			sig.Classes = append(sig.Classes, c)
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkNode(n.NamedChild(i), src, sig)
	}
}

func functionNode(n *sitter.Node, src []byte) (models.Function, bool) {
	typ := n.ChildByFieldName("type")
	decl := n.ChildByFieldName("declarator")
	if typ == nil || decl == nil || decl.Type() != "function_declarator" {
		return models.Function{}, false
	}
	name := decl.ChildByFieldName("declarator")
	params := decl.ChildByFieldName("parameters")
	if name == nil || params == nil {
		return models.Function{}, false
	}
	ret := typ.Content(src)
	if controlKeywords[ret] {
		return models.Function{}, false
	}
	return models.Function{
		Name:       name.Content(src),
		ReturnType: ret,
		Signature:  ret + " " + name.Content(src) + params.Content(src),
	}, true
}

func classNode(n *sitter.Node, src []byte) (models.Class, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return models.Class{}, false
	}
	c := models.Class{Name: name.Content(src)}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "base_class_clause" {
			c.Parent = publicBase(child, src)
			break
		}
	}
	return c, true
}

// publicBase returns the first base class when it is inherited publicly.
// Depending on the grammar version the access keyword is either an
// access_specifier node or a bare keyword token, so all children are scanned.
func publicBase(clause *sitter.Node, src []byte) string {
	public := false
	for i := 0; i < int(clause.ChildCount()); i++ {
		child := clause.Child(i)
		switch child.Type() {
		case "access_specifier":
			public = child.Content(src) == "public"
		case "public", "private", "protected":
			public = child.Type() == "public"
		case "type_identifier", "qualified_identifier", "template_type":
			if public {
				return child.Content(src)
			}
			return ""
		}
	}
	return ""
}
