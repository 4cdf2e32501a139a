package legend

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/boxgraph/internal/discovery"
)

// BoxID derives the box identifier from the base name of relPath:
// extension dropped, split on '-' and '_', each part capitalized, "Box" appended.
// src/script.cpp → ScriptBox, my-file_name.h → MyFileNameBox.
//
// The id ignores the directory, so equal base names collide.
func BoxID(relPath string) string {
	base := path.Base(relPath)
	base = strings.TrimSuffix(base, discovery.Ext(base))

	parts := strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' })
	var b strings.Builder
	for _, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(p[size:])
	}
	b.WriteString("Box")
	return b.String()
}
