package analyzer

import (
	"path"
	"strings"

	"github.com/starford/boxgraph/internal/models"
)

// wellKnown maps exact base names to hand-written purposes.
var wellKnown = map[string]string{
	"script.cpp":     "Core script evaluation engine. Handles all OP_CODES including restored operations (CAT, MUL, DIV, MOD, LSHIFT, RSHIFT, etc.)",
	"main.cpp":       "Core blockchain logic, consensus rules, transaction validation, block handling",
	"init.cpp":       "Initialization, configuration, command-line argument parsing",
	"util.cpp":       "Utility functions, logging, file operations, string manipulation",
	"bitcoinrpc.cpp": "RPC server, JSON-RPC handlers, network API",
}

var typePurposes = map[models.FileType]string{
	models.TypeDocumentation: "Documentation and guides for developers/users",
	models.TypeScript:        "Build or deployment automation script",
}

// Purpose returns the purpose sentence for a file.
func Purpose(relPath string, t models.FileType, subject string) string {
	if p, ok := wellKnown[path.Base(relPath)]; ok {
		return p
	}
	if p, ok := typePurposes[t]; ok {
		return p
	}
	name := string(t)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return name + " file for " + subject
}

// Context renders the three-line aiContext block.
func Context(relPath string, t models.FileType, subject string) string {
	return "File: " + relPath + "\nType: " + string(t) + "\nPurpose: " + Purpose(relPath, t, subject)
}
