// Package testutil provides shared test helpers for building source trees and loggers.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates a temporary directory containing files (relative
// slash-separated path → content) and returns its path.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// Logger returns a logger that discards everything below error level.
func Logger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ScenarioFiles is the two-file tree used by the end-to-end tests.
func ScenarioFiles() map[string]string {
	return map[string]string{
		"src/main.cpp": "// Main entry point for the node\n" +
			"#include \"util.h\"\n" +
			"\n" +
			"class CMain\n" +
			"{\n" +
			"};\n" +
			"\n" +
			"int Start()\n" +
			"{\n" +
			"    return 0;\n" +
			"}\n",
		"src/util.h": "#ifndef UTIL_H\n" +
			"#define UTIL_H\n" +
			"\n" +
			"void Log(const char* msg);\n" +
			"\n" +
			"#endif\n",
	}
}
