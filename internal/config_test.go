package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/boxgraph/internal/analyzer"
	"github.com/starford/boxgraph/internal/embedding"
	"github.com/starford/boxgraph/internal/legend"
	pkgconfig "github.com/starford/boxgraph/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestEmbedderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EmbedderConfig
		wantErr bool
	}{
		{"empty defaults to hash", EmbedderConfig{}, false},
		{"ollama with endpoint", EmbedderConfig{Provider: "ollama", Endpoint: "http://localhost:11434"}, false},
		{"ollama without endpoint", EmbedderConfig{Provider: "ollama"}, true},
		{"genai with key", EmbedderConfig{Provider: "genai", APIKey: "k"}, false},
		{"genai without key", EmbedderConfig{Provider: "genai"}, true},
		{"unknown provider", EmbedderConfig{Provider: "word2vec"}, true},
		{"negative delay", EmbedderConfig{Delay: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmbedderConfig_EmptyProviderDefaultsHash(t *testing.T) {
	cfg := EmbedderConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != embedding.ProviderHash {
		t.Errorf("provider = %q, want %q", cfg.Provider, embedding.ProviderHash)
	}
}

func TestAnalyzerConfig_Validate(t *testing.T) {
	cfg := AnalyzerConfig{Categories: legend.DefaultCategoryRules()}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty extractor should default to regex: %v", err)
	}
	if cfg.Extractor != analyzer.ExtractorRegex {
		t.Errorf("extractor = %q, want %q", cfg.Extractor, analyzer.ExtractorRegex)
	}

	cfg.Extractor = "clang"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown extractor should fail validation")
	}

	cfg = AnalyzerConfig{Extractor: analyzer.ExtractorTreeSitter}
	if err := cfg.Validate(); err == nil {
		t.Error("missing category rules should fail validation")
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	t.Setenv("BOXGRAPH_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "boxgraph.yaml")
	data := `
project:
  name: Demo
  protocol: City of Boxes v1.0
  subject: demo project
scan:
  root: ./src
  include: ["**/*.go"]
output:
  dir: ./out
embedder:
  provider: ollama
  endpoint: http://localhost:11434
  delay: 250ms
auth:
  mode: token
  token: ${BOXGRAPH_TEST_TOKEN}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Name != "Demo" || cfg.Scan.Root != "./src" || cfg.Output.Dir != "./out" {
		t.Errorf("unexpected project/scan/output: %+v %+v %+v", cfg.Project, cfg.Scan, cfg.Output)
	}
	if cfg.Embedder.Delay != 250*time.Millisecond {
		t.Errorf("delay = %v, want 250ms", cfg.Embedder.Delay)
	}
	if cfg.Auth.Token != "s3cret" {
		t.Errorf("token = %q, want expanded env value", cfg.Auth.Token)
	}
	if len(cfg.Analyzer.Categories) == 0 {
		t.Error("category rules should keep their defaults")
	}
}

func TestConfig_LoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxgraph.toml")
	data := `
[project]
name = "Demo"
protocol = "City of Boxes v1.0"
subject = "demo project"

[[analyzer.categories]]
label = "docs"
suffix = ".md"

[[analyzer.categories]]
label = "core"
contains = ["src/"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(cfg.Analyzer.Categories); got != 2 {
		t.Fatalf("categories = %d, want 2", got)
	}
	if cfg.Analyzer.Categories[0].Label != "docs" || cfg.Analyzer.Categories[0].Suffix != ".md" {
		t.Errorf("first rule = %+v", cfg.Analyzer.Categories[0])
	}
}
