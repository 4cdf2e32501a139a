package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/boxgraph/internal/analyzer"
	"github.com/starford/boxgraph/internal/embedding"
	"github.com/starford/boxgraph/internal/legend"
	"github.com/starford/boxgraph/internal/models"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app" toml:"app"`
	Project  ProjectConfig     `yaml:"project" toml:"project"`
	Scan     ScanConfig        `yaml:"scan" toml:"scan"`
	Output   OutputConfig      `yaml:"output" toml:"output"`
	Analyzer AnalyzerConfig    `yaml:"analyzer" toml:"analyzer"`
	Embedder EmbedderConfig    `yaml:"embedder" toml:"embedder"`
	Watch    WatchConfig       `yaml:"watch" toml:"watch"`
	Auth     AuthConfig        `yaml:"auth" toml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	sections := []validation.Validatable{
		&c.App, &c.Project, &c.Scan, &c.Output, &c.Analyzer, &c.Embedder, &c.Watch, &c.Auth,
	}
	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for the query API.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ProjectConfig describes the project being mapped. It feeds the legend
// metadata, the purpose strings and the summary.
type ProjectConfig struct {
	Name        string          `yaml:"name" toml:"name"`
	Description string          `yaml:"description" toml:"description"`
	Version     string          `yaml:"version" toml:"version"`
	Protocol    string          `yaml:"protocol" toml:"protocol"`
	Subject     string          `yaml:"subject" toml:"subject"`
	KeyBoxes    []string        `yaml:"key_boxes" toml:"key_boxes"`
	Security    models.Security `yaml:"security" toml:"security"`
}

// Validate validates the project configuration.
func (c *ProjectConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Protocol, validation.Required),
		validation.Field(&c.Subject, validation.Required),
	)
}

// ScanConfig controls file discovery.
type ScanConfig struct {
	Root    string   `yaml:"root" toml:"root"`
	Include []string `yaml:"include" toml:"include"`
	Exclude []string `yaml:"exclude" toml:"exclude"`
}

// Validate validates the scan configuration.
func (c *ScanConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Include, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.Exclude, validation.Each(validation.Required)),
	)
}

// OutputConfig holds the artifact directory.
type OutputConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// AnalyzerConfig selects the signature extractor and the category rules.
type AnalyzerConfig struct {
	Extractor  string                `yaml:"extractor" toml:"extractor"`
	Categories []legend.CategoryRule `yaml:"categories" toml:"categories"`
}

// Validate validates the analyzer configuration.
func (c *AnalyzerConfig) Validate() error {
	if c.Extractor == "" {
		c.Extractor = analyzer.ExtractorRegex
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Extractor, validation.In(analyzer.ExtractorRegex, analyzer.ExtractorTreeSitter)),
		validation.Field(&c.Categories, validation.Required),
	)
}

// EmbedderConfig selects and tunes the embedding backend.
//
// Provider controls which implementation is used:
//   - "hash" (default): deterministic SHA-256 placeholder, no network.
//   - "ollama": POSTs to an Ollama server at Endpoint.
//   - "genai": calls the Gemini embedding API with APIKey.
type EmbedderConfig struct {
	Provider  string        `yaml:"provider" toml:"provider"`
	Model     string        `yaml:"model" toml:"model"`
	Delay     time.Duration `yaml:"delay" toml:"delay"`
	Endpoint  string        `yaml:"endpoint" toml:"endpoint"`
	APIKey    string        `yaml:"api_key" toml:"api_key"`
	Timeout   time.Duration `yaml:"timeout" toml:"timeout"`
	RateLimit float64       `yaml:"rate_limit" toml:"rate_limit"`
}

// Validate validates the embedder configuration.
func (c *EmbedderConfig) Validate() error {
	if c.Provider == "" {
		c.Provider = embedding.ProviderHash
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.In(embedding.ProviderHash, embedding.ProviderOllama, embedding.ProviderGenAI)),
		validation.Field(&c.Delay, validation.Min(time.Duration(0))),
		validation.Field(&c.Endpoint, validation.When(c.Provider == embedding.ProviderOllama, validation.Required)),
		validation.Field(&c.APIKey, validation.When(c.Provider == embedding.ProviderGenAI, validation.Required)),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
	)
}

// Options converts the section into embedding package options.
func (c *EmbedderConfig) Options() embedding.Config {
	return embedding.Config{
		Provider:  c.Provider,
		Model:     c.Model,
		Delay:     c.Delay,
		Endpoint:  c.Endpoint,
		APIKey:    c.APIKey,
		Timeout:   c.Timeout,
		RateLimit: c.RateLimit,
	}
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required, validation.Min(10*time.Millisecond)),
	)
}

// AuthConfig holds authentication configuration for the query API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a Config that maps an AumCoin checkout from the
// current directory into ./project-knowledge.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Project: ProjectConfig{
			Name:        "AumCoin",
			Description: "Satoshi Vision cryptocurrency with all 15 original Bitcoin OP_CODES restored",
			Version:     "1.0.0-alpha",
			Protocol:    "City of Boxes v1.0",
			Subject:     "AumCoin cryptocurrency",
			KeyBoxes:    []string{"ScriptBox", "MainBox", "InitBox", "BitcoinrpcBox", "WalletBox"},
			Security: models.Security{
				Phase1Complete: true,
				Phase2Pending:  []string{"OpenSSL 3.x", "Boost 1.84+", "BDB→LevelDB"},
				AuditRequired:  true,
			},
		},
		Scan: ScanConfig{
			Root: ".",
			Include: []string{
				"src/**/*.cpp",
				"src/**/*.h",
				"src/**/*.c",
				"*.md",
				"*.sh",
				"Dockerfile",
				"docker-compose.yml",
				"*.pro",
			},
			Exclude: []string{"node_modules", ".git", "build", "obj", "obj-test", "*.o", "*.a"},
		},
		Output: OutputConfig{
			Dir: "./project-knowledge",
		},
		Analyzer: AnalyzerConfig{
			Extractor:  analyzer.ExtractorRegex,
			Categories: legend.DefaultCategoryRules(),
		},
		Embedder: EmbedderConfig{
			Provider:  embedding.ProviderHash,
			Delay:     100 * time.Millisecond,
			Timeout:   30 * time.Second,
			RateLimit: 5,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
