package legend

import (
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultCategory is assigned when no rule matches.
const DefaultCategory = "other"

// CategoryRule assigns Label to a path that contains any of Contains or ends
// with Suffix. Paths are lowercased before matching.
type CategoryRule struct {
	Label    string   `yaml:"label" toml:"label"`
	Contains []string `yaml:"contains" toml:"contains"`
	Suffix   string   `yaml:"suffix" toml:"suffix"`
}

// Validate validates the rule.
func (r CategoryRule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Label, validation.Required),
		validation.Field(&r.Contains, validation.When(r.Suffix == "", validation.Required)),
	)
}

// Matches reports whether the lowercased path satisfies the rule.
func (r CategoryRule) Matches(lowerPath string) bool {
	for _, s := range r.Contains {
		if strings.Contains(lowerPath, s) {
			return true
		}
	}
	return r.Suffix != "" && strings.HasSuffix(lowerPath, r.Suffix)
}

var defaultRules = []CategoryRule{
	{Label: "script-engine", Contains: []string{"script"}},
	{Label: "core-consensus", Contains: []string{"main"}},
	{Label: "network", Contains: []string{"net"}},
	{Label: "api", Contains: []string{"rpc"}},
	{Label: "wallet", Contains: []string{"wallet"}},
	{Label: "cryptography", Contains: []string{"crypto", "key"}},
	{Label: "storage", Contains: []string{"db"}},
	{Label: "utilities", Contains: []string{"util"}},
	{Label: "testing", Contains: []string{"test"}},
	{Label: "documentation", Suffix: ".md"},
	{Label: "build-system", Suffix: ".sh"},
	{Label: "infrastructure", Contains: []string{"docker"}},
}

// DefaultCategoryRules returns a copy of the built-in rule list. Order is
// precedence: "script" is checked before "test", so src/test/script_tests.cpp
// is script-engine.
func DefaultCategoryRules() []CategoryRule {
	out := make([]CategoryRule, len(defaultRules))
	for i, r := range defaultRules {
		r.Contains = slices.Clone(r.Contains)
		out[i] = r
	}
	return out
}

// Categorize returns the label of the first rule matching path.
func Categorize(rules []CategoryRule, path string) string {
	p := strings.ToLower(path)
	for _, r := range rules {
		if r.Matches(p) {
			return r.Label
		}
	}
	return DefaultCategory
}
