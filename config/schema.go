package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only rule file version understood.
const SupportedVersion = 1

// RuleFile is the raw shape of one YAML rule file.
type RuleFile struct {
	Version int `yaml:"version" validate:"required"`

	// MinVersion optionally names the oldest nudge release the file was
	// written for.
	MinVersion string `yaml:"min_version" validate:"omitempty,semver"`

	Rules []Rule `yaml:"rules" validate:"dive"`
}

// Rule is one declarative rule before compilation.
type Rule struct {
	Name        string  `yaml:"name" validate:"required"`
	Description string  `yaml:"description"`
	Message     string  `yaml:"message" validate:"required"`
	Action      string  `yaml:"action" validate:"omitempty,oneof=interrupt continue"`
	On          []Entry `yaml:"on" validate:"required,min=1,dive"`
}

// Entry is one activation and content condition. A rule fires when any of
// its entries matches.
type Entry struct {
	Hook string `yaml:"hook" validate:"required,oneof=PreToolUse UserPromptSubmit"`

	// Tool is a regex-or-literal pattern that must match the whole tool
	// name.
	Tool string `yaml:"tool"`

	// File is a doublestar glob matched against the event's file path.
	File string `yaml:"file"`

	// When is an optional CEL expression over the event.
	When string `yaml:"when"`

	// Content matchers, keyed by the payload field they inspect. At most
	// one key may be set.
	Content    []MatcherSpec `yaml:"content" validate:"dive"`
	NewContent []MatcherSpec `yaml:"new_content" validate:"dive"`
	URL        []MatcherSpec `yaml:"url" validate:"dive"`
	Command    []MatcherSpec `yaml:"command" validate:"dive"`
	Prompt     []MatcherSpec `yaml:"prompt" validate:"dive"`

	Validate     []ValidatorSpec    `yaml:"validate" validate:"dive"`
	ProjectState []ProjectStateSpec `yaml:"project_state" validate:"dive"`
}

// MatcherSpec is a `kind`-tagged content matcher. Exactly one of the kind
// specific fields is set after decoding.
type MatcherSpec struct {
	Kind       string
	Regex      *RegexSpec
	SyntaxTree *SyntaxTreeSpec
	External   *ExternalSpec
}

type RegexSpec struct {
	Kind       string `mapstructure:"kind"`
	Pattern    string `mapstructure:"pattern" validate:"required"`
	Suggestion string `mapstructure:"suggestion"`
}

type SyntaxTreeSpec struct {
	Kind       string `mapstructure:"kind"`
	Language   string `mapstructure:"language" validate:"required"`
	Query      string `mapstructure:"query" validate:"required"`
	Suggestion string `mapstructure:"suggestion"`
}

type ExternalSpec struct {
	Kind       string   `mapstructure:"kind"`
	Command    []string `mapstructure:"command" validate:"required,min=1,dive,required"`
	Suggestion string   `mapstructure:"suggestion"`
}

// UnmarshalYAML reads `kind` first and decodes the remaining keys strictly
// into the matching spec, so a misspelled key is an error rather than a
// silently ignored field.
func (m *MatcherSpec) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	kind, _ := raw["kind"].(string)
	m.Kind = kind

	var target any
	switch kind {
	case "Regex":
		m.Regex = &RegexSpec{}
		target = m.Regex
	case "SyntaxTree":
		m.SyntaxTree = &SyntaxTreeSpec{}
		target = m.SyntaxTree
	case "External":
		m.External = &ExternalSpec{}
		target = m.External
	case "":
		return fmt.Errorf("line %d: matcher is missing `kind`", node.Line)
	default:
		return fmt.Errorf("line %d: unknown matcher kind %q (expected Regex, SyntaxTree or External)", node.Line, kind)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("line %d: %s matcher: %w", node.Line, kind, err)
	}
	return nil
}

// ValidatorSpec is a relational check over the captures of each match.
type ValidatorSpec struct {
	Kind    string `yaml:"kind" validate:"required,oneof=Exists NotExists Contains NotContains Equals"`
	From    string `yaml:"from" validate:"required_if=Kind Contains,required_if=Kind NotContains,required_if=Kind Equals"`
	To      string `yaml:"to" validate:"required_if=Kind Contains,required_if=Kind NotContains,required_if=Kind Equals"`
	Pattern string `yaml:"pattern"`
}

// ProjectStateSpec gates an entry on ambient project state.
type ProjectStateSpec struct {
	Kind   string        `yaml:"kind" validate:"required,oneof=Git"`
	Branch []MatcherSpec `yaml:"branch" validate:"required,min=1,dive"`
}
