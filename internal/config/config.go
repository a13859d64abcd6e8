// Package config loads sglint.toml or .sglint.yml and turns it into the
// options of the lint pipeline.
package config

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"sglint/internal/annotate"
	"sglint/internal/diag"
	"sglint/internal/region"
	"sglint/internal/rule"
	"sglint/internal/rules"
)

// ErrNotFound is returned by Find when no configuration file exists above
// the start directory.
var ErrNotFound = errors.New("no sglint configuration found")

// FileNames are probed in order in every directory.
var FileNames = []string{"sglint.toml", ".sglint.yml", ".sglint.yaml"}

type Config struct {
	// Path is the file the configuration was read from; empty for defaults.
	Path string `toml:"-" yaml:"-" msgpack:"-"`

	Prefix   string      `toml:"prefix" yaml:"prefix" msgpack:"prefix"`
	TieBreak string      `toml:"tie_break" yaml:"tie_break" msgpack:"tie_break"`
	Rules    RulesConfig `toml:"rules" yaml:"rules" msgpack:"rules"`

	LineLength     LineLengthConfig     `toml:"line_length" yaml:"line_length" msgpack:"line_length"`
	IdentifierName IdentifierNameConfig `toml:"identifier_name" yaml:"identifier_name" msgpack:"identifier_name"`
	Blanket        BlanketConfig        `toml:"blanket_disable_command" yaml:"blanket_disable_command" msgpack:"blanket"`
}

type RulesConfig struct {
	Disabled []string          `toml:"disabled" yaml:"disabled" msgpack:"disabled"`
	OptIn    []string          `toml:"opt_in" yaml:"opt_in" msgpack:"opt_in"`
	Only     []string          `toml:"only" yaml:"only" msgpack:"only"`
	Severity map[string]string `toml:"severity" yaml:"severity" msgpack:"severity"`
}

type LineLengthConfig struct {
	Max int `toml:"max" yaml:"max" msgpack:"max"`
}

type IdentifierNameConfig struct {
	MinLength int `toml:"min_length" yaml:"min_length" msgpack:"min_length"`
}

type BlanketConfig struct {
	Allowed []string `toml:"allowed" yaml:"allowed" msgpack:"allowed"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Prefix:         annotate.DefaultPrefix,
		TieBreak:       region.TieLastWins.String(),
		LineLength:     LineLengthConfig{Max: rules.DefaultLineLength},
		IdentifierName: IdentifierNameConfig{MinLength: rules.DefaultIdentMinLength},
	}
}

// Find walks up from startDir and returns the first configuration file.
func Find(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrNotFound
}

// Load reads path, picking the decoder by extension, and validates the result.
// Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := decodeTOML(path, cfg); err != nil {
			return nil, err
		}
	case ".yml", ".yaml":
		if err := decodeYAML(path, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: unsupported configuration format", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover finds and loads the configuration governing startDir. When no
// file exists the defaults are returned.
func Discover(startDir string) (*Config, error) {
	path, err := Find(startDir)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Load(path)
}

func decodeTOML(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if meta.IsDefined("line_length") && !meta.IsDefined("line_length", "max") {
		return fmt.Errorf("%s: missing [line_length].max", path)
	}
	if meta.IsDefined("identifier_name") && !meta.IsDefined("identifier_name", "min_length") {
		return fmt.Errorf("%s: missing [identifier_name].min_length", path)
	}
	return nil
}

func decodeYAML(path string, cfg *Config) error {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	return nil
}

// Validate checks the values that cannot be checked against the registry.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Prefix) == "" {
		return errors.New("prefix must not be empty")
	}
	if strings.ContainsAny(c.Prefix, " \t\n:") {
		return fmt.Errorf("prefix %q must not contain whitespace or ':'", c.Prefix)
	}
	if _, err := region.ParseTieBreak(c.TieBreak); err != nil {
		return err
	}
	if c.LineLength.Max < 0 {
		return fmt.Errorf("line_length.max must be positive, got %d", c.LineLength.Max)
	}
	if c.IdentifierName.MinLength < 0 {
		return fmt.Errorf("identifier_name.min_length must be positive, got %d", c.IdentifierName.MinLength)
	}
	for id, sev := range c.Rules.Severity {
		if _, err := diag.ParseSeverity(sev); err != nil {
			return fmt.Errorf("rules.severity.%s: %w", id, err)
		}
	}
	return nil
}

// RuleOptions converts the rule section for rules.NewRegistry.
func (c *Config) RuleOptions() rules.Options {
	opts := rules.Options{
		LineLength:     c.LineLength.Max,
		IdentMinLength: c.IdentifierName.MinLength,
	}
	if len(c.Rules.Severity) > 0 {
		opts.Severity = make(map[rule.ID]diag.Severity, len(c.Rules.Severity))
		for id, s := range c.Rules.Severity {
			// validated by Load
			sev, _ := diag.ParseSeverity(s) //nolint:errcheck
			opts.Severity[rule.ID(id)] = sev
		}
	}
	return opts
}

func (c *Config) Selection() rule.Selection {
	return rule.Selection{
		Only:     ids(c.Rules.Only),
		OptIn:    ids(c.Rules.OptIn),
		Disabled: ids(c.Rules.Disabled),
	}
}

func (c *Config) BlanketAllowed() []rule.ID {
	return ids(c.Blanket.Allowed)
}

func (c *Config) TieBreakMode() region.TieBreak {
	tb, err := region.ParseTieBreak(c.TieBreak)
	if err != nil {
		return region.TieLastWins
	}
	return tb
}

// Fingerprint identifies every setting that can change lint output. Cached
// results are only reused under an identical fingerprint.
func (c *Config) Fingerprint() [32]byte {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(c); err != nil {
		panic(fmt.Errorf("config fingerprint: %w", err))
	}
	return sha256.Sum256(buf.Bytes())
}

func ids(in []string) []rule.ID {
	if len(in) == 0 {
		return nil
	}
	out := make([]rule.ID, len(in))
	for i, s := range in {
		out[i] = rule.ID(strings.TrimSpace(s))
	}
	return out
}
