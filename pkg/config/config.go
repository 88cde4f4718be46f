package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidConfig is returned when a config file does not match the schema
// or holds out-of-range values.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration options for accessorlint.
type Config struct {
	// Rule toggles
	Rules RulesConfig `koanf:"rules" json:"rules" toml:"rules" yaml:"rules"`

	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" json:"analysis" toml:"analysis" yaml:"analysis"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" json:"exclude" toml:"exclude" yaml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" json:"cache" toml:"cache" yaml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" json:"output" toml:"output" yaml:"output"`
}

// RulesConfig selects which accessor kinds are checked.
type RulesConfig struct {
	Getters bool `koanf:"getters" json:"getters" toml:"getters" yaml:"getters"`
	Setters bool `koanf:"setters" json:"setters" toml:"setters" yaml:"setters"`
}

// AnalysisConfig controls how sources are analyzed.
type AnalysisConfig struct {
	IncludeTests bool `koanf:"include_tests" json:"include_tests" toml:"include_tests" yaml:"include_tests"`
	// Workers is the parse and check concurrency; 0 means 2x NumCPU.
	Workers int `koanf:"workers" json:"workers" toml:"workers" yaml:"workers"`
	// MaxFileSize skips larger files, in bytes; 0 means no limit.
	MaxFileSize int64 `koanf:"max_file_size" json:"max_file_size" toml:"max_file_size" yaml:"max_file_size"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" json:"patterns" toml:"patterns" yaml:"patterns"`
	Dirs      []string `koanf:"dirs" json:"dirs" toml:"dirs" yaml:"dirs"`
	Gitignore bool     `koanf:"gitignore" json:"gitignore" toml:"gitignore" yaml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" json:"enabled" toml:"enabled" yaml:"enabled"`
	Dir     string `koanf:"dir" json:"dir" toml:"dir" yaml:"dir"`
	TTL     int    `koanf:"ttl" json:"ttl" toml:"ttl" yaml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" json:"format" toml:"format" yaml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" json:"color" toml:"color" yaml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{
			Getters: true,
			Setters: true,
		},
		Analysis: AnalysisConfig{
			IncludeTests: false,
			Workers:      0,
			MaxFileSize:  1 << 20,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"package-info.java",
				"module-info.java",
			},
			Dirs: []string{
				".git",
				".accessorlint",
				"target",
				"build",
				"out",
				"node_modules",
				".gradle",
				".idea",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".accessorlint/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("config: parsing embedded schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("accessorlint.schema.json", doc); err != nil {
		panic(fmt.Sprintf("config: adding embedded schema: %v", err))
	}
	return c.MustCompile("accessorlint.schema.json")
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// Load loads configuration from a file. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if err := validateRaw(k); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// validateRaw checks the loaded document against the embedded schema. The
// document is round-tripped through JSON so every format is validated the
// same way.
func validateRaw(k *koanf.Koanf) error {
	raw, err := k.Marshal(json.Parser())
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	return compiledSchema.Validate(inst)
}

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	if !c.Rules.Getters && !c.Rules.Setters {
		return fmt.Errorf("%w: at least one of rules.getters and rules.setters must be enabled", ErrInvalidConfig)
	}
	for _, p := range c.Exclude.Patterns {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: empty exclude pattern", ErrInvalidConfig)
		}
	}
	return nil
}

// configNames are the file names searched for, in order.
var configNames = []string{
	"accessorlint.toml",
	"accessorlint.yaml",
	"accessorlint.yml",
	"accessorlint.json",
	".accessorlint.toml",
	".accessorlint.yaml",
	".accessorlint.yml",
	".accessorlint.json",
}

// searchDirs are searched in order relative to the working directory.
var searchDirs = []string{".", ".accessorlint"}

// LoadResult is a loaded configuration and the file it came from.
type LoadResult struct {
	Config *Config
	// Source is empty when defaults were used.
	Source string
}

type loadOptions struct {
	path string
	dir  string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads the given file instead of searching the standard locations.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithDir searches the standard locations relative to dir.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// LoadConfig loads an explicit config file, or the first one found in the
// standard locations, or the defaults. Unlike LoadOrDefault it reports
// invalid files.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	if path := find(o.dir); path != "" {
		cfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: path}, nil
	}
	return &LoadResult{Config: DefaultConfig()}, nil
}

func find(base string) string {
	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(base, dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := find("."); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// Kinds returns the enabled accessor kinds as rule names.
func (c *Config) Kinds() []string {
	var kinds []string
	if c.Rules.Getters {
		kinds = append(kinds, "getter")
	}
	if c.Rules.Setters {
		kinds = append(kinds, "setter")
	}
	return kinds
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
