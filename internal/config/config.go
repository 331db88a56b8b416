package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fintrack-dev/fintrack/internal/importer"
)

// FileName is the config file at the root of a ledger directory.
const FileName = "fintrack.yaml"

// Config represents the top-level fintrack.yaml configuration.
type Config struct {
	Ledger LedgerConfig `yaml:"ledger"`
	Import ImportConfig `yaml:"import"`
	Export ExportConfig `yaml:"export"`
	Git    GitConfig    `yaml:"git"`
	// Presets are named column mappings selectable with import --preset.
	Presets map[string]importer.Mapping `yaml:"presets,omitempty"`
}

// LedgerConfig identifies the ledger.
type LedgerConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// ImportConfig controls CSV import.
type ImportConfig struct {
	UncategorizedName string `yaml:"uncategorized_name"`
	CategoryColor     string `yaml:"category_color"`
	CategoryIcon      string `yaml:"category_icon"`
	FuzzyDistance     int    `yaml:"fuzzy_distance"`
}

// ExportConfig controls CSV export.
type ExportConfig struct {
	Dir string `yaml:"dir"` // relative to the ledger root unless absolute
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a fintrack.yaml file from disk. Unset import and export
// settings take their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(ledgerName string) *Config {
	cfg := &Config{
		Ledger: LedgerConfig{Name: ledgerName},
		Git: GitConfig{
			AuthorName:  "FinTrack",
			AuthorEmail: "import@fintrack.local",
		},
	}
	cfg.fillDefaults()
	return cfg
}

func (c *Config) fillDefaults() {
	if c.Ledger.Currency == "" {
		c.Ledger.Currency = "USD"
	}
	if c.Import.UncategorizedName == "" {
		c.Import.UncategorizedName = importer.DefaultUncategorized
	}
	if c.Import.CategoryColor == "" {
		c.Import.CategoryColor = "#6b7280"
	}
	if c.Import.CategoryIcon == "" {
		c.Import.CategoryIcon = "Tag"
	}
	if c.Import.FuzzyDistance == 0 {
		c.Import.FuzzyDistance = 2
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "exports"
	}
}

// PresetRegistry returns the built-in mapping presets plus the ones declared
// in the config. Preset names are case-insensitive and must be unique.
func (c *Config) PresetRegistry() (*importer.Presets, error) {
	reg := importer.DefaultPresets()
	for name, m := range c.Presets {
		if _, ok := reg.Get(name); ok {
			return nil, fmt.Errorf("preset %q is already defined", name)
		}
		reg.Register(name, m)
	}
	return reg, nil
}
