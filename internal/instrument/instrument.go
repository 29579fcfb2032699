// Package instrument provides instrument-configuration definitions and a
// keyed lookup of default analysis settings per instrument type.
package instrument

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Variant is one known output layout of an instrument. The first variant's
// size column, when present, is the designated default size column.
type Variant struct {
	Name       string `json:"name"`
	SizeColumn string `json:"size_column,omitempty"`
}

// Config is the static record for one instrument type.
type Config struct {
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	BinCount    int       `json:"bin_count,omitempty"` // 0 means no override
	Variants    []Variant `json:"variants,omitempty"`
}

// BinCountOverride returns the configured bin count, if any.
func (c *Config) BinCountOverride() (int, bool) {
	if c.BinCount <= 0 {
		return 0, false
	}
	return c.BinCount, true
}

// DesignatedSizeColumn returns the size column named by the first variant,
// if any.
func (c *Config) DesignatedSizeColumn() (string, bool) {
	if len(c.Variants) == 0 || c.Variants[0].SizeColumn == "" {
		return "", false
	}
	return c.Variants[0].SizeColumn, true
}

// Validate checks a config record for structural problems.
func (c *Config) Validate() error {
	if c.Label == "" {
		return fmt.Errorf("instrument config label is required")
	}
	if c.BinCount < 0 {
		return fmt.Errorf("instrument %s: bin count must not be negative", c.Label)
	}
	return nil
}

// Store is a keyed collection of instrument configs. Each Store is
// independent; tests can build their own without touching the defaults.
type Store struct {
	configs map[string]*Config
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{configs: make(map[string]*Config)}
}

// Register adds or replaces a config keyed by its label.
func (s *Store) Register(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.configs[cfg.Label] = cfg
	return nil
}

// Get returns the config for an instrument label.
func (s *Store) Get(label string) (*Config, bool) {
	cfg, ok := s.configs[label]
	return cfg, ok
}

// Labels returns all registered labels, sorted.
func (s *Store) Labels() []string {
	labels := make([]string, 0, len(s.configs))
	for l := range s.configs {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// LoadFile merges config records from a JSON file into the store. Records
// with the same label replace existing ones.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var configs []*Config
	if err := json.Unmarshal(data, &configs); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for i, cfg := range configs {
		if cfg == nil {
			return fmt.Errorf("parse %s: record %d is null", path, i)
		}
		if err := s.Register(cfg); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// SaveFile writes the store's records to a JSON file.
func (s *Store) SaveFile(path string) error {
	configs := make([]*Config, 0, len(s.configs))
	for _, l := range s.Labels() {
		configs = append(configs, s.configs[l])
	}
	data, err := json.MarshalIndent(configs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// defaultStore holds the built-in instrument configs.
var defaultStore = NewStore()

// Default returns the store of built-in instrument configs.
func Default() *Store {
	return defaultStore
}

func init() {
	for _, cfg := range []*Config{
		{
			Label:       "generic",
			Description: "Unclassified tabular source",
		},
		{
			Label:       "mastersizer",
			Description: "Malvern Mastersizer laser diffraction export",
			BinCount:    64,
			Variants: []Variant{
				{Name: "standard", SizeColumn: "Size (um)"},
				{Name: "legacy", SizeColumn: "particle_size"},
			},
		},
		{
			Label:       "coulter-counter",
			Description: "Coulter counter channel export",
			BinCount:    100,
			Variants: []Variant{
				{Name: "standard", SizeColumn: "diameter_um"},
			},
		},
		{
			Label:       "sieve-stack",
			Description: "Sieve stack weight fractions",
			BinCount:    16,
			Variants: []Variant{
				{Name: "standard", SizeColumn: "mesh_size"},
			},
		},
	} {
		if err := defaultStore.Register(cfg); err != nil {
			panic(err)
		}
	}
}
