package app

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"psd-analyzer/internal/fitting"
	"psd-analyzer/internal/loader"
)

// Prefs is the analyzer preferences file. All fields are optional; absent
// fields keep the package defaults.
type Prefs struct {
	Synthetic SyntheticPrefs `toml:"synthetic"`
	Fitting   FittingPrefs   `toml:"fitting"`
}

// SyntheticPrefs bound synthetic dataset generation.
type SyntheticPrefs struct {
	MinSize *float64 `toml:"min-size"`
	MaxSize *float64 `toml:"max-size"`
	Seed    *uint64  `toml:"seed"`
}

// FittingPrefs override the fit-quality grading thresholds.
type FittingPrefs struct {
	R2Good  *float64 `toml:"r2-good"`
	R2Okay  *float64 `toml:"r2-okay"`
	ChiGood *float64 `toml:"chi-good"`
	ChiOkay *float64 `toml:"chi-okay"`
}

// LoadPrefs reads a TOML preferences file. A missing file is not an error.
func LoadPrefs(path string) (Prefs, error) {
	if path == "" {
		return Prefs{}, fmt.Errorf("prefs path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Prefs{}, nil
		}
		return Prefs{}, fmt.Errorf("stat prefs: %w", err)
	}
	var p Prefs
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return Prefs{}, fmt.Errorf("decode prefs: %w", err)
	}
	return p, nil
}

// Thresholds resolves the grading thresholds with any overrides applied.
func (p Prefs) Thresholds() fitting.Thresholds {
	th := fitting.DefaultThresholds
	if p.Fitting.R2Good != nil {
		th.R2Good = *p.Fitting.R2Good
	}
	if p.Fitting.R2Okay != nil {
		th.R2Okay = *p.Fitting.R2Okay
	}
	if p.Fitting.ChiGood != nil {
		th.ChiGood = *p.Fitting.ChiGood
	}
	if p.Fitting.ChiOkay != nil {
		th.ChiOkay = *p.Fitting.ChiOkay
	}
	return th
}

// SyntheticOptions resolves synthetic generation bounds with any overrides
// applied.
func (p Prefs) SyntheticOptions() loader.SyntheticOptions {
	var opts loader.SyntheticOptions
	if p.Synthetic.MinSize != nil {
		opts.MinSize = *p.Synthetic.MinSize
	}
	if p.Synthetic.MaxSize != nil {
		opts.MaxSize = *p.Synthetic.MaxSize
	}
	if p.Synthetic.Seed != nil {
		opts.Seed = *p.Synthetic.Seed
	}
	return opts
}

// ApplyPrefs installs preference overrides onto the state's components.
func (s *State) ApplyPrefs(p Prefs) {
	s.mu.Lock()
	s.Fitter.Thresholds = p.Thresholds()
	s.mu.Unlock()
}
