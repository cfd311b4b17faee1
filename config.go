package mrtrie

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// FilterConfig holds the exclusion inputs as read from a YAML file and the
// environment. Priority: ENV > YAML > defaults (via env-default tags).
//
// An absent key keeps the default; an explicit empty list disables the rule.
// The pattern rule is disabled with disable_name_pattern.
type FilterConfig struct {
	SkipPlaceTypes     []string `yaml:"skip_place_types" env:"MRTRIE_SKIP_PLACE_TYPES" env-default:"ICES Statistical Rectangles,FAO Subdivisions,NAFO Area,ICES Areas"`
	SkipNames          []string `yaml:"skip_names" env:"MRTRIE_SKIP_NAMES" env-default:"As,Of"`
	SkipNamePattern    string   `yaml:"skip_name_pattern" env:"MRTRIE_SKIP_NAME_PATTERN" env-default:"^[A-Z]+[0-9][A-Z0-9]*$"`
	DisableNamePattern bool     `yaml:"disable_name_pattern" env:"MRTRIE_DISABLE_NAME_PATTERN"`
}

// DefaultFilterConfig returns the configuration equivalent to DefaultFilter.
// The slices are fresh copies and may be modified by the caller.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		SkipPlaceTypes:  append([]string(nil), defaultSkippedPlaceTypes...),
		SkipNames:       append([]string(nil), defaultSkippedNames...),
		SkipNamePattern: DefaultSkippedNamePattern,
	}
}

// LoadFilterConfig reads the filter configuration. With an empty path only
// the environment and defaults are consulted.
func LoadFilterConfig(path string) (FilterConfig, error) {
	var cfg FilterConfig

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return FilterConfig{}, fmt.Errorf("filter config: read %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return FilterConfig{}, fmt.Errorf("filter config: read env: %w", err)
	}
	return cfg, nil
}

// Filter compiles the configuration into a Filter.
func (c FilterConfig) Filter() (*Filter, error) {
	pattern := c.SkipNamePattern
	if c.DisableNamePattern {
		pattern = ""
	}
	f, err := NewFilter(c.SkipPlaceTypes, c.SkipNames, pattern)
	if err != nil {
		return nil, fmt.Errorf("filter config: %w", err)
	}
	return f, nil
}
