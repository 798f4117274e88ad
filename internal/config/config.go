// Package config handles tool configuration loading and management.
package config

import "github.com/sarich/tempestremap/pkg/overlap"

// Config holds all tool settings.
type Config struct {
	Overlap OverlapConfig `yaml:"overlap"`
	Logging LoggingConfig `yaml:"logging"`
}

// OverlapConfig holds overlap-mesh construction settings.
type OverlapConfig struct {
	Method string `yaml:"method"`

	Exact TolerancesConfig `yaml:"exact"`
	Fuzzy TolerancesConfig `yaml:"fuzzy"`

	FullScanThreshold int `yaml:"full_scan_threshold"`
}

// TolerancesConfig holds the tolerance set of one clipping path.
type TolerancesConfig struct {
	Coincident   float64 `yaml:"coincident"`
	Area         float64 `yaml:"area"`
	Conservation float64 `yaml:"conservation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Overlap: OverlapConfig{
			Method:            "fuzzy",
			Exact:             tolerancesConfig(overlap.ExactTolerances()),
			Fuzzy:             tolerancesConfig(overlap.FuzzyTolerances()),
			FullScanThreshold: 32,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

func tolerancesConfig(t overlap.Tolerances) TolerancesConfig {
	return TolerancesConfig{
		Coincident:   t.Coincident,
		Area:         t.Area,
		Conservation: t.Conservation,
	}
}

// Options converts the configuration into overlap assembly options.
func (c *Config) Options() (overlap.Options, error) {
	m, err := overlap.ParseMethod(c.Overlap.Method)
	if err != nil {
		return overlap.Options{}, err
	}
	opts := overlap.DefaultOptions(m)
	opts.Exact = c.Overlap.Exact.tolerances()
	opts.Fuzzy = c.Overlap.Fuzzy.tolerances()
	if c.Overlap.FullScanThreshold > 0 {
		opts.FullScanThreshold = c.Overlap.FullScanThreshold
	}
	return opts, nil
}

func (t TolerancesConfig) tolerances() overlap.Tolerances {
	return overlap.Tolerances{
		Coincident:   t.Coincident,
		Area:         t.Area,
		Conservation: t.Conservation,
	}
}
