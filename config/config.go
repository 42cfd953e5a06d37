// Package config loads capctl settings using Viper.
//
// Precedence, lowest to highest: built-in defaults, an optional
// capctl.toml in the working directory, then CAPS_* environment
// variables. The engine library itself takes no configuration; this
// package serves only the CLI.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/tolaworks/caps/errors"
)

// Config holds capctl settings.
type Config struct {
	// Manifest is the default declaration file path when no argument is
	// given on the command line.
	Manifest string `mapstructure:"manifest"`

	// Output controls rendering.
	Output OutputConfig `mapstructure:"output"`
}

// OutputConfig controls how results and failures are rendered.
type OutputConfig struct {
	// JSON switches logging to structured JSON.
	JSON bool `mapstructure:"json"`

	// Plain disables ANSI colors in requirement failure reports.
	Plain bool `mapstructure:"plain"`
}

// SetDefaults applies the built-in defaults to a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("manifest", "caps.toml")
	v.SetDefault("output.json", false)
	v.SetDefault("output.plain", false)
}

// Load reads the capctl configuration.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CAPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	v.SetConfigName("capctl")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading capctl.toml")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling capctl config")
	}
	return &cfg, nil
}
