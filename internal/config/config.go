// Package config holds all faultline configuration, loaded from an
// optional config file plus FAULTLINE_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all faultline configuration.
type Config struct {
	Output OutputConfig
	Report ReportConfig
	Log    LogConfig
}

// OutputConfig holds report rendering settings.
type OutputConfig struct {
	Format string // "summary" or "json"
	Path   string // destination file; empty means stdout
	Color  bool
}

// ReportConfig holds analysis settings.
type ReportConfig struct {
	MaxIssues int // parse failures retained verbatim in the report
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Verbose bool
}

// New returns a viper instance preloaded with defaults and environment
// bindings. Callers bind their flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("output.format", "summary")
	v.SetDefault("output.path", "")
	v.SetDefault("output.color", true)
	v.SetDefault("report.max_issues", 10)
	v.SetDefault("log.verbose", false)

	v.SetEnvPrefix("FAULTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load materializes the Config from the given viper instance. When path
// is non-empty the named config file is read first; a missing file is
// an error, a missing setting is not.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return Config{
		Output: OutputConfig{
			Format: v.GetString("output.format"),
			Path:   v.GetString("output.path"),
			Color:  v.GetBool("output.color"),
		},
		Report: ReportConfig{
			MaxIssues: v.GetInt("report.max_issues"),
		},
		Log: LogConfig{
			Verbose: v.GetBool("log.verbose"),
		},
	}, nil
}
