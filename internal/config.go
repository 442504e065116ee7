package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/astrometa/internal/calibration"
	"github.com/starford/astrometa/internal/filename"
	"github.com/starford/astrometa/internal/header"
	"github.com/starford/astrometa/internal/indexer"
	pkgconfig "github.com/starford/astrometa/pkg/config"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Scan        ScanConfig        `yaml:"scan"`
	Filename    filename.Options  `yaml:"filename"`
	Normalize   NormalizeConfig   `yaml:"normalize"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Auth        AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Scan.Validate(); err != nil {
		return err
	}
	if err := c.Normalize.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ScanConfig holds the capture directories and how to walk them.
type ScanConfig struct {
	Dirs            []string `yaml:"dirs"`
	Patterns        []string `yaml:"patterns"`
	Recursive       bool     `yaml:"recursive"`
	ProfileFromPath bool     `yaml:"profile_from_path"`
	DirectoryAccept string   `yaml:"directory_accept"`
	Enrich          bool     `yaml:"enrich"`
}

// Validate validates the scan configuration.
func (c *ScanConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Dirs, validation.Required),
	); err != nil {
		return err
	}
	for _, p := range c.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("scan: bad pattern %q: %w", p, err)
		}
	}
	return nil
}

// NormalizeConfig holds normalization options: extra date layouts, the
// mosaic panel pattern, and filter spelling aliases (inline or from a
// separate YAML file).
type NormalizeConfig struct {
	DateFormats     []string          `yaml:"date_formats"`
	DateTimeFormats []string          `yaml:"datetime_formats"`
	PanelPattern    string            `yaml:"panel_pattern"`
	FilterAliases   map[string]string `yaml:"filter_aliases"`
	FilterAliasFile string            `yaml:"filter_alias_file"`
}

// Validate validates the normalization configuration.
func (c *NormalizeConfig) Validate() error {
	if c.PanelPattern == "" {
		return nil
	}
	re, err := regexp.Compile(c.PanelPattern)
	if err != nil {
		return fmt.Errorf("normalize: bad panel pattern %q: %w", c.PanelPattern, err)
	}
	if re.NumSubexp() < 1 {
		return fmt.Errorf("normalize: panel pattern %q needs a capture group", c.PanelPattern)
	}
	return nil
}

// CalibrationConfig holds calibration matching tolerances.
type CalibrationConfig struct {
	TemperatureTolerance float64 `yaml:"temperature_tolerance"`
	DateToleranceDays    int     `yaml:"date_tolerance_days"`
	PreferExactExposure  bool    `yaml:"prefer_exact_exposure"`
	MatchGain            bool    `yaml:"match_gain"`
	MatchOffset          bool    `yaml:"match_offset"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// IndexerOptions converts the configuration into indexer options,
// compiling the panel pattern and loading the filter alias file if set.
func (c *Config) IndexerOptions() (indexer.Options, error) {
	opts := indexer.Options{
		Recursive:       c.Scan.Recursive,
		Patterns:        c.Scan.Patterns,
		ProfileFromPath: c.Scan.ProfileFromPath,
		DirectoryAccept: c.Scan.DirectoryAccept,
		Enrich:          c.Scan.Enrich,
		Filename:        c.Filename,
		Header: header.Options{
			DateLayouts:     c.Normalize.DateFormats,
			DateTimeLayouts: c.Normalize.DateTimeFormats,
		},
	}

	if c.Normalize.PanelPattern != "" {
		re, err := regexp.Compile(c.Normalize.PanelPattern)
		if err != nil {
			return opts, fmt.Errorf("config: panel pattern: %w", err)
		}
		opts.Header.PanelPattern = re
	}

	aliases := make(map[string]string, len(c.Normalize.FilterAliases))
	if c.Normalize.FilterAliasFile != "" {
		var fromFile map[string]string
		if err := pkgconfig.Load(c.Normalize.FilterAliasFile, &fromFile); err != nil {
			return opts, fmt.Errorf("config: filter alias file: %w", err)
		}
		for k, v := range fromFile {
			aliases[k] = v
		}
	}
	// Inline aliases win over the file.
	for k, v := range c.Normalize.FilterAliases {
		aliases[k] = v
	}
	if len(aliases) > 0 {
		opts.Header.FilterAliases = aliases
	}

	return opts, nil
}

// CalibrationOptions converts the configuration into matching options.
func (c *Config) CalibrationOptions() calibration.Options {
	return calibration.Options{
		TemperatureTolerance: c.Calibration.TemperatureTolerance,
		DateToleranceDays:    c.Calibration.DateToleranceDays,
		PreferExactExposure:  c.Calibration.PreferExactExposure,
		MatchGain:            c.Calibration.MatchGain,
		MatchOffset:          c.Calibration.MatchOffset,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	cal := calibration.DefaultOptions()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Scan: ScanConfig{
			Dirs:            []string{"."},
			Recursive:       true,
			DirectoryAccept: indexer.DefaultDirectoryAccept,
		},
		Filename: filename.DefaultOptions(),
		Calibration: CalibrationConfig{
			TemperatureTolerance: cal.TemperatureTolerance,
			DateToleranceDays:    cal.DateToleranceDays,
			PreferExactExposure:  cal.PreferExactExposure,
			MatchGain:            cal.MatchGain,
			MatchOffset:          cal.MatchOffset,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
