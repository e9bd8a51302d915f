package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kasuboski/showmatcher/pkg/pattern"
	"github.com/spf13/viper"
)

type Config struct {
	Directory       string   `json:"directory" yaml:"directory" mapstructure:"directory" validate:"required"`
	Destination     string   `json:"destination" yaml:"destination" mapstructure:"destination" validate:"required"`
	SeriesName      string   `json:"seriesName" yaml:"series-name" mapstructure:"series-name" validate:"required"`
	SeriesID        int      `json:"seriesId" yaml:"series-id" mapstructure:"series-id" validate:"gte=0"`
	IgnoreSubstring string   `json:"ignoreSubstring" yaml:"ignore-substring" mapstructure:"ignore-substring"`
	NamingPattern   string   `json:"namingPattern" yaml:"naming-pattern" mapstructure:"naming-pattern"`
	DryRun          bool     `json:"dryRun" yaml:"dry-run" mapstructure:"dry-run"`
	Overwrite       bool     `json:"overwrite" yaml:"overwrite" mapstructure:"overwrite"`
	Extensions      []string `json:"extensions" yaml:"extensions" mapstructure:"extensions" validate:"dive,startswith=."`
	Lookup          Lookup   `json:"lookup" yaml:"lookup" mapstructure:"lookup"`
	Log             Log      `json:"log" yaml:"log" mapstructure:"log"`
}

type Lookup struct {
	Provider    string        `json:"provider" yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=tvdb tmdb fixture"`
	TVDB        TVDB          `json:"tvdb" yaml:"tvdb" mapstructure:"tvdb"`
	TMDB        TMDB          `json:"tmdb" yaml:"tmdb" mapstructure:"tmdb"`
	Fixture     string        `json:"fixture" yaml:"fixture" mapstructure:"fixture" validate:"required_if=Provider fixture"`
	BaseBackoff time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff"`
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries" mapstructure:"maxRetries" validate:"gte=0"`
}

type TVDB struct {
	URI    string `json:"uri" yaml:"uri" mapstructure:"uri"`
	APIKey string `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
	PIN    string `json:"pin" yaml:"pin" mapstructure:"pin"`
}

type TMDB struct {
	URI    string `json:"uri" yaml:"uri" mapstructure:"uri"`
	APIKey string `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
}

type Log struct {
	Level      string `json:"level" yaml:"level" mapstructure:"level"`
	JSON       bool   `json:"json" yaml:"json" mapstructure:"json"`
	File       string `json:"file" yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `json:"maxSizeMB" yaml:"maxSizeMB" mapstructure:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups" mapstructure:"maxBackups"`
}

var (
	ErrModeRequired  = errors.New("one of ignore-substring or naming-pattern is required")
	ErrModeExclusive = errors.New("ignore-substring and naming-pattern cannot be used together")
)

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required keys and that exactly one of ignore-substring and naming-pattern is set.
// Both are compiled so a bad expression fails before any file is touched.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return c.validateMode()
}

// ValidateMode checks only the resolution mode keys, for commands that don't move files
func (c Config) ValidateMode() error {
	if c.SeriesName == "" {
		return errors.New("invalid configuration: series-name is required")
	}
	return c.validateMode()
}

func (c Config) validateMode() error {
	switch {
	case c.IgnoreSubstring == "" && c.NamingPattern == "":
		return ErrModeRequired
	case c.IgnoreSubstring != "" && c.NamingPattern != "":
		return ErrModeExclusive
	}

	_, _, err := c.Patterns()
	return err
}

// Patterns compiles the configured ignore substring and naming pattern. Unset ones are nil.
func (c Config) Patterns() (ignore *regexp.Regexp, naming *regexp.Regexp, err error) {
	if c.IgnoreSubstring != "" {
		ignore, err = regexp.Compile(c.IgnoreSubstring)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid ignore-substring: %w", err)
		}
	}

	if c.NamingPattern != "" {
		naming, err = pattern.Compile(c.NamingPattern)
		if err != nil {
			return nil, nil, err
		}
	}

	return ignore, naming, nil
}
