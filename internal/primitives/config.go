// Package primitives defines the runtime configuration of the core.
//
// Config is the file-level view of every tunable: it is loaded from YAML,
// filled with defaults, and validated with struct tags before any component
// sees it. Components take functional options; core.WithConfig translates a
// validated Config into those options.
package primitives

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSummaryWidth = 19
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Config is the complete core configuration.
type Config struct {
	Interner InternerConfig `json:"interner" yaml:"interner"`
	Clone    CloneConfig    `json:"clone" yaml:"clone"`
	History  HistoryConfig  `json:"history" yaml:"history"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// InternerConfig seeds the interner.
type InternerConfig struct {
	// Preload lists field sets interned at construction time.
	Preload [][]Scalar `json:"preload,omitempty" yaml:"preload,omitempty"`
}

// CloneConfig bounds deep clones.
type CloneConfig struct {
	// MaxEntities caps the entities one clone call may allocate; 0 is unbounded.
	MaxEntities int `json:"max_entities" yaml:"max_entities" validate:"gte=0"`
}

// HistoryConfig tunes undo behavior.
type HistoryConfig struct {
	// MaxRestoreAttempts caps restore attempts per Undo; 0 is unbounded.
	MaxRestoreAttempts int `json:"max_restore_attempts" yaml:"max_restore_attempts" validate:"gte=0"`
	// SummaryWidth truncates state descriptors in summaries.
	SummaryWidth int `json:"summary_width" yaml:"summary_width" validate:"gte=1,lte=4096"`
}

// LogConfig selects the slog handler built by the CLI.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=text json"`
}

// DefaultConfig returns the baseline configuration: unbounded clones,
// unbounded restore retries, 19-character summaries.
func DefaultConfig() Config {
	return Config{
		History: HistoryConfig{SummaryWidth: DefaultSummaryWidth},
		Log:     LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint and returns a readable error that
// names each failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %w", errors.Join(errs...))
}

// LoadConfig decodes YAML from r over DefaultConfig and validates the result.
// Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("yaml decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile opens path and calls LoadConfig.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}
