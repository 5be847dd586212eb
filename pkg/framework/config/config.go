// Package config loads host settings for running processors: audio format,
// spectrum analysis and logging.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/avgo/pkg/dsp/analysis"
	"github.com/justyntemme/avgo/pkg/framework/debug"
)

// MaxFileSize bounds the size of a configuration file.
const MaxFileSize = 1 << 20

// Config holds the settings a host applies to every binding it creates.
type Config struct {
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate" validate:"gt=0,lte=768000"`
	MaxBlockSize int     `yaml:"max_block_size" json:"max_block_size" validate:"gt=0,lte=65536"`

	FFT     FFTConfig     `yaml:"fft" json:"fft"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// FFTConfig controls the spectra computed for spectrum ports.
type FFTConfig struct {
	Size   int    `yaml:"size" json:"size" validate:"pow2,gte=16,lte=65536"`
	Window string `yaml:"window" json:"window" validate:"window"`
}

// LogConfig selects the binding logger's level and prefix.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"loglevel"`
	Prefix string `yaml:"prefix" json:"prefix"`
	JSON   bool   `yaml:"json" json:"json"`
}

// MetricsConfig toggles Prometheus instrumentation of bindings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		SampleRate:   48000,
		MaxBlockSize: 512,
		FFT: FFTConfig{
			Size:   1024,
			Window: analysis.HannWindow.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Prefix: "avgo",
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("pow2", validatePow2)
	_ = validate.RegisterValidation("window", validateWindow)
	_ = validate.RegisterValidation("loglevel", validateLogLevel)
}

func validatePow2(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n > 0 && n&(n-1) == 0
}

func validateWindow(fl validator.FieldLevel) bool {
	_, err := analysis.ParseWindow(fl.Field().String())
	return err == nil
}

func validateLogLevel(fl validator.FieldLevel) bool {
	_, err := debug.ParseLevel(fl.Field().String())
	return err == nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s fails %q (value %v): %w", fe.Namespace(), fe.Tag(), fe.Value(), err)
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Window returns the parsed FFT window.
func (c Config) Window() analysis.WindowFunc {
	w, _ := analysis.ParseWindow(c.FFT.Window)
	return w
}

// Logger builds a logger from the log settings.
func (c Config) Logger() *debug.Logger {
	flags := debug.FlagTime | debug.FlagLevel | debug.FlagPrefix
	if c.Log.JSON {
		flags |= debug.FlagJSON
	}
	l := debug.New(os.Stderr, c.Log.Prefix, flags)
	if lvl, err := debug.ParseLevel(c.Log.Level); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// Parse decodes YAML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a YAML file.
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if info.Size() > MaxFileSize {
		return Config{}, fmt.Errorf("config: %s is %d bytes, limit is %d", path, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
