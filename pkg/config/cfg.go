package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"pixelcss/pkg/engine"
	"pixelcss/pkg/pixelate"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	RenderConfig struct {
		PixelUnit        int           `yaml:"pixel_unit" validate:"min=1,max=256"`
		Smooth           bool          `yaml:"smooth"`
		Quality          string        `yaml:"quality" validate:"oneof=low medium high"`
		RootFontSize     float64       `yaml:"root_font_size" validate:"gt=0"`
		LoadTimeout      time.Duration `yaml:"load_timeout" validate:"gt=0"`
		LoadConcurrency  int           `yaml:"load_concurrency" validate:"min=1,max=64"`
		MaxSurfacePixels int64         `yaml:"max_surface_pixels" validate:"min=1"`
		Base             string        `yaml:"base"`
	}

	CacheConfig struct {
		Results int `yaml:"results" validate:"gte=0"`
		Images  int `yaml:"images" validate:"gte=0"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Render  RenderConfig  `yaml:"render"`
		Cache   CacheConfig   `yaml:"cache"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields we defined are accepted so yaml.Unmarshal cannot be used
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of the expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// Options returns the render options the configuration describes for a
// target of width×height pixels.
func (c *RenderConfig) Options(width, height int) (engine.Options, error) {
	q, err := pixelate.ParseQuality(c.Quality)
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		Width:        width,
		Height:       height,
		PixelUnit:    c.PixelUnit,
		Smooth:       c.Smooth,
		Quality:      q,
		RootFontSize: c.RootFontSize,
	}, nil
}

// EngineOptions returns the engine settings of the configuration.
func (c *RenderConfig) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithLoadTimeout(c.LoadTimeout),
		engine.WithLoadConcurrency(c.LoadConcurrency),
		engine.WithMaxPixels(c.MaxSurfacePixels),
	}
}
