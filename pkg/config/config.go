// Package config loads the YAML configuration of the box tree tools.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ScriptsConfig struct {
		Enable bool     `yaml:"enable"`
		Files  []string `yaml:"files" validate:"dive,required"`
	}

	DocumentConfig struct {
		Medium  string        `yaml:"medium" validate:"required,oneof=print screen all"`
		Scripts ScriptsConfig `yaml:"scripts"`
	}

	MarginsConfig struct {
		Top    int `yaml:"top" validate:"gte=0"`
		Right  int `yaml:"right" validate:"gte=0"`
		Bottom int `yaml:"bottom" validate:"gte=0"`
		Left   int `yaml:"left" validate:"gte=0"`
	}

	PageConfig struct {
		Width   int           `yaml:"width" validate:"gt=0"`
		Height  int           `yaml:"height" validate:"gt=0"`
		Margins MarginsConfig `yaml:"margins"`
		Count   int           `yaml:"count" validate:"min=1"`
	}

	Config struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Document DocumentConfig `yaml:"document"`
		Page     PageConfig     `yaml:"page"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// Unknown keys are errors, so yaml.Unmarshal cannot be used here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration file at path on top of the
// built-in defaults and validates the result. An empty path yields the
// defaults.
func LoadConfiguration(path string) (*Config, error) {
	data, err := Prepare()
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}

	if len(path) > 0 {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = unmarshalConfig(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}

	if err := gencfg.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Prepare expands the configuration template and returns it.
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

// MarginHeight returns the extent of the margin area along side: the
// margin depth for top and bottom, the page height less both vertical
// margins for left and right.
func (p *PageConfig) MarginHeight(side string) int {
	switch side {
	case "top":
		return p.Margins.Top
	case "bottom":
		return p.Margins.Bottom
	}
	return max(p.Height-p.Margins.Top-p.Margins.Bottom, 0)
}
