// Package config loads build settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/tagassoc/pkg/tagassoc/internalerr"
)

// Config holds everything a build run needs. Zero-valued fields in a file
// keep their Default values.
type Config struct {
	Workers    int      `yaml:"workers" validate:"min=1,max=4096"`
	Formula    string   `yaml:"formula" validate:"oneof=standard row-marginal ratio"`
	TopK       int      `yaml:"top_k" validate:"min=0"`
	CacheSize  int      `yaml:"cache_size" validate:"min=0"`
	Lowercase  bool     `yaml:"lowercase"`
	IgnoreTags []string `yaml:"ignore_tags" validate:"dive,required"`
	IgnoreFile string   `yaml:"ignore_file"`
	Input      Input    `yaml:"input"`
	Store      Store    `yaml:"store"`
}

// Input describes the post file.
type Input struct {
	Path      string `yaml:"path"`
	Format    string `yaml:"format" validate:"oneof=csv jsonl"`
	TagColumn string `yaml:"tag_column" validate:"required"`
}

// Store points at the bundle database.
type Store struct {
	Path string `yaml:"path"`
	// Keep is how many bundles of each kind survive a build; 0 keeps all.
	Keep int `yaml:"keep" validate:"min=0"`
}

var validate = validator.New()

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers:   12,
		Formula:   "standard",
		TopK:      10,
		CacheSize: 256,
		Input: Input{
			Format:    "csv",
			TagColumn: "tag_string",
		},
		Store: Store{Path: "tagassoc.db"},
	}
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Normalize folds the enumerated fields to the lower-case names Validate
// and the parsers accept.
func (c *Config) Normalize() {
	c.Formula = strings.ToLower(strings.TrimSpace(c.Formula))
	c.Input.Format = strings.ToLower(strings.TrimSpace(c.Input.Format))
}

// Validate checks field ranges and enumerations. Enumerations are compared
// without regard to case.
func (c Config) Validate() error {
	c.Normalize()
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s fails %q (got %v): %w", fe.Namespace(), fe.Tag(), fe.Value(), internalerr.ErrInvalidConfig)
	}
	return fmt.Errorf("%v: %w", err, internalerr.ErrInvalidConfig)
}

// IgnoreList is the YAML layout of an ignore file.
type IgnoreList struct {
	Terms []string `yaml:"terms"`
}

// LoadIgnoreList reads tags to drop during ingest.
func LoadIgnoreList(path string) (*IgnoreList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var il IgnoreList
	if err := yaml.Unmarshal(data, &il); err != nil {
		return nil, err
	}

	return &il, nil
}
