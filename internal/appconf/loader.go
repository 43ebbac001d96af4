package appconf

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrOverlappingOverrides is returned when a line is listed in both stop-point override sets.
var ErrOverlappingOverrides = errors.New("glasbruksgatanLines and slussbrogatanLines must be disjoint")

// LoadFile overlays the YAML document at path onto base and validates the result.
// Keys missing from the document keep the value from base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data, base)
}

// Parse overlays a YAML document onto base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding config: %w", err)
		}
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags and the rules that span several fields.
func Validate(cfg Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	glasbruks := make(map[string]bool, len(cfg.Board.GlasbruksgatanLines))
	for _, line := range cfg.Board.GlasbruksgatanLines {
		glasbruks[line] = true
	}
	for _, line := range cfg.Board.SlussbrogatanLines {
		if glasbruks[line] {
			return fmt.Errorf("%w: line %s", ErrOverlappingOverrides, line)
		}
	}
	return nil
}
