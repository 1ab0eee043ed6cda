// Package config loads the optional gasreport.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/weiihann/gasreport/gas"
)

// FileName is the config file looked up in the project directory.
const FileName = "gasreport.yaml"

const textCodeInvalid = "CONFIG_INVALID"

// Config is the decoded contents of a gasreport.yaml file.
type Config struct {
	// Forge overrides the forge binary path.
	Forge string `yaml:"forge"`
	// Timeout bounds each forge run. Zero waits forever.
	Timeout  time.Duration `yaml:"timeout"`
	Variants []gas.Variant `yaml:"variants"`
}

// DefaultPath returns the config path inside projectDir.
func DefaultPath(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

// Load reads the config at path. When required is false a missing file
// yields an empty Config.
func Load(path string, required bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}

		return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput,
			fmt.Sprintf("read config %s", path)).
			WithTextCode(textCodeInvalid)
	}

	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput,
			fmt.Sprintf("parse config %s", path)).
			WithTextCode(textCodeInvalid)
	}

	return cfg, nil
}

// Decode parses YAML config from r. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}

		return Config{}, err
	}

	if cfg.Timeout < 0 {
		return Config{}, fmt.Errorf("timeout must not be negative")
	}

	return cfg, nil
}

// Apply merges the configured variants into reg.
func (c Config) Apply(reg *gas.Registry) error {
	for _, v := range c.Variants {
		if err := reg.Merge(v); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryBadInput, "apply config").
				WithTextCode(textCodeInvalid)
		}
	}

	return nil
}
