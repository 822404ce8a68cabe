// Package config loads the optional YAML configuration file. Flag values
// set on the command line always win over file values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the project config searched in the working directory.
const DefaultPath = ".biblatex.yml"

// Config is the tool configuration. Pointer fields distinguish "absent
// from the file" from an explicit false.
type Config struct {
	// Bibtex recognizes the legacy @string and @preamble constructs.
	Bibtex *bool `yaml:"bibtex"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Color is auto, always or never.
	Color string `yaml:"color"`

	// DedupFields are the fields dedup indexes when --fields is not given.
	DedupFields []string `yaml:"dedup_fields"`

	// SortSpec is the default field list for sorting results.
	SortSpec string `yaml:"sort_spec"`
}

// Load reads the config at path when set, otherwise DefaultPath in the
// working directory. A missing default file is not an error; a missing
// explicit file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}
