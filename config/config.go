/*
File   : spl/config/config.go

Package config loads optional REPL defaults from a .splrc.yaml file, so
a user does not have to repeat --arch or prompt preferences on every
invocation. It is intentionally small: there is no schema versioning or
environment-variable override layer, because the REPL has exactly four
things worth defaulting.
*/
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the REPL defaults a .splrc.yaml may override.
type Config struct {
	Prompt       string `yaml:"prompt"`
	Arch         string `yaml:"arch"`
	OutputStage  string `yaml:"output_stage"`
	Color        bool   `yaml:"color"`
}

// Default returns the built-in defaults, used when no .splrc.yaml is
// found in either the current directory or the user's home directory.
func Default() Config {
	return Config{
		Prompt:      "> ",
		Arch:        "x86_64",
		OutputStage: "run",
		Color:       true,
	}
}

const fileName = ".splrc.yaml"

// Load looks for .splrc.yaml first in the current working directory,
// then in the user's home directory, and merges whichever it finds over
// Default(). Absence of the file in either place is not an error.
func Load() (Config, error) {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, fileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, fileName))
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	return cfg, nil
}
