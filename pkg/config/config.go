// Package config loads dit's optional YAML manifest, the alternate input
// surface for read paths, write paths, and exclude globs described by the
// --config flag.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ratherlargerobot/dit/pkg/dit"
)

// Manifest is the on-disk shape of a --config YAML file.
type Manifest struct {
	Read    []string `yaml:"read"`
	Write   []string `yaml:"write"`
	Exclude []string `yaml:"exclude"`
}

// Load reads and parses a manifest file at path.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, errors.Wrapf(err, "unable to read config file '%s'", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, errors.Wrapf(err, "unable to parse config file '%s'", path)
	}

	return m, nil
}

// ReadWritePaths normalizes the manifest's read/write paths the same way
// CLI positional arguments are normalized, so a manifest-sourced path and a
// CLI-sourced path are indistinguishable downstream.
func (m Manifest) ReadWritePaths() (dit.ReadWritePaths, error) {
	var rw dit.ReadWritePaths

	for _, p := range m.Read {
		normalized, err := dit.NormalizePath(p)
		if err != nil {
			return dit.ReadWritePaths{}, err
		}
		rw.ReadPaths = append(rw.ReadPaths, normalized)
	}

	for _, p := range m.Write {
		normalized, err := dit.NormalizePath(p)
		if err != nil {
			return dit.ReadWritePaths{}, err
		}
		rw.WritePaths = append(rw.WritePaths, normalized)
	}

	return rw, nil
}
