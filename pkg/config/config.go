package config

import (
	"os"
	"path/filepath"

	"github.com/binary-install/wafstrap/pkg/spec"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Discover when no config file exists.
var ErrNotFound = errors.New("no wafstrap config found")

// FileNames are the config file names looked up below .config.
var FileNames = []string{"wafstrap.yml", "wafstrap.yaml"}

// Load reads and parses a wafstrap config file from the given path
func Load(path string) (*spec.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	var cfg spec.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file: %s", path)
	}

	cfg.SetDefaults()

	return &cfg, nil
}

// Discover searches for .config/wafstrap.yml in the current directory
// and parent directories.
func Discover() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current directory")
	}

	for {
		for _, name := range FileNames {
			configPath := filepath.Join(dir, ".config", name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrNotFound
}

// LoadOrDiscover loads a config from the given path, or discovers one if path is empty
func LoadOrDiscover(configPath string) (*spec.Config, string, error) {
	var path string
	var err error

	if configPath != "" {
		path = configPath
	} else {
		path, err = Discover()
		if err != nil {
			return nil, "", err
		}
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}

	return cfg, path, nil
}

// BaseDir returns the project directory a config file belongs to: the parent
// of its .config directory, or the file's own directory otherwise.
func BaseDir(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) == ".config" {
		return filepath.Dir(dir)
	}
	return dir
}

// ResolvePath makes p absolute relative to base. Absolute paths are returned
// unchanged.
func ResolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
