package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/buildctx"
	"github.com/binary-install/wafstrap/pkg/checks"
	"github.com/binary-install/wafstrap/pkg/config"
	"github.com/binary-install/wafstrap/pkg/spec"
	"github.com/goccy/go-yaml"
)

// loadedConfig is a validated config together with the directory relative
// paths in it are resolved against.
type loadedConfig struct {
	*spec.Config
	Path    string
	BaseDir string
}

// loadConfig reads the config named by cfgFile, discovers one when cfgFile
// is empty, or falls back to defaults when none exists.
func loadConfig(cfgFile string) (*loadedConfig, error) {
	var (
		cfg  *spec.Config
		path string
		err  error
	)

	switch cfgFile {
	case "-":
		log.Debug("Reading config from stdin")
		cfg, err = readConfig(os.Stdin)
		if err != nil {
			return nil, err
		}
		path = "-"
	default:
		cfg, path, err = config.LoadOrDiscover(cfgFile)
		if errors.Is(err, config.ErrNotFound) {
			log.Debugf("No config found, using defaults")
			cfg = &spec.Config{}
			cfg.SetDefaults()
			err = nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := cfg.Validate(checks.Names(), checks.LuaTags()); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	base, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	if path != "" && path != "-" {
		base = config.BaseDir(path)
		log.Debugf("Using config file: %s", path)
	}
	return &loadedConfig{Config: cfg, Path: path, BaseDir: base}, nil
}

// readConfig parses a config from r.
func readConfig(r io.Reader) (*spec.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg spec.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

// newBuildContext turns the configuration into a build context. luaVer, when
// set, overrides the config's lua_ver.
func (c *loadedConfig) newBuildContext(luaVer string) *buildctx.Context {
	destOS := spec.StringValue(c.DestOS)
	if destOS == "" {
		destOS = buildctx.HostOS()
	}

	bc := buildctx.New(destOS, config.ResolvePath(c.BaseDir, spec.StringValue(c.SrcDir)))
	bc.Options.LuaVer = spec.StringValue(c.LuaVer)
	if luaVer != "" {
		bc.Options.LuaVer = luaVer
	}
	bc.Options.StaticBuild = spec.BoolValue(c.StaticBuild)
	bc.Options.OSSConf = spec.StringValue(c.OSSConf)
	return bc
}
