// Package config loads the bundle builder's own settings: which external tools
// to run, how the launcher stub is generated and what the deploy step embeds.
// Settings are layered, later files overriding earlier ones:
//  1. Built-in defaults
//  2. System config: /etc/<executable>.d/config.yaml
//  3. Command-line file, or <executable>.config.yaml in the working directory
//  4. Local config: <executable dir>/config/<executable>.yaml
//
// Each layer may use the .yaml or .yml extension and only needs to carry the
// keys it overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"bundlebuilder/utilities/logger"
)

// Config is the full set of builder settings.
type Config struct {
	Toolchain Toolchain `yaml:"toolchain"`
	Launcher  Launcher  `yaml:"launcher"`
	Deploy    Deploy    `yaml:"deploy"`
}

// Toolchain names the external programs. Bare names are looked up in PATH.
type Toolchain struct {
	Compiler          string   `yaml:"compiler"`
	CompilerFlags     []string `yaml:"compiler_flags"`
	InterfaceCompiler string   `yaml:"interface_compiler"`
	DataModelCompiler string   `yaml:"data_model_compiler"`
	DeployTool        string   `yaml:"deploy_tool"`
}

// Launcher controls the generated native stub and Info.plist system keys.
type Launcher struct {
	RuntimeHeader        string   `yaml:"runtime_header"`
	RuntimeEntry         string   `yaml:"runtime_entry"`
	Frameworks           []string `yaml:"frameworks"`
	Target               string   `yaml:"target"` // "modern" or "legacy"
	MinimumSystemVersion string   `yaml:"minimum_system_version"`
}

// Deploy controls the deploy step.
type Deploy struct {
	SupportLibrary string `yaml:"support_library"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Toolchain: Toolchain{
			Compiler:          "cc",
			CompilerFlags:     []string{"-fobjc-gc-only"},
			InterfaceCompiler: "ibtool",
			DataModelCompiler: "momc",
			DeployTool:        "macruby_deploy",
		},
		Launcher: Launcher{
			RuntimeHeader:        "MacRuby/MacRuby.h",
			RuntimeEntry:         "macruby_main",
			Frameworks:           []string{"MacRuby", "Foundation"},
			Target:               "modern",
			MinimumSystemVersion: "10.6.7",
		},
		Deploy: Deploy{
			SupportLibrary: "hotcocoa",
		},
	}
}

// ErrNotFound is returned by LoadFile when neither extension exists.
var ErrNotFound = errors.New("configuration file not found")

// LoadConfiguration builds the layered configuration. Missing layers are
// skipped; a layer that exists but cannot be parsed is an error.
//
// Parameters:
//   - configFileFromCommandLine: Optional path to a specific config file, with or
//     without extension. When set, it must exist.
//
// Returns the merged configuration.
func LoadConfiguration(configFileFromCommandLine string) (*Config, error) {
	nameOfExecutable := executableName()
	cfg := Default()

	type layer struct {
		path     string
		required bool
	}
	layers := []layer{
		{filepath.Join("/etc", nameOfExecutable+".d", "config"), false},
	}
	if configFileFromCommandLine != "" {
		layers = append(layers, layer{configFileFromCommandLine, true})
	} else {
		layers = append(layers, layer{nameOfExecutable + ".config", false})
	}
	if executable, err := os.Executable(); err == nil {
		localDir := filepath.Join(filepath.Dir(executable), "config")
		layers = append(layers, layer{filepath.Join(localDir, nameOfExecutable), false})
	}

	for _, layer := range layers {
		err := LoadFile(layer.path, cfg)
		switch {
		case err == nil:
			logger.Debug("Loaded configuration layer %s", layer.path)
		case errors.Is(err, ErrNotFound) && !layer.required:
			logger.Debug("Configuration layer %s not present", layer.path)
		default:
			return nil, err
		}
	}

	return cfg, nil
}

// LoadFile decodes one layer into cfg, overriding only the keys present.
// path may name the file exactly or omit the .yaml/.yml extension.
func LoadFile(path string, cfg *Config) error {
	for _, candidate := range []string{path, path + ".yaml", path + ".yml"} {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			return fmt.Errorf("read configuration %s: %w", candidate, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty layer decodes to io.EOF and changes nothing.
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse configuration %s: %w", candidate, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Validate checks the values the builder cannot run without.
func (c *Config) Validate() error {
	if c.Toolchain.Compiler == "" {
		return errors.New("toolchain.compiler cannot be empty")
	}
	if c.Toolchain.DeployTool == "" {
		return errors.New("toolchain.deploy_tool cannot be empty")
	}
	if c.Launcher.RuntimeEntry == "" {
		return errors.New("launcher.runtime_entry cannot be empty")
	}
	switch c.Launcher.Target {
	case "modern", "legacy":
	default:
		return fmt.Errorf("launcher.target must be 'modern' or 'legacy', got %q", c.Launcher.Target)
	}
	return nil
}

func executableName() string {
	return filepath.Base(os.Args[0])
}
