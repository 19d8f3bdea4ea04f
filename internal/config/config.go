// SPDX-License-Identifier: MPL-2.0

// Package config holds the immutable run configuration.
//
// A Config is constructed once at startup from defaults, an optional YAML
// config file, CONFORMAT_* environment variables, and CLI flags (in rising
// precedence), then frozen. Nothing mutates it during execution; it is passed
// by value into the matrix builder and the executor.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"conformat/internal/issue"
	"conformat/pkg/platform"
)

const (
	// AppName is the application name, used for config directory resolution.
	AppName = "conformat"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"

	// DefaultTimeout bounds a single test run.
	DefaultTimeout = 10 * time.Minute
	// MaxDefaultWorkers caps the worker count derived from NumCPU.
	MaxDefaultWorkers = 8
)

// Config is the process-wide run configuration, frozen before execution.
type Config struct {
	// Verbose enables diagnostic output and retains captured output on Pass.
	Verbose bool
	// Docker selects the container backend instead of the local one.
	Docker bool
	// Workers bounds the number of simultaneous in-flight runs.
	Workers int
	// Timeout bounds each individual test run.
	Timeout time.Duration
	// ContainerEngine is the preferred engine ("docker" or "podman"; empty = auto).
	ContainerEngine string
	// BinDir is the local directory holding adapter binaries, prepended to PATH.
	BinDir string
	// LibDir is the local shared-library directory, prepended to the dynamic
	// linker search path (created if absent).
	LibDir string
	// CatalogPath selects an alternative catalog file (empty = built-in).
	CatalogPath string

	// Filter sets from CLI tokens. Empty means "all known values"; resolved
	// once against the catalog before the matrix is built.
	Implementations []string
	Fixtures        []string
	Environments    []string
}

// ConfigDir returns the conformat configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultWorkers derives the worker-pool bound from the host CPU count,
// clamped to [1, MaxDefaultWorkers]. Adapter runs are process-heavy, so more
// workers than cores buys nothing.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if n > MaxDefaultWorkers {
		n = MaxDefaultWorkers
	}
	return n
}

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		Workers: DefaultWorkers(),
		Timeout: DefaultTimeout,
		BinDir:  filepath.Join(".", "bin"),
		LibDir:  filepath.Join(".", "lib"),
	}
}

// LoadOptions controls config file loading.
type LoadOptions struct {
	// Path is an explicit config file path (overrides the platform default).
	Path string
}

// Load builds a Config from defaults, the config file (if present), and
// CONFORMAT_* environment variables. A missing config file is not an error;
// a malformed one is.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("timeout", defaults.Timeout.String())
	v.SetDefault("container_engine", defaults.ContainerEngine)
	v.SetDefault("bin_dir", defaults.BinDir)
	v.SetDefault("lib_dir", defaults.LibDir)
	v.SetDefault("catalog", defaults.CatalogPath)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()

	if opts.Path != "" {
		v.SetConfigFile(opts.Path)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return Config{}, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		explicitMissing := opts.Path != "" && os.IsNotExist(err)
		if !errors.As(err, &notFound) && !explicitMissing {
			return Config{}, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(v.ConfigFileUsed()).
				WithSuggestion("Check the YAML syntax, or remove the file to use defaults").
				Wrap(err).
				Build()
		}
		if opts.Path != "" && explicitMissing {
			return Config{}, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.Path).
				WithSuggestion("Check that the --config path exists").
				Wrap(err).
				Build()
		}
	}

	cfg := defaults
	cfg.Workers = v.GetInt("workers")
	cfg.ContainerEngine = v.GetString("container_engine")
	cfg.BinDir = v.GetString("bin_dir")
	cfg.LibDir = v.GetString("lib_dir")
	cfg.CatalogPath = v.GetString("catalog")

	timeout, err := time.ParseDuration(v.GetString("timeout"))
	if err != nil {
		return Config{}, issue.NewErrorContext().
			WithOperation("parse timeout setting").
			WithResource(v.GetString("timeout")).
			WithSuggestion(`Use a Go duration string such as "10m" or "1h30m"`).
			Wrap(err).
			Build()
	}
	cfg.Timeout = timeout

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the structural invariants of a Config: the worker bound and
// timeout must be positive and finite.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", c.Timeout)
	}
	if c.ContainerEngine != "" && c.ContainerEngine != "docker" && c.ContainerEngine != "podman" {
		return fmt.Errorf("container_engine must be docker, podman, or empty, got %q", c.ContainerEngine)
	}
	return nil
}
