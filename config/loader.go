package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/llmaid/errors"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file into the process environment. Variables that
// are already set are not overwritten.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver handles finding config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds the config and env files for name.
// Returns explicit paths if provided, otherwise searches for them.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configSearchPaths(name))
	}
	if resolved.EnvFile == "" && !opts.SkipEnvFile {
		resolved.EnvFile = r.first(envSearchPaths(name))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configSearchPaths(name string) []string {
	var paths []string
	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		paths = append(paths,
			fmt.Sprintf("./%s.%s", name, ext),
			fmt.Sprintf("./config/%s.%s", name, ext),
			fmt.Sprintf("../config/%s.%s", name, ext),
		)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, fmt.Sprintf("%s/.config/%s/%s.yml", home, name, name))
	}
	return paths
}

func envSearchPaths(name string) []string {
	return []string{
		fmt.Sprintf("./.env.%s", name),
		"./.env",
		"../.env",
	}
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem  FileSystem
	ConfigFile  string // Direct config file path (optional)
	EnvFile     string // Direct env file path (optional)
	SkipEnvFile bool   // Do not search for a .env file
}

// LoaderOption is a functional option for LoadOverrides.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithoutEnvFile disables the .env search.
func WithoutEnvFile() LoaderOption {
	return func(lc *LoaderConfig) { lc.SkipEnvFile = true }
}

// LoadOverrides loads instance-level overrides for name (usually "llmaid").
//
// A config file (name.yml and friends) is read with Viper; its keys are the
// snake_case field names (base_url, secret, model, temperature, ...). A .env
// file, when found, is loaded into the process environment so the
// environment layer of Resolve sees it. Neither file is required.
func LoadOverrides(name string, opts ...LoaderOption) (Overrides, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(name, lc)

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return Overrides{}, errors.Config("env_file", err.Error()).WithCause(err).WithDetail("path", files.EnvFile)
		}
	}

	var o Overrides
	if files.ConfigFile == "" || !lc.FileSystem.Exists(files.ConfigFile) {
		return o, nil
	}

	v := viper.New()
	v.SetConfigFile(files.ConfigFile)
	if err := v.ReadInConfig(); err != nil {
		return Overrides{}, errors.Config("config_file", err.Error()).WithCause(err).WithDetail("path", files.ConfigFile)
	}
	if err := v.Unmarshal(&o); err != nil {
		return Overrides{}, errors.Config("config_file", fmt.Sprintf("decode %s: %v", files.ConfigFile, err)).WithCause(err)
	}
	return o, nil
}
