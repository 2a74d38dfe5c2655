package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/samvada/internal/chat"
)

//go:embed default_config.yaml
var defaultConfig []byte

const (
	// HomeEnv overrides the configuration directory.
	HomeEnv = "SAMVADA_HOME"
	// FileName is the configuration file inside the configuration directory.
	FileName = "config.yaml"
	dirName  = ".samvada"
)

// Config holds the defaults applied to chats.
type Config struct {
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
	Model        string `yaml:"model" json:"model"`
	APIEndpoint  string `yaml:"api_endpoint" json:"api_endpoint"`
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	return Parse(defaultConfig)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Fields returns the configuration as chat frontmatter defaults.
func (c *Config) Fields() chat.Fields {
	return chat.Fields{
		chat.KeySystem:      c.SystemPrompt,
		chat.KeyModel:       c.Model,
		chat.KeyAPIEndpoint: c.APIEndpoint,
	}
}

// Dir returns the configuration directory, creating it if needed.
// It is $SAMVADA_HOME when set, otherwise ~/.samvada.
func Dir() (string, error) {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not find home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

// EnsureFile writes the default configuration into dir unless a config file
// already exists. It returns the file path and whether it was created.
func EnsureFile(dir string) (string, bool, error) {
	path := filepath.Join(dir, FileName)
	_, err := os.Stat(path)
	if err == nil {
		return path, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if err := os.WriteFile(path, defaultConfig, 0o644); err != nil {
		return "", false, fmt.Errorf("write default config: %w", err)
	}
	return path, true, nil
}

// LoadFromDir ensures the config file exists in dir and loads it.
func LoadFromDir(dir string) (*Config, error) {
	path, _, err := EnsureFile(dir)
	if err != nil {
		return nil, err
	}
	return Load(path)
}
