package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// APIKeyEnv is the variable holding the provider API key.
const APIKeyEnv = "OPENAI_API_KEY"

// EnvFileName is the env file looked up in the working directory and in the
// configuration directory.
const EnvFileName = ".env"

// MissingKeyHelp explains how to provide an API key.
const MissingKeyHelp = `OpenAI API key not found! Please set it using one of these methods:
1. Run the command with your API key using --api-key=your-api-key-here
2. Set it in your .env file
3. Set it as an environment variable:
   - Windows (Command Prompt): set OPENAI_API_KEY=your-api-key-here
   - Windows (PowerShell): $env:OPENAI_API_KEY='your-api-key-here'
   - Mac/Linux: export OPENAI_API_KEY=your-api-key-here`

// ErrAPIKeyNotFound is returned when no source provides a key.
var ErrAPIKeyNotFound = errors.New("api key not found")

// KeySource names where an API key came from.
type KeySource string

const (
	SourceFlag        KeySource = "flag"
	SourceLocalEnv    KeySource = "local .env"
	SourceHomeEnv     KeySource = "home .env"
	SourceEnvironment KeySource = "environment"
)

// KeySources are the candidate locations of an API key, already read.
type KeySources struct {
	Flag        string
	LocalEnv    map[string]string
	HomeEnv     map[string]string
	Environment map[string]string
}

// ResolveAPIKey picks the key with fixed precedence: flag, local .env,
// home .env, process environment. Blank values are skipped.
func ResolveAPIKey(s KeySources) (string, KeySource, error) {
	if key := strings.TrimSpace(s.Flag); key != "" {
		return key, SourceFlag, nil
	}
	candidates := []struct {
		source KeySource
		values map[string]string
	}{
		{SourceLocalEnv, s.LocalEnv},
		{SourceHomeEnv, s.HomeEnv},
		{SourceEnvironment, s.Environment},
	}
	for _, c := range candidates {
		if key := strings.TrimSpace(c.values[APIKeyEnv]); key != "" {
			return key, c.source, nil
		}
	}
	return "", "", ErrAPIKeyNotFound
}

// GatherKeySources reads every key source from disk and the environment.
// cwd is the directory searched for a local .env and configDir the one
// holding the saved key.
func GatherKeySources(flag, cwd, configDir string) (KeySources, error) {
	local, err := ReadEnvFile(filepath.Join(cwd, EnvFileName))
	if err != nil {
		return KeySources{}, err
	}
	home, err := ReadEnvFile(filepath.Join(configDir, EnvFileName))
	if err != nil {
		return KeySources{}, err
	}
	sources := KeySources{Flag: flag, LocalEnv: local, HomeEnv: home}
	if v, ok := os.LookupEnv(APIKeyEnv); ok {
		sources.Environment = map[string]string{APIKeyEnv: v}
	}
	return sources, nil
}

// SaveAPIKey writes key to the env file in configDir, replacing its contents.
func SaveAPIKey(configDir, key string) (string, error) {
	path := filepath.Join(configDir, EnvFileName)
	content := fmt.Sprintf("%s=%s\n", APIKeyEnv, strings.TrimSpace(key))
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("save api key: %w", err)
	}
	return path, nil
}
