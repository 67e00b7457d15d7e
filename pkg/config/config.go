// Package config loads askflow configuration from ~/.askflow/config.yaml
// and the environment. Environment variables take precedence over file
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zen-systems/askflow/pkg/provider"
)

const (
	defaultTopK           = 3
	defaultTimeoutSeconds = 60
)

// maxNumberedKeys bounds the KIND_API_KEY_N env scan.
const maxNumberedKeys = 9

// Config holds the resolved application configuration.
type Config struct {
	Keys          map[provider.Kind][]string
	TopK          int
	Timeout       time.Duration
	KnowledgePath string
	TopicHint     string
	ConfigDir     string
}

// FileConfig represents the structure of ~/.askflow/config.yaml.
type FileConfig struct {
	APIKeys  APIKeysConfig  `yaml:"api_keys"`
	Settings SettingsConfig `yaml:"settings"`
}

// APIKeysConfig holds per-kind key lists from file. List order is
// credential priority order.
type APIKeysConfig struct {
	Groq      []string `yaml:"groq"`
	Gemini    []string `yaml:"gemini"`
	Anthropic []string `yaml:"anthropic"`
}

// SettingsConfig holds tunables from file.
type SettingsConfig struct {
	TopK           int    `yaml:"top_k"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	KnowledgePath  string `yaml:"knowledge_base"`
	TopicHint      string `yaml:"topic_hint"`
}

// Load reads configuration from the config file and environment.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		Keys:          make(map[provider.Kind][]string),
		TopK:          defaultTopK,
		Timeout:       defaultTimeoutSeconds * time.Second,
		KnowledgePath: filepath.Join(configDir, "knowledge.db"),
		ConfigDir:     configDir,
	}

	fileKeys := map[provider.Kind][]string{
		provider.KindGroq:      fileConfig.APIKeys.Groq,
		provider.KindGemini:    fileConfig.APIKeys.Gemini,
		provider.KindAnthropic: fileConfig.APIKeys.Anthropic,
	}
	envNames := map[provider.Kind]string{
		provider.KindGroq:      "GROQ_API_KEY",
		provider.KindGemini:    "GEMINI_API_KEY",
		provider.KindAnthropic: "ANTHROPIC_API_KEY",
	}
	for kind, envName := range envNames {
		keys := envKeys(envName)
		if len(keys) == 0 {
			keys = nonEmpty(fileKeys[kind])
		}
		if len(keys) > 0 {
			cfg.Keys[kind] = keys
		}
	}

	if fileConfig.Settings.TopK > 0 {
		cfg.TopK = fileConfig.Settings.TopK
	}
	if fileConfig.Settings.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(fileConfig.Settings.TimeoutSeconds) * time.Second
	}
	if fileConfig.Settings.KnowledgePath != "" {
		cfg.KnowledgePath = fileConfig.Settings.KnowledgePath
	}
	cfg.TopicHint = fileConfig.Settings.TopicHint

	return cfg, nil
}

// HasKeys reports whether any kind has at least one raw key configured.
func (c *Config) HasKeys() bool {
	for _, keys := range c.Keys {
		if len(keys) > 0 {
			return true
		}
	}
	return false
}

// envKeys collects numbered environment keys: NAME, NAME_2, NAME_3, ...
// Gaps are skipped, order is preserved.
func envKeys(name string) []string {
	var keys []string
	for i := 1; i <= maxNumberedKeys; i++ {
		envName := name
		if i > 1 {
			envName = fmt.Sprintf("%s_%d", name, i)
		}
		if val := os.Getenv(envName); val != "" {
			keys = append(keys, val)
		}
	}
	return keys
}

func nonEmpty(keys []string) []string {
	var out []string
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, cfg)
	return cfg
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".askflow")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", err
	}
	return configDir, nil
}
