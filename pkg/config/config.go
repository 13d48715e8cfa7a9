// Package config loads, validates and persists mnemosyne configuration.
//
// Values are layered flag > environment > config.toml > defaults through
// viper (see InitViper and FromViper). The Configer reads and writes the
// config.toml file directly for the "mnemosyne config" commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/BillDuke13/mnemosyne/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .mnemosyne/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// orderedKeys lists every config key in TOML section order.
var orderedKeys = []string{
	"chain.rpc",
	"chain.package_id",
	"chain.memory_book_id",
	"chain.table_id",
	"chain.page_size",
	"walrus.aggregator",
	"http.timeout",
	"resolver.concurrency",
	"api.listen",
	"client.api_target",
	"speech.enabled",
	"speech.backend",
	"speech.command",
	"speech.openai_model",
	"speech.openai_voice",
	"speech.player",
	"eventstream.kafka_brokers",
	"eventstream.kafka_topic",
	"hints",
}

// ValidConfigKeys returns the list of all supported configuration key names in
// a stable order matching the TOML section layout.
func ValidConfigKeys() []string {
	result := make([]string, 0, len(configKeys))
	seen := make(map[string]bool, len(configKeys))
	for _, k := range orderedKeys {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
			seen[k] = true
		}
	}
	for k := range configKeys {
		if !seen[k] {
			result = append(result, k)
		}
	}
	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target
// .mnemosyne/ directory. If the file does not exist, returns
// NewDefaultConfig() so callers always receive a fully-populated Config.
// Fields explicitly set in the file override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	d := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = d.Version
	}

	if cfg.Chain.RPC == "" {
		cfg.Chain.RPC = d.Chain.RPC
	}
	if cfg.Chain.PackageID == "" {
		cfg.Chain.PackageID = d.Chain.PackageID
	}
	if cfg.Chain.MemoryBookID == "" {
		cfg.Chain.MemoryBookID = d.Chain.MemoryBookID
	}
	if cfg.Chain.TableID == "" {
		cfg.Chain.TableID = d.Chain.TableID
	}
	if cfg.Chain.PageSize == 0 {
		cfg.Chain.PageSize = d.Chain.PageSize
	}

	if cfg.Walrus.Aggregator == "" {
		cfg.Walrus.Aggregator = d.Walrus.Aggregator
	}

	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = d.HTTP.Timeout
	}

	if cfg.Resolver.Concurrency == 0 {
		cfg.Resolver.Concurrency = d.Resolver.Concurrency
	}

	if cfg.API.Listen == "" {
		cfg.API.Listen = d.API.Listen
	}
	if cfg.Client.APITarget == "" {
		cfg.Client.APITarget = d.Client.APITarget
	}

	if cfg.Speech.Backend == "" {
		cfg.Speech.Backend = d.Speech.Backend
	}
	if cfg.Speech.Command == "" {
		cfg.Speech.Command = d.Speech.Command
	}
	if cfg.Speech.OpenAIModel == "" {
		cfg.Speech.OpenAIModel = d.Speech.OpenAIModel
	}
	if cfg.Speech.OpenAIVoice == "" {
		cfg.Speech.OpenAIVoice = d.Speech.OpenAIVoice
	}
	if cfg.Speech.Player == "" {
		cfg.Speech.Player = d.Speech.Player
	}

	if cfg.EventStream.KafkaTopic == "" {
		cfg.EventStream.KafkaTopic = d.EventStream.KafkaTopic
	}

	// An explicit empty hints array in the file disables the mapping.
	if cfg.Hints == nil {
		cfg.Hints = d.Hints
	}
}

// SaveConfig persists the configuration to config.toml in the target .mnemosyne/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
