package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

// Config represents the mnemosyne configuration stored as config.toml in the
// .mnemosyne/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Chain       ChainConfig       `toml:"chain"`
	Walrus      WalrusConfig      `toml:"walrus"`
	HTTP        HTTPConfig        `toml:"http"`
	Resolver    ResolverConfig    `toml:"resolver"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	Speech      SpeechConfig      `toml:"speech"`
	EventStream EventStreamConfig `toml:"eventstream"`

	// Hints is the ordered fallback mapping from label to entry id.
	Hints []memory.EntryHint `toml:"hints,omitempty"`
}

// ChainConfig addresses the on-chain memory table.
type ChainConfig struct {
	RPC          string `toml:"rpc,omitempty"`
	PackageID    string `toml:"package_id,omitempty"`
	MemoryBookID string `toml:"memory_book_id,omitempty"`
	TableID      string `toml:"table_id,omitempty"`
	PageSize     uint   `toml:"page_size,omitempty"`
}

// WalrusConfig addresses the blob store.
type WalrusConfig struct {
	Aggregator string `toml:"aggregator,omitempty"`
}

// HTTPConfig holds settings shared by every outbound HTTP client.
type HTTPConfig struct {
	Timeout time.Duration `toml:"timeout,omitempty"`
}

// ResolverConfig holds entry resolution settings.
type ResolverConfig struct {
	Concurrency uint `toml:"concurrency,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// API server (e.g. mnemosyne identify, mnemosyne health). Values are full
// URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// SpeechConfig holds announcement settings.
type SpeechConfig struct {
	Enabled bool `toml:"enabled,omitempty"`

	// Backend is "say" or "openai".
	Backend     string `toml:"backend,omitempty"`
	Command     string `toml:"command,omitempty"`
	OpenAIModel string `toml:"openai_model,omitempty"`
	OpenAIVoice string `toml:"openai_voice,omitempty"`
	Player      string `toml:"player,omitempty"`

	// OpenAIAPIKey is read from the environment only.
	OpenAIAPIKey string `toml:"-"`
}

// EventStreamConfig holds identification event publishing settings. Events
// are published only when at least one broker is configured.
type EventStreamConfig struct {
	KafkaBrokers []string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string   `toml:"kafka_topic,omitempty"`
}

// Speech backends.
const (
	SpeechBackendSay    = "say"
	SpeechBackendOpenAI = "openai"
)

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"chain.rpc":            stringKey(func(c *Config) *string { return &c.Chain.RPC }),
	"chain.package_id":     stringKey(func(c *Config) *string { return &c.Chain.PackageID }),
	"chain.memory_book_id": stringKey(func(c *Config) *string { return &c.Chain.MemoryBookID }),
	"chain.table_id":       stringKey(func(c *Config) *string { return &c.Chain.TableID }),
	"chain.page_size":      uintKey("chain.page_size", func(c *Config) *uint { return &c.Chain.PageSize }),
	"walrus.aggregator":    stringKey(func(c *Config) *string { return &c.Walrus.Aggregator }),
	"http.timeout": {
		get: func(c *Config) string {
			if c.HTTP.Timeout == 0 {
				return ""
			}
			return c.HTTP.Timeout.String()
		},
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for http.timeout: %w", err)
			}
			c.HTTP.Timeout = d
			return nil
		},
	},
	"resolver.concurrency": uintKey("resolver.concurrency", func(c *Config) *uint { return &c.Resolver.Concurrency }),
	"api.listen":           stringKey(func(c *Config) *string { return &c.API.Listen }),
	"client.api_target":    stringKey(func(c *Config) *string { return &c.Client.APITarget }),
	"speech.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Speech.Enabled) },
		set: func(c *Config, v string) error {
			b, err := ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for speech.enabled: %w", err)
			}
			c.Speech.Enabled = b
			return nil
		},
	},
	"speech.backend": {
		get: func(c *Config) string { return c.Speech.Backend },
		set: func(c *Config, v string) error {
			switch v {
			case SpeechBackendSay, SpeechBackendOpenAI:
				c.Speech.Backend = v
				return nil
			default:
				return fmt.Errorf("invalid value for speech.backend: %q (available: say, openai)", v)
			}
		},
	},
	"speech.command":      stringKey(func(c *Config) *string { return &c.Speech.Command }),
	"speech.openai_model": stringKey(func(c *Config) *string { return &c.Speech.OpenAIModel }),
	"speech.openai_voice": stringKey(func(c *Config) *string { return &c.Speech.OpenAIVoice }),
	"speech.player":       stringKey(func(c *Config) *string { return &c.Speech.Player }),
	"eventstream.kafka_brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.KafkaBrokers, ",") },
		set: func(c *Config, v string) error { c.EventStream.KafkaBrokers = SplitList(v); return nil },
	},
	"eventstream.kafka_topic": stringKey(func(c *Config) *string { return &c.EventStream.KafkaTopic }),
	"hints": {
		get: func(c *Config) string { return FormatEntryHints(c.Hints) },
		set: func(c *Config, v string) error {
			hints, err := ParseEntryHints(v)
			if err != nil {
				return err
			}
			c.Hints = hints
			return nil
		},
	},
}

// ParseBool accepts the usual strconv forms plus "yes"/"no" and "on"/"off".
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off", "":
		return false, nil
	}
	return strconv.ParseBool(v)
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
