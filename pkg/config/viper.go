package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/BillDuke13/mnemosyne/pkg/dotdir"
	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

// envEntryHints is the viper key bound to the JSON form of the hint mapping.
const envEntryHints = "entry_hints"

// legacyEnv binds config keys to the environment variable names used by
// existing deployments. The MNEMOSYNE_ prefixed name is listed first and wins.
var legacyEnv = map[string][]string{
	"chain.rpc":             {"MNEMOSYNE_CHAIN_RPC", "SUI_RPC"},
	"chain.package_id":      {"MNEMOSYNE_CHAIN_PACKAGE_ID", "MNEMOSYNE_PACKAGE_ID"},
	"chain.memory_book_id":  {"MNEMOSYNE_CHAIN_MEMORY_BOOK_ID", "MNEMOSYNE_BOOK_ID"},
	"chain.table_id":        {"MNEMOSYNE_CHAIN_TABLE_ID", "MNEMOSYNE_TABLE_ID"},
	"walrus.aggregator":     {"MNEMOSYNE_WALRUS_AGGREGATOR", "WALRUS_AGGREGATOR"},
	"speech.enabled":        {"MNEMOSYNE_SPEECH_ENABLED", "ENABLE_TTS"},
	"speech.openai_api_key": {"MNEMOSYNE_SPEECH_OPENAI_API_KEY", "OPENAI_API_KEY"},
	envEntryHints:           {"MNEMOSYNE_ENTRY_HINTS"},
}

// LoadDotEnv loads environment variables from the given .env files (".env"
// in the working directory when none are given). Variables already set in
// the process environment are not overridden; missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}

	return nil
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the MNEMOSYNE_ prefix plus the legacy names in legacyEnv.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (MNEMOSYNE_API_LISTEN, SUI_RPC, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("MNEMOSYNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Chain
	v.SetDefault("chain.rpc", d.Chain.RPC)
	v.SetDefault("chain.package_id", d.Chain.PackageID)
	v.SetDefault("chain.memory_book_id", d.Chain.MemoryBookID)
	v.SetDefault("chain.table_id", d.Chain.TableID)
	v.SetDefault("chain.page_size", d.Chain.PageSize)

	// Walrus
	v.SetDefault("walrus.aggregator", d.Walrus.Aggregator)

	// Outbound HTTP and resolution
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("resolver.concurrency", d.Resolver.Concurrency)

	// API and client
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("client.api_target", d.Client.APITarget)

	// Speech
	v.SetDefault("speech.enabled", d.Speech.Enabled)
	v.SetDefault("speech.backend", d.Speech.Backend)
	v.SetDefault("speech.command", d.Speech.Command)
	v.SetDefault("speech.openai_model", d.Speech.OpenAIModel)
	v.SetDefault("speech.openai_voice", d.Speech.OpenAIVoice)
	v.SetDefault("speech.player", d.Speech.Player)

	// Event stream
	v.SetDefault("eventstream.kafka_brokers", d.EventStream.KafkaBrokers)
	v.SetDefault("eventstream.kafka_topic", d.EventStream.KafkaTopic)

	// Hints, in the shape a [[hints]] array of tables decodes to.
	hints := make([]map[string]any, 0, len(d.Hints))
	for _, h := range d.Hints {
		hints = append(hints, map[string]any{"label": h.Label, "entry_id": h.EntryID})
	}
	v.SetDefault("hints", hints)
}

// FromViper builds the effective Config from a viper instance prepared by
// InitViper (and optionally BindRegisteredFlags).
func FromViper(v *viper.Viper) (*Config, error) {
	enabled, err := ParseBool(v.GetString("speech.enabled"))
	if err != nil {
		return nil, fmt.Errorf("invalid value for speech.enabled: %w", err)
	}

	var hints []memory.EntryHint
	if raw := strings.TrimSpace(v.GetString(envEntryHints)); raw != "" {
		hints, err = ParseEntryHints(raw)
		if err != nil {
			return nil, err
		}
	} else if err := v.UnmarshalKey("hints", &hints); err != nil {
		return nil, fmt.Errorf("decoding hints: %w", err)
	}

	cfg := &Config{
		Version: v.GetInt("version"),
		Chain: ChainConfig{
			RPC:          v.GetString("chain.rpc"),
			PackageID:    v.GetString("chain.package_id"),
			MemoryBookID: v.GetString("chain.memory_book_id"),
			TableID:      v.GetString("chain.table_id"),
			PageSize:     v.GetUint("chain.page_size"),
		},
		Walrus: WalrusConfig{
			Aggregator: v.GetString("walrus.aggregator"),
		},
		HTTP: HTTPConfig{
			Timeout: v.GetDuration("http.timeout"),
		},
		Resolver: ResolverConfig{
			Concurrency: v.GetUint("resolver.concurrency"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
		},
		Speech: SpeechConfig{
			Enabled:      enabled,
			Backend:      v.GetString("speech.backend"),
			Command:      v.GetString("speech.command"),
			OpenAIModel:  v.GetString("speech.openai_model"),
			OpenAIVoice:  v.GetString("speech.openai_voice"),
			OpenAIAPIKey: v.GetString("speech.openai_api_key"),
			Player:       v.GetString("speech.player"),
		},
		EventStream: EventStreamConfig{
			KafkaBrokers: stringList(v, "eventstream.kafka_brokers"),
			KafkaTopic:   v.GetString("eventstream.kafka_topic"),
		},
		Hints: hints,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// stringList reads a list that may be given as a TOML array or as a comma
// separated environment variable.
func stringList(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return SplitList(s)
	}
	return v.GetStringSlice(key)
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	if c.Version != 0 && c.Version != CurrentV {
		return fmt.Errorf("unsupported config version %d (expected %d)", c.Version, CurrentV)
	}
	if c.Chain.RPC == "" {
		return errors.New("chain.rpc is required")
	}
	if c.Chain.TableID == "" {
		return errors.New("chain.table_id is required")
	}
	if c.Walrus.Aggregator == "" {
		return errors.New("walrus.aggregator is required")
	}
	switch c.Speech.Backend {
	case SpeechBackendSay, SpeechBackendOpenAI:
	default:
		return fmt.Errorf("invalid speech.backend %q (available: say, openai)", c.Speech.Backend)
	}
	return nil
}
