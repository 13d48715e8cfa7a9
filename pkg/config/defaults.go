package config

import (
	"time"

	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

const (
	defaultChainRPC     = "https://fullnode.devnet.sui.io"
	defaultPackageID    = "0x19df5b99556a1f786f9ed4bfe27ad649d7983c289747ed733e77dc84dfea4e47"
	defaultMemoryBookID = "0x8d11465046cb5e6f428051270d0cc636e06559066c16630ccd26a0609bf86f3b"
	defaultTableID      = "0xd94e3cf9b373f99d5f8eedec94489d022d0838c248e35d1e0ad74618fc5e589b"
	defaultPageSize     = 50

	defaultWalrusAggregator = "https://aggregator.walrus-testnet.walrus.space"

	defaultHTTPTimeout         = 30 * time.Second
	defaultResolverConcurrency = 8

	defaultAPIListen       = ":8000"
	defaultClientAPITarget = "http://localhost:8000"

	defaultSpeechBackend = SpeechBackendSay
	defaultSpeechCommand = "say"
	defaultOpenAIModel   = "tts-1"
	defaultOpenAIVoice   = "alloy"
	defaultSpeechPlayer  = "ffplay -nodisp -autoexit -loglevel quiet -"

	defaultKafkaTopic = "mnemosyne.identified"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Chain: ChainConfig{
			RPC:          defaultChainRPC,
			PackageID:    defaultPackageID,
			MemoryBookID: defaultMemoryBookID,
			TableID:      defaultTableID,
			PageSize:     defaultPageSize,
		},
		Walrus: WalrusConfig{
			Aggregator: defaultWalrusAggregator,
		},
		HTTP: HTTPConfig{
			Timeout: defaultHTTPTimeout,
		},
		Resolver: ResolverConfig{
			Concurrency: defaultResolverConcurrency,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Speech: SpeechConfig{
			Backend:     defaultSpeechBackend,
			Command:     defaultSpeechCommand,
			OpenAIModel: defaultOpenAIModel,
			OpenAIVoice: defaultOpenAIVoice,
			Player:      defaultSpeechPlayer,
		},
		EventStream: EventStreamConfig{
			KafkaTopic: defaultKafkaTopic,
		},
		Hints: DefaultEntryHints(),
	}
}

// DefaultEntryHints returns the hint mapping of the demo memory book.
func DefaultEntryHints() []memory.EntryHint {
	return []memory.EntryHint{
		{Label: "Family1-Dad", EntryID: 0},
		{Label: "Family1-Mom", EntryID: 1},
		{Label: "Family1-Son", EntryID: 2},
	}
}
