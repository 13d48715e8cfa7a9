// Package api provides the HTTP front door for mnemosyne: the identify
// endpoint, health, metrics, the MCP endpoint and the embedded web page.
package api

import "time"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// Chain is reported verbatim by the health endpoint.
	Chain ChainInfo

	// RequestTimeout bounds the upstream work of one identify or health
	// request. Zero leaves requests unbounded.
	RequestTimeout time.Duration
}

// ChainInfo identifies the upstreams the server resolves against.
type ChainInfo struct {
	PackageID        string `json:"package_id"`
	MemoryBookID     string `json:"memory_book_id"`
	TableID          string `json:"table_id"`
	WalrusAggregator string `json:"walrus_aggregator"`
	SuiRPC           string `json:"sui_rpc"`
}
