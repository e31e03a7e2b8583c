package gateway

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Options configure a Gateway instance.
type Options struct {
	// Implementation identifies the gateway's MCP server implementation metadata.
	Implementation *mcp.Implementation
	// Addr controls the listen address used by ListenAndServe. Defaults to ":3000".
	Addr string
	// PublicURL is the externally visible base URL advertised on the
	// homepage. Display only.
	PublicURL string
	// FallbackSessionKey is used when the transport assigns no session id
	// of its own, which is the stdio case. Generated when empty.
	FallbackSessionKey string
}

func (o *Options) withDefaults() Options {
	if o == nil {
		o = &Options{}
	}
	opts := *o
	if opts.Implementation == nil {
		opts.Implementation = &mcp.Implementation{
			Name:    "bakery-mcp",
			Title:   "Bakery Agent Gateway",
			Version: "1.0.0",
		}
	} else {
		impl := *opts.Implementation
		opts.Implementation = &impl
	}
	if opts.Addr == "" {
		opts.Addr = ":3000"
	}
	if opts.FallbackSessionKey == "" {
		opts.FallbackSessionKey = NewFallbackSessionKey()
	}
	return opts
}
