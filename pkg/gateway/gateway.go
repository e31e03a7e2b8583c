package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mariagorskikh/bakerymcpserver/pkg/bakery"
	"github.com/mariagorskikh/bakerymcpserver/pkg/logx"
	"github.com/mariagorskikh/bakerymcpserver/pkg/session"
)

// Gateway fronts the bakery agent with an MCP server reachable over stdio
// or HTTP+SSE.
type Gateway struct {
	agent    *bakery.Client
	sessions *session.Registry
	opts     Options

	server      *mcp.Server
	httpHandler http.Handler

	transportMu sync.Mutex
	transports  map[string]*mcp.SSEServerTransport
	sessionIDs  map[*mcp.ServerSession]string

	httpServerMu sync.Mutex
	httpServer   *http.Server
}

// New builds a Gateway around the given bakery client and registers the
// capability set.
func New(agent *bakery.Client, opts *Options) (*Gateway, error) {
	if agent == nil {
		return nil, fmt.Errorf("gateway: bakery client is required")
	}
	options := opts.withDefaults()
	g := &Gateway{
		agent:      agent,
		opts:       options,
		transports: make(map[string]*mcp.SSEServerTransport),
		sessionIDs: make(map[*mcp.ServerSession]string),
	}
	g.sessions = session.NewRegistry(func(ctx context.Context, id string) error {
		_, err := agent.Initialize(ctx, id)
		return err
	}, logx.Log.With().Str("component", "session").Logger())

	g.server = mcp.NewServer(options.Implementation, nil)
	g.registerCapabilities()
	g.httpHandler = g.routes()

	return g, nil
}

// NewFallbackSessionKey returns a process-unique session key for transports
// that carry no session id of their own.
func NewFallbackSessionKey() string {
	return fmt.Sprintf("stdio-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}

// RunStdio serves the MCP server over stdin/stdout until ctx is cancelled
// or the peer disconnects.
func (g *Gateway) RunStdio(ctx context.Context) error {
	logx.Log.Info().Str("session_key", g.opts.FallbackSessionKey).Msg("serving on stdio")
	return g.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler exposes the HTTP surface for embedding and tests.
func (g *Gateway) Handler() http.Handler {
	return g.httpHandler
}

// ListenAndServe runs the HTTP surface until the provided context is
// cancelled or the server stops. Cancellation closes the listener without
// draining open streams; clients are expected to reconnect.
func (g *Gateway) ListenAndServe(ctx context.Context) error {
	g.httpServerMu.Lock()
	if g.httpServer != nil {
		serv := g.httpServer
		g.httpServerMu.Unlock()
		return fmt.Errorf("gateway: server already running on %s", serv.Addr)
	}
	srv := &http.Server{Addr: g.opts.Addr, Handler: g.Handler()}
	g.httpServer = srv
	g.httpServerMu.Unlock()
	defer func() {
		g.httpServerMu.Lock()
		if g.httpServer == srv {
			g.httpServer = nil
		}
		g.httpServerMu.Unlock()
	}()

	logx.Log.Info().Str("addr", g.opts.Addr).Msg("serving HTTP")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = srv.Close()
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops the embedded HTTP server if it is running.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.httpServerMu.Lock()
	srv := g.httpServer
	g.httpServer = nil
	g.httpServerMu.Unlock()
	if srv == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return srv.Shutdown(ctx)
}
