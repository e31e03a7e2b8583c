package gateway

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mariagorskikh/bakerymcpserver/pkg/bakery"
)

// newOfflineGateway builds a gateway whose downstream is unreachable. The
// HTTP surface must still answer.
func newOfflineGateway(t *testing.T) *Gateway {
	t.Helper()
	agent := bakery.New(zerolog.Nop())
	agent.BaseURL = "http://127.0.0.1:0"

	g, err := New(agent, &Options{FallbackSessionKey: "test-session"})
	require.NoError(t, err)
	return g
}

func TestHealthEndpoint(t *testing.T) {
	g := newOfflineGateway(t)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestMessagesRequiresSessionID(t *testing.T) {
	g := newOfflineGateway(t)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/messages", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessagesUnknownSession(t *testing.T) {
	g := newOfflineGateway(t)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/messages?sessionId=ghost-42", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "ghost-42")
}

func TestHomepage(t *testing.T) {
	agent := bakery.New(zerolog.Nop())
	agent.BaseURL = "http://127.0.0.1:0"
	g, err := New(agent, &Options{
		FallbackSessionKey: "test-session",
		PublicURL:          "https://bakery-mcp.example.com",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Bakery Agent Gateway")
	require.Contains(t, rec.Body.String(), "https://bakery-mcp.example.com")
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestMetricsEndpoint(t *testing.T) {
	g := newOfflineGateway(t)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListenAndServeShutdown(t *testing.T) {
	agent := bakery.New(zerolog.Nop())
	agent.BaseURL = "http://127.0.0.1:0"
	g, err := New(agent, &Options{Addr: "127.0.0.1:0", FallbackSessionKey: "test-session"})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- g.ListenAndServe(context.Background()) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, g.Shutdown(context.Background()))

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after Shutdown")
	}
}

func TestMessageEndpointRoutableOnceAnnounced(t *testing.T) {
	fake := newFakeBakery()
	g := newTestGateway(t, fake)

	server := httptest.NewServer(g.Handler())
	t.Cleanup(server.Close)

	resp, err := server.Client().Get(server.URL + "/sse")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	reader := bufio.NewReader(resp.Body)
	var endpoint string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data:") {
			endpoint = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			break
		}
	}
	require.Contains(t, endpoint, "/messages?sessionId=")

	// the endpoint the stream just announced must already be registered
	body := strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	post, err := server.Client().Post(server.URL+endpoint, "application/json", body)
	require.NoError(t, err)
	defer post.Body.Close()
	require.NotEqual(t, http.StatusNotFound, post.StatusCode)
}

func TestSSEClientsGetDistinctDownstreamSessions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping SSE round-trip test in short mode")
	}

	fake := newFakeBakery()
	g := newTestGateway(t, fake)

	server := httptest.NewServer(g.Handler())
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		transport := &mcp.SSEClientTransport{
			Endpoint:   server.URL + "/sse",
			HTTPClient: server.Client(),
		}
		client := mcp.NewClient(&mcp.Implementation{Name: "sse-test-client", Version: "1.0.0"}, nil)
		session, err := client.Connect(ctx, transport, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = session.Close() })

		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "ask_bakery",
			Arguments: map[string]any{"prompt": "hello"},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)
	}

	// each stream owns its own downstream conversation
	require.Equal(t, 2, fake.InitCalls())
}

func TestGatewaySSERoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping SSE round-trip test in short mode")
	}

	fake := newFakeBakery()
	g := newTestGateway(t, fake)

	server := httptest.NewServer(g.Handler())
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	transport := &mcp.SSEClientTransport{
		Endpoint:   server.URL + "/sse",
		HTTPClient: server.Client(),
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "sse-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	require.Equal(t, 1, g.StreamCount())

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	require.Contains(t, names, "ask_bakery")
	require.Contains(t, names, "fetch_website")

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "ask_bakery",
		Arguments: map[string]any{"prompt": "any croissants?"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "any croissants?", textOf(t, res.Content))
}
