package gateway

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mariagorskikh/bakerymcpserver/pkg/logx"
	"github.com/mariagorskikh/bakerymcpserver/pkg/metrics"
)

// handleSSE opens one MCP server transport per stream. The generated
// session id keys the transport table and is echoed back to the client in
// the message endpoint, so follow-up POSTs route to this stream.
func (g *Gateway) handleSSE(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	endpoint := "/messages?sessionId=" + sessionID

	transport := &mcp.SSEServerTransport{Endpoint: endpoint, Response: w}

	// Register before connecting: the endpoint event is written to the
	// client during Connect, and a fast client may POST right away.
	g.addTransport(sessionID, transport)

	ss, err := g.server.Connect(r.Context(), transport, nil)
	if err != nil {
		g.removeTransport(sessionID)
		logx.Log.Error().Err(err).Str("session_id", sessionID).Msg("stream connect failed")
		http.Error(w, "failed to open stream", http.StatusInternalServerError)
		return
	}

	g.bindSession(ss, sessionID)
	metrics.StreamOpened()
	logx.Log.Info().Str("session_id", sessionID).Msg("stream connected")

	defer func() {
		g.unbindSession(ss)
		g.removeTransport(sessionID)
		metrics.StreamClosed()
		_ = ss.Close()
		logx.Log.Info().Str("session_id", sessionID).Msg("stream closed")
	}()

	done := make(chan struct{})
	go func() {
		_ = ss.Wait()
		close(done)
	}()

	select {
	case <-r.Context().Done():
	case <-done:
	}
}

// handleMessage routes a posted client message to the transport owning the
// named session.
func (g *Gateway) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "sessionId query parameter is required", http.StatusBadRequest)
		return
	}

	transport := g.lookupTransport(sessionID)
	if transport == nil {
		http.Error(w, fmt.Sprintf("no open stream for session %s", sessionID), http.StatusNotFound)
		return
	}

	transport.ServeHTTP(w, r)
}

func (g *Gateway) addTransport(sessionID string, t *mcp.SSEServerTransport) {
	g.transportMu.Lock()
	defer g.transportMu.Unlock()
	g.transports[sessionID] = t
}

func (g *Gateway) removeTransport(sessionID string) {
	g.transportMu.Lock()
	defer g.transportMu.Unlock()
	delete(g.transports, sessionID)
}

func (g *Gateway) lookupTransport(sessionID string) *mcp.SSEServerTransport {
	g.transportMu.Lock()
	defer g.transportMu.Unlock()
	return g.transports[sessionID]
}

// bindSession records which stream a server session belongs to, so
// capability handlers can key the downstream conversation per connection.
func (g *Gateway) bindSession(ss *mcp.ServerSession, sessionID string) {
	g.transportMu.Lock()
	defer g.transportMu.Unlock()
	g.sessionIDs[ss] = sessionID
}

func (g *Gateway) unbindSession(ss *mcp.ServerSession) {
	g.transportMu.Lock()
	defer g.transportMu.Unlock()
	delete(g.sessionIDs, ss)
}

func (g *Gateway) boundSessionID(ss *mcp.ServerSession) string {
	g.transportMu.Lock()
	defer g.transportMu.Unlock()
	return g.sessionIDs[ss]
}

// StreamCount reports how many SSE streams are currently open.
func (g *Gateway) StreamCount() int {
	g.transportMu.Lock()
	defer g.transportMu.Unlock()
	return len(g.transports)
}
