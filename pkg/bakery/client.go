package bakery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mariagorskikh/bakerymcpserver/pkg/metrics"
)

// DefaultBaseURL is the deployed bakery agent this gateway fronts.
const DefaultBaseURL = "https://bakery-agent.vercel.app"

// InitConfirmation is the exact message the agent returns when a session
// was created. Any other text means initialization failed, whatever the
// HTTP status said.
const InitConfirmation = "Bakery agent session initialized"

// InitResult is the payload of a confirmed /api/init call.
type InitResult struct {
	Message string   `json:"message"`
	Tools   []string `json:"tools"`
}

// ChatResult is the payload of a successful /api/chat call.
type ChatResult struct {
	// Response is the agent's conversational reply.
	Response string
	// ToolUsed names the agent-side tool that produced the reply, or is
	// empty when the agent answered directly.
	ToolUsed string
}

// Client calls the bakery agent API. Construct with New; fields may be
// overridden before first use (tests point HTTPClient at a local server).
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     zerolog.Logger
}

// New returns a client for the default deployed agent.
func New(logger zerolog.Logger) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
		logger:     logger,
	}
}

// Initialize creates a downstream session under the given id. It succeeds
// only when the agent's confirmation message matches InitConfirmation
// exactly.
func (c *Client) Initialize(ctx context.Context, sessionID string) (*InitResult, error) {
	status, body, err := c.post(ctx, "/api/init", map[string]string{"sessionId": sessionID})
	if err != nil {
		metrics.RecordDownstreamRequest("init", false)
		return nil, &InitializationError{SessionID: sessionID, err: err}
	}

	if status < 200 || status > 299 {
		metrics.RecordDownstreamRequest("init", false)
		return nil, &InitializationError{SessionID: sessionID, err: fmt.Errorf("unexpected status %d", status)}
	}
	var out InitResult
	if jsonErr := json.Unmarshal(body, &out); jsonErr != nil {
		metrics.RecordDownstreamRequest("init", false)
		return nil, &InitializationError{SessionID: sessionID, err: fmt.Errorf("decode init response: %w", jsonErr)}
	}
	if out.Message != InitConfirmation {
		metrics.RecordDownstreamRequest("init", false)
		return nil, &InitializationError{SessionID: sessionID, Message: out.Message}
	}

	metrics.RecordDownstreamRequest("init", true)
	c.logger.Debug().
		Str("session_id", sessionID).
		Strs("tools", out.Tools).
		Msg("bakery session initialized")
	return &out, nil
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response json.RawMessage `json:"response"`
	ToolUsed string          `json:"toolUsed"`
	Error    string          `json:"error"`
}

// SendMessage exchanges one message within an initialized session. The
// agent's own error field wins over the HTTP status: an error text is
// surfaced as ErrApp even on a 200.
func (c *Client) SendMessage(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	status, body, err := c.post(ctx, "/api/chat", chatRequest{SessionID: sessionID, Message: message})
	if err != nil {
		metrics.RecordDownstreamRequest("chat", false)
		return nil, &DownstreamError{Kind: ErrTransport, Message: "request failed", err: err}
	}

	result, derr := decodeChat(status, body)
	if derr != nil {
		metrics.RecordDownstreamRequest("chat", false)
		return nil, derr
	}

	metrics.RecordDownstreamRequest("chat", true)
	c.logger.Debug().
		Str("session_id", sessionID).
		Str("tool_used", result.ToolUsed).
		Msg("bakery chat exchange completed")
	return result, nil
}

func decodeChat(status int, body []byte) (*ChatResult, *DownstreamError) {
	var raw chatResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		if status < 200 || status > 299 {
			return nil, &DownstreamError{Kind: ErrStatus, Status: status, Message: http.StatusText(status)}
		}
		return nil, &DownstreamError{Kind: ErrPayload, Status: status, Message: "malformed JSON body", err: err}
	}

	if raw.Error != "" {
		return nil, &DownstreamError{Kind: ErrApp, Status: status, Message: raw.Error}
	}
	if status < 200 || status > 299 {
		return nil, &DownstreamError{Kind: ErrStatus, Status: status, Message: http.StatusText(status)}
	}

	var text string
	if len(raw.Response) == 0 {
		return nil, &DownstreamError{Kind: ErrPayload, Status: status, Message: "missing response field"}
	}
	if err := json.Unmarshal(raw.Response, &text); err != nil {
		return nil, &DownstreamError{Kind: ErrPayload, Status: status, Message: "response field is not a string", err: err}
	}
	return &ChatResult{Response: text, ToolUsed: raw.ToolUsed}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s response: %w", path, err)
	}
	return resp.StatusCode, body, nil
}
