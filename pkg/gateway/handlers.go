package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mariagorskikh/bakerymcpserver/pkg/bakery"
	"github.com/mariagorskikh/bakerymcpserver/pkg/logx"
	"github.com/mariagorskikh/bakerymcpserver/pkg/metrics"
)

const (
	promptChat       = "chat"
	toolAskBakery    = "ask_bakery"
	toolFetchWebsite = "fetch_website"
)

type askBakeryArgs struct {
	// Prompt is the free-form request forwarded to the bakery agent.
	Prompt string `json:"prompt"`
}

type fetchWebsiteArgs struct {
	// URL of the website the agent should fetch and describe.
	URL string `json:"url"`
}

func (g *Gateway) registerCapabilities() {
	mcp.AddTool(g.server, &mcp.Tool{
		Name:        toolAskBakery,
		Description: "Send a free-form request to the bakery agent and return its reply.",
	}, g.handleAskBakery)

	mcp.AddTool(g.server, &mcp.Tool{
		Name:        toolFetchWebsite,
		Description: "Ask the bakery agent to fetch a website and describe its content.",
	}, g.handleFetchWebsite)

	g.server.AddPrompt(&mcp.Prompt{
		Name:        promptChat,
		Description: "Have a conversational exchange with the bakery agent.",
		Arguments: []*mcp.PromptArgument{
			{Name: "message", Description: "Message to send to the bakery agent", Required: true},
		},
	}, g.handleChatPrompt)
}

// sessionKey picks the key the downstream conversation is tracked under.
// SSE sessions use the stream id bound at connect time, so each HTTP
// client gets its own downstream conversation; stdio has no per-connection
// id and uses the per-process fallback key.
func (g *Gateway) sessionKey(ss *mcp.ServerSession) (string, error) {
	if ss != nil {
		if id := g.boundSessionID(ss); id != "" {
			return id, nil
		}
		if id := ss.ID(); id != "" {
			return id, nil
		}
	}
	if g.opts.FallbackSessionKey != "" {
		return g.opts.FallbackSessionKey, nil
	}
	return "", fmt.Errorf("gateway: unable to determine session key for request")
}

// exchange ensures the downstream session exists and forwards one message.
func (g *Gateway) exchange(ctx context.Context, key, message string) (*bakery.ChatResult, error) {
	id, err := g.sessions.GetOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}
	return g.agent.SendMessage(ctx, id, message)
}

// userFacingError turns a downstream failure into text safe to show the
// end user. An agent-reported error is quoted; everything else gets an
// apology that names no internals.
func userFacingError(err error) string {
	var dsErr *bakery.DownstreamError
	if errors.As(err, &dsErr) && dsErr.Kind == bakery.ErrApp {
		return "The bakery agent reported an error: " + dsErr.Message
	}
	var initErr *bakery.InitializationError
	if errors.As(err, &initErr) {
		return "Sorry, I could not start a conversation with the bakery agent. Please try again."
	}
	return "Sorry, the bakery agent could not be reached. Please try again."
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: userFacingError(err)}},
		IsError: true,
	}
}

func (g *Gateway) handleAskBakery(ctx context.Context, req *mcp.CallToolRequest, args askBakeryArgs) (*mcp.CallToolResult, any, error) {
	key, err := g.sessionKey(req.Session)
	if err != nil {
		return nil, nil, err
	}

	reply, err := g.exchange(ctx, key, args.Prompt)
	if err != nil {
		metrics.RecordToolCall(toolAskBakery, false)
		logx.Log.Warn().Err(err).Str("session_key", key).Msg("ask_bakery failed")
		return errorResult(err), nil, nil
	}

	metrics.RecordToolCall(toolAskBakery, true)
	res := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: reply.Response}},
	}
	if reply.ToolUsed != "" {
		res.Meta = map[string]any{"toolUsed": reply.ToolUsed}
	}
	return res, nil, nil
}

func (g *Gateway) handleFetchWebsite(ctx context.Context, req *mcp.CallToolRequest, args fetchWebsiteArgs) (*mcp.CallToolResult, any, error) {
	key, err := g.sessionKey(req.Session)
	if err != nil {
		return nil, nil, err
	}

	u, parseErr := url.Parse(args.URL)
	if parseErr != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		metrics.RecordToolCall(toolFetchWebsite, false)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%q is not a valid http(s) URL.", args.URL)}},
			IsError: true,
		}, nil, nil
	}

	// The agent performs the fetch itself; the gateway only phrases the
	// request conversationally.
	instruction := fmt.Sprintf("Please fetch the website at %s and describe its content.", u.String())

	reply, err := g.exchange(ctx, key, instruction)
	if err != nil {
		metrics.RecordToolCall(toolFetchWebsite, false)
		logx.Log.Warn().Err(err).Str("session_key", key).Msg("fetch_website failed")
		return errorResult(err), nil, nil
	}

	metrics.RecordToolCall(toolFetchWebsite, true)
	res := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: reply.Response}},
	}
	if reply.ToolUsed != "" {
		res.Meta = map[string]any{"toolUsed": reply.ToolUsed}
	}
	return res, nil, nil
}

func (g *Gateway) handleChatPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	key, err := g.sessionKey(req.Session)
	if err != nil {
		return nil, err
	}

	var message string
	if req.Params != nil {
		message = req.Params.Arguments["message"]
	}
	if message == "" {
		return nil, fmt.Errorf("gateway: prompt %q requires a non-empty message argument", promptChat)
	}

	reply, err := g.exchange(ctx, key, message)
	if err != nil {
		logx.Log.Warn().Err(err).Str("session_key", key).Msg("chat prompt failed")
		return &mcp.GetPromptResult{
			Description: "Bakery agent conversation",
			Messages: []*mcp.PromptMessage{
				{Role: "assistant", Content: &mcp.TextContent{Text: userFacingError(err)}},
			},
		}, nil
	}

	text := reply.Response
	if reply.ToolUsed != "" {
		text += fmt.Sprintf("\n\n(answered using the %s tool)", reply.ToolUsed)
	}
	return &mcp.GetPromptResult{
		Description: "Bakery agent conversation",
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: message}},
			{Role: "assistant", Content: &mcp.TextContent{Text: text}},
		},
	}, nil
}
