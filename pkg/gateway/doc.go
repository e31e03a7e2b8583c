// Package gateway exposes the bakery agent to MCP clients.
//
// A Gateway owns one mcp.Server carrying three capabilities (the chat
// prompt, the ask_bakery tool, and the fetch_website tool) and serves it
// over two transports: stdio via RunStdio, and HTTP+SSE via ListenAndServe.
// In HTTP mode each GET /sse connection gets its own server transport,
// registered under a generated session id; POST /messages?sessionId=
// dispatches client messages into the matching transport.
//
// Every capability resolves its session through the shared registry, so an
// MCP client talks to the same downstream bakery conversation for as long
// as its connection lives.
package gateway
