// Package bakery is the HTTP client adapter for the bakery agent API.
//
// The agent exposes two JSON endpoints: /api/init creates a conversation
// session and /api/chat exchanges one message within it. The adapter makes
// a single attempt per call, honors context cancellation, and reports
// failures through typed errors so callers can distinguish an unreachable
// agent from an agent that answered with an error of its own.
package bakery
