// Package mcp exposes negotiation sessions as Model Context Protocol tools.
// It wraps github.com/felixgeelhaar/mcp-go.
package mcp

import (
	mcpgo "github.com/felixgeelhaar/mcp-go"
)

// Re-export core types from mcp-go for convenience.
type (
	// ServeOption configures server behavior.
	ServeOption = mcpgo.ServeOption

	// HTTPOption configures HTTP transport.
	HTTPOption = mcpgo.HTTPOption

	// Middleware is a function that wraps request handling.
	Middleware = mcpgo.Middleware
)

// Middleware constructors re-exported from mcp-go.
var (
	Recover   = mcpgo.Recover
	RequestID = mcpgo.RequestID
)
