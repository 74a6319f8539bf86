package mcp

import (
	"context"
	"encoding/json"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	mcpserver "github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/pitchroom/application"
	"github.com/felixgeelhaar/pitchroom/infrastructure/logging"
)

// Server exposes session tools over MCP.
type Server struct {
	srv   *mcpgo.Server
	tools []Tool
	info  mcpgo.ServerInfo
}

// ServerConfig configures a session MCP server.
type ServerConfig struct {
	// Name is the server name.
	Name string

	// Version is the server version.
	Version string

	// Manager holds the sessions the tools operate on.
	Manager *application.Manager

	// Instructions provides usage instructions for clients.
	Instructions string
}

// DefaultInstructions tells clients how to play a session.
const DefaultInstructions = "Call start_session, then process_turn with the founder's messages " +
	"until the session is no longer active. Use final_report or export_report for the result."

// NewServer creates an MCP server with the session tools registered.
func NewServer(cfg ServerConfig) *Server {
	info := mcpgo.ServerInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Description: "Timed multi-party pitch negotiation sessions",
		Capabilities: mcpgo.Capabilities{
			Tools: true,
		},
	}

	instructions := cfg.Instructions
	if instructions == "" {
		instructions = DefaultInstructions
	}
	srv := mcpgo.NewServer(info, mcpgo.WithInstructions(instructions))

	s := &Server{srv: srv, info: info}
	for _, t := range SessionTools(cfg.Manager) {
		s.register(t)
	}
	return s
}

func (s *Server) register(t Tool) {
	name := t.Name
	handler := func(ctx context.Context, input json.RawMessage) (string, error) {
		out, err := t.Handler(ctx, input)
		if err != nil {
			logging.Warn().
				Add(logging.Component("mcp")).
				Add(logging.Str("tool", name)).
				Add(logging.ErrorField(err)).
				Msg("tool call failed")
		}
		return out, err
	}

	s.srv.Tool(t.Name).
		Description(t.Description).
		Handler(handler)
	s.tools = append(s.tools, t)
}

// Tools returns the registered tools.
func (s *Server) Tools() []Tool {
	out := make([]Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Info returns the server metadata.
func (s *Server) Info() mcpgo.ServerInfo {
	return s.info
}

// Use adds middleware to the server.
func (s *Server) Use(middlewares ...mcpserver.Middleware) {
	s.srv.Use(middlewares...)
}

// ServeStdio runs the server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context, opts ...mcpgo.ServeOption) error {
	return mcpgo.ServeStdio(ctx, s.srv, opts...)
}

// ServeHTTP runs the server over HTTP with SSE.
func (s *Server) ServeHTTP(ctx context.Context, addr string, opts ...mcpgo.HTTPOption) error {
	return mcpgo.ServeHTTP(ctx, s.srv, addr, opts...)
}
