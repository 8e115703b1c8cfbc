/*
Package mcp implements an MCP server exposing the city hub as tools.

The server uses stdio transport (one JSON-RPC message per line) and exposes:
  - city_recommend: personalised item recommendations for a user
  - city_showcase: merchandising sections for the home page
  - city_search: full-text catalog search
  - city_track: record a user event
  - city_suggest: the assistant's current suggestion from the local profile
*/
package mcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-json"
	"github.com/khanglvm/city-hub/internal/assistant"
	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/recommend"
	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/khanglvm/city-hub/internal/version"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolError      = -32000
)

// Recommender composes personalised item lists.
type Recommender interface {
	Recommend(ctx context.Context, userID string) []storage.Item
}

// Showcaser composes merchandising sections.
type Showcaser interface {
	Compose(ctx context.Context) []recommend.Section
}

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, userID, text string, limit int) ([]storage.Item, error)
}

// EventTracker accepts user events without blocking.
type EventTracker interface {
	Track(event learning.Event)
}

// Suggester evaluates the assistant rules.
type Suggester interface {
	Evaluate(ctx context.Context) (assistant.Message, bool)
}

// Deps are the collaborators behind the tools. A nil collaborator makes its
// tool report an error.
type Deps struct {
	Recommender Recommender
	Showcase    Showcaser
	Search      Searcher
	Tracker     EventTracker
	Assistant   Suggester
}

// Server represents the city-hub MCP server.
type Server struct {
	deps Deps
	mu   sync.Mutex
}

// NewServer creates a new MCP server.
func NewServer(deps Deps) *Server {
	return &Server{deps: deps}
}

// Run serves stdin/stdout until stdin is closed or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads requests from r and writes responses to w, one per line.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		response, err := s.handleRequest(ctx, line)
		if err != nil {
			s.send(w, &MCPResponse{
				JSONRPC: "2.0",
				Error:   &MCPError{Code: codeParseError, Message: err.Error()},
			})
			continue
		}
		if response != nil {
			s.send(w, response)
		}
	}

	return scanner.Err()
}

// MCPRequest represents an incoming MCP JSON-RPC request.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing MCP JSON-RPC response.
type MCPResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *MCPError `json:"error,omitempty"`
}

// MCPError represents an MCP error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handleRequest processes an incoming MCP request. Notifications get no
// response.
func (s *Server) handleRequest(ctx context.Context, data []byte) (*MCPResponse, error) {
	var req MCPRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(&req), nil
	case "ping":
		return &MCPResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{}}, nil
	case "tools/list":
		return s.handleToolsList(&req), nil
	case "tools/call":
		return s.handleToolsCall(ctx, &req), nil
	}

	if req.ID == nil {
		return nil, nil
	}
	return errorResponse(req.ID, codeMethodNotFound, "Method not found"), nil
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    "city-hub",
				"version": version.Version,
			},
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}
	if len(params.Arguments) == 0 || string(params.Arguments) == "null" {
		params.Arguments = json.RawMessage("{}")
	}

	tool, ok := toolsByName[params.Name]
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	result, err := tool.exec(ctx, s, params.Arguments)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("tool", params.Name).Msg("tool call failed")
		return errorResponse(req.ID, codeToolError, err.Error())
	}

	text, err := json.Marshal(result)
	if err != nil {
		return errorResponse(req.ID, codeToolError, err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

func errorResponse(id any, code int, message string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &MCPError{Code: code, Message: message},
	}
}

// send writes one compact JSON line. Writes are serialised.
func (s *Server) send(w io.Writer, resp *MCPResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("failed to encode MCP response")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write MCP response")
	}
}
