package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/goccy/go-json"
	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/validation"
)

const maxSearchLimit = 50

type tool struct {
	name        string
	description string
	schema      map[string]any
	exec        func(ctx context.Context, s *Server, args json.RawMessage) (any, error)
}

var tools = []tool{
	{
		name: "city_recommend",
		description: `Recommend up to 10 catalog items for a user.

WHEN TO USE: To show "picked for you" listings. Omit user_id for anonymous
visitors; they get the newest active listings.`,
		schema: objectSchema(map[string]any{
			"user_id": stringProp("User identifier; empty for anonymous"),
		}),
		exec: execRecommend,
	},
	{
		name: "city_showcase",
		description: `Build up to 5 merchandising sections, each a category (optionally narrowed to
one sub-type such as a vehicle type) with its newest listings. Sections are never empty.`,
		schema: objectSchema(map[string]any{}),
		exec:   execShowcase,
	},
	{
		name: "city_search",
		description: `Search catalog titles and descriptions. With user_id the query is
remembered and shapes that user's future recommendations.`,
		schema: objectSchema(map[string]any{
			"query":   stringProp("Free-text query"),
			"user_id": stringProp("User identifier (optional)"),
			"limit":   map[string]any{"type": "integer", "description": "Maximum results (default 10, max 50)"},
		}, "query"),
		exec: execSearch,
	},
	{
		name: "city_track",
		description: `Record a user event. Types: view, contact, favorite, search, share.
Contact and favorite weigh most when ranking a user's categories.`,
		schema: objectSchema(map[string]any{
			"user_id":   stringProp("User identifier"),
			"type":      stringProp("Event type"),
			"category":  stringProp("Category tag of the entity, e.g. market_vehicles"),
			"entity_id": stringProp("Item or place id"),
			"query":     stringProp("Search text, for search events"),
		}, "user_id", "type"),
		exec: execTrack,
	},
	{
		name:        "city_suggest",
		description: `Return the assistant's suggestion for the local profile: resume an article, explore a strong interest, or a greeting.`,
		schema:      objectSchema(map[string]any{}),
		exec:        execSuggest,
	},
}

var toolsByName = func() map[string]tool {
	m := make(map[string]tool, len(tools))
	for _, t := range tools {
		m[t.name] = t
	}
	return m
}()

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	list := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		list = append(list, map[string]any{
			"name":        t.name,
			"description": t.description,
			"inputSchema": t.schema,
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]any{"tools": list},
	}
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

var errUnavailable = errors.New("not configured")

func execRecommend(ctx context.Context, s *Server, raw json.RawMessage) (any, error) {
	if s.deps.Recommender == nil {
		return nil, errUnavailable
	}
	var args struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	items := s.deps.Recommender.Recommend(ctx, strings.TrimSpace(args.UserID))
	return map[string]any{"items": items, "count": len(items)}, nil
}

func execShowcase(ctx context.Context, s *Server, _ json.RawMessage) (any, error) {
	if s.deps.Showcase == nil {
		return nil, errUnavailable
	}
	return map[string]any{"sections": s.deps.Showcase.Compose(ctx)}, nil
}

func execSearch(ctx context.Context, s *Server, raw json.RawMessage) (any, error) {
	if s.deps.Search == nil {
		return nil, errUnavailable
	}
	var args struct {
		Query  string `json:"query"`
		UserID string `json:"user_id"`
		Limit  int    `json:"limit"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Query) == "" {
		return nil, errors.New("query is required")
	}
	if args.Limit <= 0 {
		args.Limit = 10
	}
	args.Limit = min(args.Limit, maxSearchLimit)

	items, err := s.deps.Search.Search(ctx, strings.TrimSpace(args.UserID), args.Query, args.Limit)
	if err != nil {
		return nil, err
	}
	return map[string]any{"items": items, "count": len(items)}, nil
}

type trackArgs struct {
	UserID   string `json:"user_id" validate:"required,max=128"`
	Type     string `json:"type" validate:"required,max=32"`
	Category string `json:"category" validate:"max=128"`
	EntityID string `json:"entity_id" validate:"max=128"`
	Query    string `json:"query" validate:"max=256"`
}

func execTrack(_ context.Context, s *Server, raw json.RawMessage) (any, error) {
	if s.deps.Tracker == nil {
		return nil, errUnavailable
	}
	var args trackArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&args); err != nil {
		return nil, err
	}

	var event learning.Event
	if args.Type == learning.EventSearch {
		event = learning.NewSearchEvent(args.UserID, args.Query)
	} else {
		event = learning.NewEvent(args.UserID, args.Type, learning.Payload{
			Category: args.Category,
			EntityID: args.EntityID,
		})
	}
	s.deps.Tracker.Track(event)
	return map[string]string{"status": "accepted"}, nil
}

func execSuggest(ctx context.Context, s *Server, _ json.RawMessage) (any, error) {
	if s.deps.Assistant == nil {
		return nil, errUnavailable
	}
	msg, ok := s.deps.Assistant.Evaluate(ctx)
	if !ok {
		return map[string]any{"message": nil}, nil
	}
	return map[string]any{"message": msg}, nil
}
