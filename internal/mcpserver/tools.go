package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ListCollectionsInput struct{}

type ListCollectionsOutput struct {
	Collections []string `json:"collections"`
}

type SearchInput struct {
	Collection string `json:"collection" jsonschema:"name of the collection to search"`
	Query      string `json:"query" jsonschema:"text to search for"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (default 15)"`
}

type SearchOutput struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

type SearchResult struct {
	ChunkID string  `json:"chunk_id"`
	Source  string  `json:"source"`
	Page    int     `json:"page"`
	Score   float32 `json:"score"`
	Content string  `json:"content"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List the names of all document collections",
	}, s.handleListCollections)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_collection",
		Description: "Return the chunks of a collection most similar to a query, with their source and page",
	}, s.handleSearch)
}

func (s *Server) handleListCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCollectionsInput,
) (*mcp.CallToolResult, ListCollectionsOutput, error) {
	names, err := s.collections.List(ctx)
	if err != nil {
		return nil, ListCollectionsOutput{}, err
	}
	if names == nil {
		names = []string{}
	}
	return nil, ListCollectionsOutput{Collections: names}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Collection == "" || input.Query == "" {
		return nil, SearchOutput{}, fmt.Errorf("collection and query are required")
	}
	limit := input.Limit
	if limit <= 0 || limit > s.topK {
		limit = s.topK
	}

	chunks, err := s.collections.Query(ctx, input.Collection, input.Query, limit, s.scoreThreshold)
	if err != nil {
		s.logger.WithTrace(ctx).Warn("search_collection failed", "collection", input.Collection, "error", err)
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResult, len(chunks)),
		Count:   len(chunks),
	}
	for i, c := range chunks {
		output.Results[i] = SearchResult{
			ChunkID: c.Id,
			Source:  c.Source,
			Page:    c.Page,
			Score:   c.Score,
			Content: c.Content,
		}
	}
	return nil, output, nil
}
