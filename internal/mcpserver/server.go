// Package mcpserver exposes collection listing and retrieval as MCP tools so
// agents can search the collections without going through the chat flow.
package mcpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/pkg/logger_i"
)

const Version = "0.1.0"

var ErrMissingCollections = errors.New("collection service is required")

// Collections is the part of the collection store the tools read from.
type Collections interface {
	List(ctx context.Context) ([]string, error)
	Query(ctx context.Context, name string, text string, topK int, scoreThreshold float32) ([]commonModels.ScoredChunk, error)
}

type Server struct {
	collections    Collections
	topK           int
	scoreThreshold float32
	server         *mcp.Server
	logger         *logger_i.Logger
}

func NewServer(collections Collections, topK int, scoreThreshold float32) (*Server, error) {
	if collections == nil {
		return nil, ErrMissingCollections
	}
	if topK <= 0 {
		topK = config.RetrievalTopK
	}
	s := &Server{
		collections:    collections,
		topK:           topK,
		scoreThreshold: scoreThreshold,
		server:         mcp.NewServer(&mcp.Implementation{Name: "delphi", Version: Version}, nil),
		logger:         logger_i.NewLogger("MCP Server"),
	}
	s.registerTools()
	return s, nil
}

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// Run serves the tools over stdio until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
