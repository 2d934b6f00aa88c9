package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akolanti/delphi/internal/middleware"
)

func TestRoutes(t *testing.T) {
	middleware.InitAuth(nil, false, "")

	mcpHits := 0
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mcpHits++
		w.WriteHeader(http.StatusOK)
	})
	handler := Routes(mcp)

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"health is public", http.MethodGet, "/health", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"swagger redirect", http.MethodGet, "/swagger", http.StatusMovedPermanently},
		{"collections need credentials", http.MethodGet, "/collections", http.StatusUnauthorized},
		{"sessions need credentials", http.MethodPost, "/sessions", http.StatusUnauthorized},
		{"chat needs credentials", http.MethodPost, "/chat", http.StatusUnauthorized},
		{"mcp needs credentials", http.MethodPost, "/mcp", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
	assert.Zero(t, mcpHits)

	t.Run("mcp behind bypass", func(t *testing.T) {
		middleware.InitAuth(nil, true, "admin")
		defer middleware.InitAuth(nil, false, "")

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/mcp", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, mcpHits)
	})
}

func TestRoutes_WithoutMCP(t *testing.T) {
	rr := httptest.NewRecorder()
	Routes(nil).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
