package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DELPHI_CONFIG", "")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ChunkSize, s.ChunkSize)
	assert.Equal(t, ChunkOverlap, s.ChunkOverlap)
	assert.Equal(t, HistoryTokenBudget, s.HistoryTokenBudget)
	assert.Equal(t, RetrievalTopK, s.RetrievalTopK)
	assert.Equal(t, OpenAIChatModel, s.ChatModel)
	assert.Equal(t, OpenAIEmbeddingModel, s.EmbeddingModel)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "delphi.yaml")
	yml := "chunk_size: 1500\nretrieval_top_k: 4\nllm_provider: gemini\nembedding_provider: gemini\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("DELPHI_CONFIG", path)
	t.Setenv("RETRIEVAL_TOP_K", "7")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1500, s.ChunkSize)
	assert.Equal(t, 7, s.RetrievalTopK, "environment wins over file")
	assert.Equal(t, GeminiModelName, s.ChatModel)
	assert.Equal(t, GoogleEmbeddingModel, s.EmbeddingModel)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DELPHI_CONFIG", "")
	t.Setenv("ADMIN_USER", "placeholder")
	require.NoError(t, os.Unsetenv("ADMIN_USER")) //godotenv never overrides a variable that is already set
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_USER=root\n"), 0o644))

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "root", s.AdminUser)
}
