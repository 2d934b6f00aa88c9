package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/delphi/internal/app"
	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/data/store"
	"github.com/akolanti/delphi/internal/rag/chunker"
	"github.com/akolanti/delphi/internal/rag/collection"
	"github.com/akolanti/delphi/internal/rag/conversation"
	"github.com/akolanti/delphi/internal/rag/ingest"
	"github.com/akolanti/delphi/internal/rag/llm"
	"github.com/akolanti/delphi/internal/rag/vectorDB/memoryDB"
)

type fakeEmbedder struct{}

func (fakeEmbedder) GetEmbedding(_ context.Context, query string) ([]float32, error) {
	return vectorOf(query), nil
}

func (fakeEmbedder) BatchEmbedding(_ context.Context, chunks []string, _ bool) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = vectorOf(c)
	}
	return out, nil
}

func (fakeEmbedder) ModelName() string { return "fake-embedding" }
func (fakeEmbedder) Dimension() int    { return 3 }

func vectorOf(text string) []float32 {
	return []float32{float32(len(text)%7) + 1, float32(strings.Count(text, "e")) + 1, 1}
}

type fakeLLM struct{}

func (fakeLLM) Generate(_ context.Context, _ llm.Request) (string, error) {
	return "the fake answer", nil
}

func (fakeLLM) ModelName() string { return "fake-llm" }

type runeCounter struct{}

func (runeCounter) Count(text string) int { return len([]rune(text)) }

func setupTestApp(t *testing.T) *app.App {
	t.Helper()
	settings := config.Defaults()
	settings.AdminUser = "admin"
	settings.DocsRoot = t.TempDir()

	registry := store.InitInMemoryCollectionRegistry()
	collections := collection.NewStore(registry, memoryDB.NewIndex(), fakeEmbedder{}, settings.DocsRoot)
	splitter, err := chunker.NewSplitter(200, 20)
	require.NoError(t, err)

	a := &app.App{
		Settings:    settings,
		Registry:    registry,
		Collections: collections,
		Pipeline:    ingest.NewPipeline(collections, splitter),
		Engine: conversation.NewEngine(
			conversation.NewLLMRewriter(fakeLLM{}),
			&conversation.StoreRetriever{Store: collections, TopK: 5},
			conversation.NewLLMAnswerer(fakeLLM{}),
			runeCounter{},
			1000,
		),
		Sessions: store.InitInMemorySessionStore(),
		Jobs:     store.InitInMemoryJobStore(),
		Embedder: fakeEmbedder{},
		LLM:      fakeLLM{},
	}

	previous := buildApp
	buildApp = func(context.Context) (*app.App, error) { return a, nil }
	t.Cleanup(func() { buildApp = previous })
	return a
}

// resetFlags undoes the flag values of earlier runs; cobra keeps them on the
// package-level commands.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestHashPasswordsCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`credentials:
  usernames:
    alice:
      name: Alice
      password: secret
`), 0o600))

	out, err := run(t, "hash-passwords", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "hashed password of alice")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password: secret")

	out, err = run(t, "hash-passwords", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "already hashed")
}

func TestCollectionsCmd_Lifecycle(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, "collections", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No collections.")

	out, err = run(t, "collections", "create", "Handbooks")
	require.NoError(t, err)
	assert.Contains(t, out, "created Handbooks (fake-embedding, 3 dimensions)")

	_, err = run(t, "collections", "create", "Handbooks")
	assert.Error(t, err)

	out, err = run(t, "collections", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Handbooks")

	out, err = run(t, "collections", "delete", "Handbooks")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted Handbooks")
}

func TestIngestAndAskCmd(t *testing.T) {
	setupTestApp(t)

	doc := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(doc, []byte("The office opens at eight. Parking is behind the building."), 0o600))

	out, err := run(t, "ingest", "--collection", "Notes", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "ingested 1 document(s)")

	out, err = run(t, "ingest", "--collection", "Notes", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped (already in Notes): notes.txt")

	out, err = run(t, "ask", "--collection", "Notes", "When does the office open?")
	require.NoError(t, err)
	assert.Contains(t, out, "the fake answer")
	assert.Contains(t, out, "notes.txt")
}

func TestIngestCmd_RejectsUnsupportedFiles(t *testing.T) {
	setupTestApp(t)

	doc := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(doc, []byte{0x89, 0x50}, 0o600))

	_, err := run(t, "ingest", "--collection", "Notes", doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document type")
}

func TestAskCmd_RequiresCollection(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, "ask", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "collection" not set`)
}

func TestAskCmd_UnknownCollection(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, "ask", "--collection", "Missing", "anything")
	assert.Error(t, err)
}
