package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/pkg/logger_i"
)

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"REPORT.PDF", commonModels.PDF},
		{"DOC.DOCX", commonModels.DOCX},
		{"draft.odt", commonModels.DOCX},
		{"letter.rtf", commonModels.DOCX},
		{"notes.txt", commonModels.TXT},
		{"image.png", commonModels.ERR},
		{"no_extension", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestExtractPages_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Delphi answers questions about documents.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := extractPages(path, "notes.txt", logger_i.NewLogger("test"))
	if err != nil {
		t.Fatalf("extractPages: %v", err)
	}
	if len(pages) != 1 || pages[0].Index != 0 || pages[0].Source != "notes.txt" {
		t.Fatalf("unexpected pages %+v", pages)
	}
	if !strings.Contains(pages[0].Content, "Delphi answers questions") {
		t.Errorf("unexpected content %q", pages[0].Content)
	}
}

func TestExtractPages_Failures(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(broken, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	log := logger_i.NewLogger("test")

	if _, err := extractPages(broken, "broken.pdf", log); err == nil {
		t.Error("expected an error for a broken pdf")
	}
	if _, err := extractPages(broken, "broken.png", log); !errors.Is(err, commonModels.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}
