package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akolanti/delphi/internal/rag/ingest"
)

var ingestCollection string

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Add documents to a collection",
	Long: `Extracts, chunks and embeds the given files into a collection, creating it
when it does not exist. Files whose name is already in the collection are skipped.
Supported types: pdf, docx, odt, rtf, txt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "", "target collection")
	_ = ingestCmd.MarkFlagRequired("collection")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	uploads, err := readUploads(args)
	if err != nil {
		return err
	}

	a, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	if _, err := a.Collections.GetOrCreate(cmd.Context(), ingestCollection, a.Settings.AdminUser, time.Now()); err != nil {
		return err
	}

	res := a.Pipeline.Ingest(cmd.Context(), uploads, ingestCollection)
	if len(res.Skipped) > 0 {
		cmd.Printf("skipped (already in %s): %s\n", ingestCollection, strings.Join(res.Skipped, ", "))
	}
	if !res.Ok {
		return fmt.Errorf("ingestion failed: %w", res.Err)
	}
	cmd.Printf("ingested %d document(s), %d chunk(s) into %s\n", len(res.Ingested), res.Chunks, ingestCollection)
	return nil
}

func readUploads(paths []string) ([]ingest.Upload, error) {
	uploads := make([]ingest.Upload, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		if !ingest.Supported(name) {
			return nil, fmt.Errorf("%s: unsupported document type", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, ingest.Upload{Name: name, Data: data})
	}
	return uploads, nil
}
