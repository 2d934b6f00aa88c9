package ingest

import (
	"fmt"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

func ChunkID(source string, page int, index int) string {
	return fmt.Sprintf("%s_%d_%d", source, page, index)
}

// TagChunks attaches the page metadata to every chunk text of that page.
// Re-tagging the same page yields the same ids, so re-ingesting a file overwrites its chunks.
func TagChunks(page commonModels.Page, texts []string) []commonModels.Chunk {
	created := FormatTimestamp(page.CreationDate)
	modified := FormatTimestamp(page.ModDate)

	chunks := make([]commonModels.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, commonModels.Chunk{
			Id:           ChunkID(page.Source, page.Index, i),
			Content:      text,
			Source:       page.Source,
			Page:         page.Index,
			ChunkIndex:   i,
			CreationDate: created,
			ModDate:      modified,
			Author:       page.Author,
			Title:        page.Title,
		})
	}
	return chunks
}
