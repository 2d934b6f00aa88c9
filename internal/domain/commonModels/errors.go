package commonModels

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrUpsertFailed       = errors.New("upsert failed")
	ErrNotBound           = errors.New("no collection selected")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrUnsupportedType    = errors.New("unsupported document type")
	ErrForbidden          = errors.New("forbidden")
	ErrEmbeddingMismatch  = errors.New("embedding model does not match collection")
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")
)
