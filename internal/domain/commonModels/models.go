package commonModels

import "time"

// Page is one page of an uploaded document, as handed over by the extractor.
type Page struct {
	Source       string `json:"source"`
	Index        int    `json:"page"`
	Content      string `json:"content"`
	Author       string `json:"author"`
	Title        string `json:"title"`
	CreationDate string `json:"creationDate"` //raw value from the document, e.g. D:20230908101500+02'00'
	ModDate      string `json:"modDate"`
}

// Chunk is the unit stored in a collection. Id is {source}_{page}_{index}.
type Chunk struct {
	Id           string `json:"chunk_id"`
	Content      string `json:"content"`
	Source       string `json:"source"`
	Page         int    `json:"page"`
	ChunkIndex   int    `json:"chunk_index"`
	CreationDate string `json:"creationDate"`
	ModDate      string `json:"modDate"`
	Author       string `json:"author"`
	Title        string `json:"title"`
}

type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// CollectionInfo is the collection-level metadata kept next to the index.
type CollectionInfo struct {
	Name               string    `json:"name"`
	Owner              string    `json:"owner"`
	CreatedAt          time.Time `json:"created_at"`
	EmbeddingModel     string    `json:"embedding_model"`
	EmbeddingDimension int       `json:"embedding_dimension"`
}

type Identity struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"is_admin"`
}

type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"
