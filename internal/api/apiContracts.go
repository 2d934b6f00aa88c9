package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	SessionId string            `json:"session_id,omitempty" example:"3f0c7a2e-5d1b-4b8e-9a57-2c0d9d1e4f6a"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	QueuedAt  time.Time         `json:"queued_at"`
	StartTime time.Time         `json:"start_time,omitempty"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"409"`
	Message string `json:"message" example:"no collection selected"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Source struct {
	Source  string  `json:"source" example:"handbook.pdf"`
	Page    int     `json:"page" example:"3"`
	ChunkId string  `json:"chunk_id" example:"handbook.pdf_3_1"`
	Score   float32 `json:"score" example:"0.83"`
}

type RAGResponse struct {
	Question           string   `json:"question"`
	StandaloneQuestion string   `json:"standalone_question,omitempty"`
	Answer             string   `json:"answer"`
	Collection         string   `json:"collection,omitempty"`
	Sources            []Source `json:"sources"`
}

type IngestResponse struct {
	Collection string   `json:"collection"`
	Ingested   []string `json:"ingested"`
	Skipped    []string `json:"skipped"`
	Chunks     int      `json:"chunks"`
}

type Result struct {
	Status              string          `json:"status"`
	RAGExternalResponse *RAGResponse    `json:"rag_response,omitempty"`
	IngestResponse      *IngestResponse `json:"ingest_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type CollectionResponse struct {
	Name               string    `json:"name" example:"handbooks"`
	Owner              string    `json:"owner" example:"alice"`
	CreatedAt          time.Time `json:"created_at"`
	EmbeddingModel     string    `json:"embedding_model" example:"text-embedding-3-small"`
	EmbeddingDimension int       `json:"embedding_dimension" example:"1536"`
}

type CollectionListResponse struct {
	// Collections starts with the "-- select a collection --" placeholder when
	// requested with ?selection=true.
	Collections []string `json:"collections"`
}

type Message struct {
	Role    string `json:"role" example:"user"`
	Content string `json:"content"`
}

type SessionResponse struct {
	Id         string    `json:"id"`
	Collection string    `json:"collection,omitempty"`
	Turns      int       `json:"turns"`
	History    []Message `json:"history"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// requests---------------------

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}

type CreateCollectionRequest struct {
	Name string `json:"name" validate:"required"`
}

type BindCollectionRequest struct {
	Collection string `json:"collection" validate:"required"`
}
