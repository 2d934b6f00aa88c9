package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	UserQueryInit InternalStatus = "Init"
	SessionLoad   InternalStatus = "SessionLoad"
	RAGCall       InternalStatus = "RAG"
	RedisCall     InternalStatus = "Redis"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	SessionId   string         `json:"session_id,omitempty"`
	TraceId     string         `json:"trace_id"`
	Requester   string         `json:"requester"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	StartTime   time.Time      `json:"start_time,omitempty"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question           string      `json:"question,omitempty"`
	StandaloneQuestion string      `json:"standalone_question,omitempty"`
	Answer             string      `json:"answer,omitempty"`
	Sources            []SourceRef `json:"sources,omitempty"`

	Collection  string       `json:"collection,omitempty"`
	IngestFiles []IngestFile `json:"ingest_files,omitempty"`
	Ingested    []string     `json:"ingested,omitempty"`
	Skipped     []string     `json:"skipped,omitempty"`
	ChunkCount  int          `json:"chunk_count,omitempty"`
}

// SourceRef points at one retrieved chunk an answer was based on.
type SourceRef struct {
	Source  string  `json:"source"`
	Page    int     `json:"page"`
	ChunkId string  `json:"chunk_id"`
	Score   float32 `json:"score"`
}

// IngestFile is an upload parked on disk until a worker picks the job up.
type IngestFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string) error
}
