package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/metrics"
	"github.com/akolanti/delphi/internal/rag/conversation"
	"github.com/akolanti/delphi/internal/rag/ingest"
	"github.com/akolanti/delphi/pkg/logger_i"
)

/*
The worker only talks to Service. The private service struct holds the
conversation engine, the session store and the ingestion pipeline so the
worker never reaches into them directly, and tests can swap each of them.
*/

// Service Worker will only call this service - it doesn't need to know the llm or the vector
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

// Asker is satisfied by *conversation.Engine.
type Asker interface {
	Ask(ctx context.Context, question string, session conversation.Session) (conversation.Answer, conversation.Session, error)
}

// Ingester is satisfied by *ingest.Pipeline.
type Ingester interface {
	Ingest(ctx context.Context, docs []ingest.Upload, collection string) ingest.Result
}

type CollectionLookup interface {
	Get(ctx context.Context, name string) (commonModels.CollectionInfo, error)
}

type service struct {
	engine      Asker
	sessions    conversation.SessionStore
	pipeline    Ingester
	collections CollectionLookup
	locks       sessionLocks
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(engine Asker, sessions conversation.SessionStore, pipeline Ingester, collections CollectionLookup) Service {
	return &service{
		engine:      engine,
		sessions:    sessions,
		pipeline:    pipeline,
		collections: collections,
		locks:       sessionLocks{held: map[string]*sessionLock{}},
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

// ProcessRequest answers job.JobPayload.Question inside the job's session and
// stores the updated history. Questions of one session are answered one at a
// time so no exchange is lost.
func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	log := s.logger.WithTrace(ctx).With("jobId", jobt.Id, "session", jobt.SessionId)

	processContext, cancel := context.WithTimeout(ctx, config.QueryJobTimeout)
	defer cancel()

	unlock := s.locks.lock(jobt.SessionId)
	defer unlock()

	session, err := s.executeSessionLoadStep(processContext, log, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "SESSION_LOAD_FAILURE", log)
	}
	if session.Owner != jobt.Requester {
		return s.jobError(jobt, fmt.Errorf("%w: session belongs to another user", commonModels.ErrForbidden), "SESSION_OWNER_MISMATCH", log)
	}

	if session.Bound() {
		if _, err = s.collections.Get(processContext, session.Collection); err != nil {
			return s.jobError(jobt, s.staleBinding(processContext, log, session, err), "COLLECTION_LOOKUP_FAILURE", log)
		}
	}

	answer, next, err := s.executeAskStep(processContext, log, &jobt, session)
	if err != nil {
		return s.jobError(jobt, s.staleBinding(processContext, log, session, err), "RAG_FAILURE", log)
	}

	if err = s.executeSessionSaveStep(processContext, log, &jobt, next); err != nil {
		return s.jobError(jobt, err, "SESSION_SAVE_FAILURE", log)
	}

	jobt.JobPayload.Collection = session.Collection
	jobt.JobPayload.StandaloneQuestion = answer.StandaloneQuestion
	jobt.JobPayload.Sources = toSourceRefs(answer.Sources)
	return returnOutput(jobt, answer.Text)
}

// staleBinding unbinds a session whose collection has been deleted. Any other
// error is handed back as is.
func (s *service) staleBinding(ctx context.Context, log *logger_i.Logger, session conversation.Session, err error) error {
	if !errors.Is(err, commonModels.ErrNotFound) || !session.Bound() {
		return err
	}
	log.Warn("bound collection no longer exists, unbinding session", "collection", session.Collection)
	if saveErr := s.sessions.Save(ctx, session.Unbind()); saveErr != nil {
		log.Error("failed to unbind session", "error", saveErr)
	}
	return fmt.Errorf("%w: collection %q no longer exists", commonModels.ErrNotBound, session.Collection)
}

// IngestDocument feeds the uploads parked on disk into the pipeline. The parked
// files are removed whatever the outcome.
func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	log := s.logger.WithTrace(ctx).With("jobId", job.Id, "collection", job.JobPayload.Collection)
	ingestContext, cancel := context.WithTimeout(ctx, config.IngestJobTimeout)
	defer cancel()
	defer RemoveParked(job.JobPayload.IngestFiles, log)

	job = logOutput(job, jobModel.IngestProcessing, log)
	uploads, err := readParked(job.JobPayload.IngestFiles)
	if err != nil {
		return s.jobError(job, err, "UPLOAD_READ_FAILURE", log)
	}

	res := s.pipeline.Ingest(ingestContext, uploads, job.JobPayload.Collection)
	job.JobPayload.Ingested = res.Ingested
	job.JobPayload.Skipped = res.Skipped
	job.JobPayload.ChunkCount = res.Chunks
	if !res.Ok {
		return s.jobError(job, res.Err, "INGESTION_FAILURE", log)
	}
	job.CurrentStep = jobModel.Complete
	return job
}

func readParked(files []jobModel.IngestFile) ([]ingest.Upload, error) {
	uploads := make([]ingest.Upload, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("reading upload %s: %w", f.Name, err)
		}
		uploads = append(uploads, ingest.Upload{Name: f.Name, Data: data})
	}
	return uploads, nil
}

// RemoveParked deletes the uploaded files an ingest job was holding.
func RemoveParked(files []jobModel.IngestFile, log *logger_i.Logger) {
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to remove parked upload", "path", f.Path, "error", err)
		}
	}
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks serialises work per session id and forgets ids nobody waits on.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]*sessionLock
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.held[id]
	if !ok {
		entry = &sessionLock{}
		l.held[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.held, id)
		}
		l.mu.Unlock()
	}
}
