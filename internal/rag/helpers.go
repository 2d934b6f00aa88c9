package rag

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/metrics"
	"github.com/akolanti/delphi/internal/rag/conversation"
	"github.com/akolanti/delphi/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, log *logger_i.Logger) jobModel.Job {
	code, canRetry := ErrorCode(err)
	log.Error(message, "error", err, "code", code)

	text := err.Error()
	if code >= http.StatusInternalServerError {
		text = http.StatusText(code)
	}
	job.Error = jobModel.JobError{
		Code:    code,
		Message: text,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

// ErrorCode maps a domain error to the HTTP status reported to clients and
// whether retrying the same request can help.
func ErrorCode(err error) (int, bool) {
	switch {
	case errors.Is(err, commonModels.ErrNotBound):
		return http.StatusConflict, false
	case errors.Is(err, commonModels.ErrAlreadyExists):
		return http.StatusConflict, false
	case errors.Is(err, commonModels.ErrForbidden):
		return http.StatusForbidden, false
	case errors.Is(err, commonModels.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, false
	case errors.Is(err, commonModels.ErrExtractionFailed):
		return http.StatusUnprocessableEntity, false
	case errors.Is(err, commonModels.ErrEmbeddingMismatch):
		return http.StatusConflict, false
	case errors.Is(err, commonModels.ErrInvalidChunkConfig):
		return http.StatusBadRequest, false
	case errors.Is(err, commonModels.ErrNotFound):
		return http.StatusNotFound, false
	case errors.Is(err, commonModels.ErrUpsertFailed), errors.Is(err, commonModels.ErrGenerationFailed):
		return http.StatusBadGateway, true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, true
	default:
		return http.StatusInternalServerError, true
	}
}

func toSourceRefs(chunks []commonModels.ScoredChunk) []jobModel.SourceRef {
	refs := make([]jobModel.SourceRef, 0, len(chunks))
	for _, c := range chunks {
		refs = append(refs, jobModel.SourceRef{
			Source:  c.Source,
			Page:    c.Page,
			ChunkId: c.Id,
			Score:   c.Score,
		})
	}
	return refs
}

func (s *service) executeSessionLoadStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) (conversation.Session, error) {
	*job = logOutput(*job, jobModel.SessionLoad, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("session_load", time.Since(start)) }()

	return s.sessions.Get(ctx, job.SessionId)
}

func (s *service) executeAskStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, session conversation.Session) (conversation.Answer, conversation.Session, error) {
	*job = logOutput(*job, jobModel.RAGCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("conversation_turn", time.Since(start)) }()

	return s.engine.Ask(ctx, job.JobPayload.Question, session)
}

func (s *service) executeSessionSaveStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, session conversation.Session) error {
	*job = logOutput(*job, jobModel.RedisCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("session_save", time.Since(start)) }()

	return s.sessions.Save(ctx, session)
}
