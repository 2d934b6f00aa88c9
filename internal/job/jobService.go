package job

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/metrics"
	"github.com/akolanti/delphi/internal/rag/conversation"
	"github.com/akolanti/delphi/pkg/logger_i"
)

var logger = logger_i.NewLogger("Job Service")

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	SessionStore      conversation.SessionStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	SessionStore      conversation.SessionStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		SessionStore:      cfg.SessionStore,
	}
}

// Submit stores job as queued and hands it to the worker pool. The send
// blocks while the queue is full so callers slow down instead of piling up
// jobs; it gives up when ctx is done.
func (s *Service) Submit(ctx context.Context, job jobModel.Job) error {
	job.Status = jobModel.JobStatusQueued
	if job.CreatedTime.IsZero() {
		job.CreatedTime = time.Now()
	}
	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		return err
	}

	select {
	case s.JobChannel <- job:
		metrics.IncrementJobsInQueue()
	case <-ctx.Done():
		cleanupCtx := context.WithoutCancel(ctx)
		if err := s.JobStore.DeleteJob(cleanupCtx, job.Id); err != nil {
			logger.WithTrace(cleanupCtx).Error("queued job left behind after enqueue gave up", "jobId", job.Id, "error", err)
			return errors.Join(ctx.Err(), err)
		}
		return ctx.Err()
	}

	//a new worker every RequestsPerNewWorkerCount requests, and one per ingestion
	//since those embed whole batches; idle workers retire on their own
	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%config.RequestsPerNewWorkerCount == 0 || job.JobType == jobModel.JobTypeIngest {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}
	return nil
}
