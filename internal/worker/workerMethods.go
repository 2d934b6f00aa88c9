package worker

import (
	"context"
	"time"

	"github.com/akolanti/delphi/internal/config"
	jobmodel "github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/metrics"
	"github.com/akolanti/delphi/internal/rag"
)

// runJob executes one job. Ingestions first wait for a free ingest slot; a
// stop signal while waiting puts the job back in the error state instead of
// leaving it queued forever, and drops its parked uploads.
func runJob(job jobmodel.Job) {
	if job.JobType != jobmodel.JobTypeIngest {
		executeJob(job)
		return
	}
	select {
	case ingestSlots <- struct{}{}:
		defer func() { <-ingestSlots }()
		executeJob(job)
	case <-stopWorkerChannel:
		ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
		job.Error = jobmodel.JobError{Code: 503, Message: "server shutting down", Retry: true}
		job.EndTime = time.Now()
		rag.RemoveParked(job.JobPayload.IngestFiles, logger.WithTrace(ctx).With("jobId", job.Id))
		saveJobState(ctx, job, jobmodel.JobStatusError)
	}
}

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.JobType)+"_"+string(job.Status), time.Since(start))
	}()
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	log := logger.WithTrace(ctx).With("jobId", job.Id, "jobType", job.JobType)
	log.Debug("Processing job", "queuedFor", start.Sub(job.CreatedTime))

	job.StartTime = start
	job = saveJobState(ctx, job, jobmodel.JobStatusRunning)

	//the rag service applies the per-type timeouts
	if job.JobType == jobmodel.JobTypeIngest {
		job.CurrentStep = jobmodel.IngestProcessing
		job = _ragService.IngestDocument(ctx, job)
	} else {
		job = _ragService.ProcessRequest(ctx, job)
	}

	job.EndTime = time.Now()
	if job.Status == jobmodel.JobStatusError {
		log.Warn("Job failed", "code", job.Error.Code, "message", job.Error.Message)
		job = saveJobState(ctx, job, jobmodel.JobStatusError)
		return
	}
	job = saveJobState(ctx, job, jobmodel.JobStatusComplete)
	log.Debug("Job complete", "elapsed", time.Since(start))
}

// removeWorker is called once the worker's slot in currentWorkerCount has
// been given up.
func removeWorker(reason string) {
	metrics.DecrementActiveWorkerCount()
	logger.Info("Removed worker", "reason", reason, "workerCount", ActiveWorkers())
	workerWaitGroup.Done()
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) jobmodel.Job {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job status", "err", err, "jobId", job.Id)
	}
	return job
}
