package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/job"
	"github.com/akolanti/delphi/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

// CollectionService is the part of the collection store the HTTP layer uses.
type CollectionService interface {
	Create(ctx context.Context, name string, owner string, createdAt time.Time) (commonModels.CollectionInfo, error)
	GetOrCreate(ctx context.Context, name string, owner string, createdAt time.Time) (commonModels.CollectionInfo, error)
	Get(ctx context.Context, name string) (commonModels.CollectionInfo, error)
	List(ctx context.Context) ([]string, error)
	ListForSelection(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string, requester commonModels.Identity) error
}

type JobHandler struct {
	service     *job.Service
	collections CollectionService
	uploadDir   string
}

func InitJobHandler(jobService *job.Service, collections CollectionService, uploadDir string) {
	once.Do(func() {
		setJobHandler(jobService, collections, uploadDir)
		logJH.Info("Starting job handler")
	})
}

func setJobHandler(jobService *job.Service, collections CollectionService, uploadDir string) {
	if uploadDir == "" {
		uploadDir = config.UploadTempDir
	}
	handlerInstance = &JobHandler{service: jobService, collections: collections, uploadDir: uploadDir}
	logJH = logger_i.NewLogger("JobHandler")
	logRH = logger_i.NewLogger("RequestHandler")
}

func CreateNewJob(ctx context.Context, newJob newJobData) error {
	log := logJH.WithTrace(ctx).With("jobId", newJob.id)
	log.Info("To create new job", "type", newJob.jobType())
	if err := handlerInstance.service.Submit(ctx, newJob.toJob()); err != nil {
		log.Error("Could not queue job", "error", err)
		return err
	}
	log.Info("Created new job")
	return nil
}

func GetJobStatus(ctx context.Context, id string) (result jobModel.Job, isFound bool) {
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctx, id)
	}
	return result, false
}

func (d newJobData) jobType() jobModel.JobType {
	if d.isDocumentIngest {
		return jobModel.JobTypeIngest
	}
	return jobModel.JobTypeQuery
}

func (d newJobData) toJob() jobModel.Job {
	_job := jobModel.Job{
		Id:          d.id,
		TraceId:     d.traceId,
		Requester:   d.requester,
		CreatedTime: time.Now(),
		JobType:     d.jobType(),
	}

	if d.isDocumentIngest {
		_job.CurrentStep = jobModel.IngestInit
		_job.JobPayload.Collection = d.collection
		_job.JobPayload.IngestFiles = d.files
	} else {
		_job.CurrentStep = jobModel.UserQueryInit
		_job.SessionId = d.sessionId
		_job.JobPayload.Question = d.message
	}
	return _job
}
