package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/delphi/internal/api"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/rag/conversation"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status: string(job.Status),
	}
	if job.JobType == jobModel.JobTypeIngest {
		result.IngestResponse = ToIngestResponse(job)
	} else {
		result.RAGExternalResponse = ToRAGExternalStatus(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		SessionId: job.SessionId,
		QueuedAt:  job.CreatedTime,
		StartTime: job.StartTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Sources) == 0 {
		return nil
	}

	sources := make([]api.Source, 0, len(ragData.Sources))
	for _, s := range ragData.Sources {
		sources = append(sources, api.Source{Source: s.Source, Page: s.Page, ChunkId: s.ChunkId, Score: s.Score})
	}
	return &api.RAGResponse{
		Question:           ragData.Question,
		StandaloneQuestion: ragData.StandaloneQuestion,
		Answer:             ragData.Answer,
		Collection:         ragData.Collection,
		Sources:            sources,
	}
}

// ToIngestResponse is nil until the worker has run the job.
func ToIngestResponse(job jobModel.Job) *api.IngestResponse {
	if job.Status != jobModel.JobStatusComplete && job.Status != jobModel.JobStatusError {
		return nil
	}
	p := job.JobPayload
	return &api.IngestResponse{
		Collection: p.Collection,
		Ingested:   nonNil(p.Ingested),
		Skipped:    nonNil(p.Skipped),
		Chunks:     p.ChunkCount,
	}
}

func ToCollectionResponse(info commonModels.CollectionInfo) api.CollectionResponse {
	return api.CollectionResponse{
		Name:               info.Name,
		Owner:              info.Owner,
		CreatedAt:          info.CreatedAt,
		EmbeddingModel:     info.EmbeddingModel,
		EmbeddingDimension: info.EmbeddingDimension,
	}
}

func ToSessionResponse(s conversation.Session) api.SessionResponse {
	history := make([]api.Message, 0, len(s.History))
	for _, m := range s.History {
		history = append(history, api.Message{Role: string(m.Role), Content: m.Content})
	}
	return api.SessionResponse{
		Id:         s.ID,
		Collection: s.Collection,
		Turns:      s.Turns(),
		History:    history,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
