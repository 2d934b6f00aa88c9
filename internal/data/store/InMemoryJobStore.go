package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/pkg/logger_i"
)

type jobEntry struct {
	job     jobModel.Job
	expires time.Time
}

// InMemoryJobStore keeps jobs for the same retention window the redis store
// applies, so a long-running process without redis does not grow forever.
type InMemoryJobStore struct {
	mu     sync.Mutex
	jobs   map[string]jobEntry
	ttl    time.Duration
	now    func() time.Time
	logger *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return NewInMemoryJobStore(config.RedisJobStoreTTL, time.Now)
}

func NewInMemoryJobStore(ttl time.Duration, now func() time.Time) *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs:   make(map[string]jobEntry),
		ttl:    ttl,
		now:    now,
		logger: logger_i.NewLogger("Job Memory Store"),
	}
}

func (s *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	swept := 0
	for id, e := range s.jobs {
		if now.After(e.expires) {
			delete(s.jobs, id)
			swept++
		}
	}
	s.jobs[job.Id] = jobEntry{job: job, expires: now.Add(s.ttl)}

	log := s.logger.WithTrace(ctx)
	if swept > 0 {
		log.Debug("expired jobs dropped", "count", swept)
	}
	log.Debug("job saved", "jobId", job.Id, "status", job.Status)
	return nil
}

func (s *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.jobs[jobId]
	if found && s.now().After(e.expires) {
		delete(s.jobs, jobId)
		found = false
	}
	s.logger.WithTrace(ctx).Debug("job lookup", "jobId", jobId, "found", found)
	return e.job, found
}

func (s *InMemoryJobStore) DeleteJob(_ context.Context, jobId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobId)
	return nil
}

// Len reports how many jobs are held, expired ones included until the next sweep.
func (s *InMemoryJobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
