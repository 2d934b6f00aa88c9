package worker

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/job"
	"github.com/akolanti/delphi/pkg/logger_i"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	OnProcess      func(ctx context.Context, j jobModel.Job) jobModel.Job
	OnIngest       func(ctx context.Context, j jobModel.Job) jobModel.Job
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnProcess != nil {
		return m.OnProcess(ctx, j)
	}
	return j
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnIngest != nil {
		return m.OnIngest(ctx, j)
	}
	return j
}

type MockJobStore struct {
	mu        sync.Mutex
	saved     []jobModel.Job
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == jobId {
			return m.saved[i], true
		}
	}
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) error { return nil }

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	m.saved = append(m.saved, j)
	m.mu.Unlock()
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		// Signal dispatcher to create a worker
		jobSvc.DispatcherChannel <- true

		// Give it a moment to spawn
		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		testJob := jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeQuery}
		jobSvc.JobChannel <- testJob

		// Wait for worker to pick up and process
		time.Sleep(50 * time.Millisecond)

		processed := atomic.LoadInt32(&mockRag.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		// Send stop signal
		close(stopChan)

		// Wait for workers to exit
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestExecuteJob_FinalStatus(t *testing.T) {
	logger = logger_i.NewLogger("TestWorkerPool")

	tests := []struct {
		name       string
		jobType    jobModel.JobType
		rag        *MockRagService
		wantStatus jobModel.JobStatus
	}{
		{
			name:       "query completes",
			jobType:    jobModel.JobTypeQuery,
			rag:        &MockRagService{},
			wantStatus: jobModel.JobStatusComplete,
		},
		{
			name:    "failed query keeps its error",
			jobType: jobModel.JobTypeQuery,
			rag: &MockRagService{OnProcess: func(ctx context.Context, j jobModel.Job) jobModel.Job {
				j.Status = jobModel.JobStatusError
				j.Error = jobModel.JobError{Code: http.StatusConflict, Message: "no collection selected"}
				return j
			}},
			wantStatus: jobModel.JobStatusError,
		},
		{
			name:    "ingestion goes to the ingest path",
			jobType: jobModel.JobTypeIngest,
			rag: &MockRagService{
				OnProcess: func(ctx context.Context, j jobModel.Job) jobModel.Job {
					t.Error("query path used for an ingestion job")
					return j
				},
				OnIngest: func(ctx context.Context, j jobModel.Job) jobModel.Job {
					j.JobPayload.ChunkCount = 4
					return j
				},
			},
			wantStatus: jobModel.JobStatusComplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &MockJobStore{}
			InitServices(&job.Service{JobStore: st}, tt.rag)

			executeJob(jobModel.Job{Id: "j1", TraceId: "trace", JobType: tt.jobType})

			got, ok := st.GetJob(context.Background(), "j1")
			if !ok {
				t.Fatal("job state was never saved")
			}
			if got.Status != tt.wantStatus {
				t.Errorf("final status got %v, want %v", got.Status, tt.wantStatus)
			}
			if got.EndTime.IsZero() {
				t.Error("EndTime not set")
			}
			if st.saved[0].Status != jobModel.JobStatusRunning {
				t.Errorf("first saved status got %v, want %v", st.saved[0].Status, jobModel.JobStatusRunning)
			}
		})
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	// Temporarily override config/globals for test
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 0)
	previousTimeout := idleTimeout
	idleTimeout = 20 * time.Millisecond
	defer func() {
		idleTimeout = previousTimeout
		atomic.StoreInt64(&minWorkerCount, 1)
	}()

	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Spawn 1 worker manually
	createWorker()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("idle worker did not retire")
	}

	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 0 {
		t.Errorf("Assertion Failed: Worker should have timed out and retired, but count is %d", count)
	}
}

func TestRunJob_BoundsConcurrentIngestions(t *testing.T) {
	logger = logger_i.NewLogger("TestWorkerPool")
	previousSlots := ingestSlots
	ingestSlots = make(chan struct{}, 2)
	defer func() { ingestSlots = previousSlots }()
	stopWorkerChannel = make(chan bool)

	var inFlight, maxInFlight int32
	release := make(chan struct{})
	rag := &MockRagService{OnIngest: func(ctx context.Context, j jobModel.Job) jobModel.Job {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&inFlight, -1)
		return j
	}}
	InitServices(&job.Service{JobStore: &MockJobStore{}}, rag)

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runJob(jobModel.Job{Id: "ingest-" + string(rune('a'+i)), JobType: jobModel.JobTypeIngest})
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&maxInFlight); got != 2 {
		t.Errorf("max concurrent ingestions got %d, want 2", got)
	}
	if got := atomic.LoadInt32(&rag.ProcessedCount); got != 4 {
		t.Errorf("processed got %d, want 4", got)
	}
}

func TestRunJob_StopWhileWaitingForSlot(t *testing.T) {
	logger = logger_i.NewLogger("TestWorkerPool")
	previousSlots := ingestSlots
	ingestSlots = make(chan struct{}, 1)
	ingestSlots <- struct{}{} // taken
	defer func() { ingestSlots = previousSlots }()

	stop := make(chan bool)
	stopWorkerChannel = stop
	close(stop)

	st := &MockJobStore{}
	rag := &MockRagService{}
	InitServices(&job.Service{JobStore: st}, rag)

	parked := filepath.Join(t.TempDir(), "upload-1")
	if err := os.WriteFile(parked, []byte("%PDF"), 0o600); err != nil {
		t.Fatal(err)
	}

	runJob(jobModel.Job{
		Id:         "waiting",
		JobType:    jobModel.JobTypeIngest,
		JobPayload: jobModel.JobPayload{IngestFiles: []jobModel.IngestFile{{Name: "doc.pdf", Path: parked}}},
	})

	got, ok := st.GetJob(context.Background(), "waiting")
	if !ok || got.Status != jobModel.JobStatusError || !got.Error.Retry {
		t.Errorf("job got %+v, want a retryable error", got)
	}
	if atomic.LoadInt32(&rag.ProcessedCount) != 0 {
		t.Error("job ran without an ingest slot")
	}
	if _, err := os.Stat(parked); !os.IsNotExist(err) {
		t.Errorf("parked upload still on disk, stat err %v", err)
	}
}

func TestRetireIdle_KeepsMinimum(t *testing.T) {
	atomic.StoreInt64(&minWorkerCount, 2)
	defer atomic.StoreInt64(&minWorkerCount, 1)

	atomic.StoreInt64(&currentWorkerCount, 3)
	if !retireIdle() {
		t.Fatal("worker above the minimum should retire")
	}
	if retireIdle() {
		t.Fatal("worker at the minimum must stay")
	}
	if got := atomic.LoadInt64(&currentWorkerCount); got != 2 {
		t.Errorf("worker count got %d, want 2", got)
	}
	atomic.StoreInt64(&currentWorkerCount, 0)
}
