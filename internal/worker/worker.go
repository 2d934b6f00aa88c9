// Package worker runs queued jobs on an elastic pool. The dispatcher adds a
// worker when the job service signals load; idle workers above the minimum
// retire on their own.
package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/job"
	"github.com/akolanti/delphi/internal/metrics"
	"github.com/akolanti/delphi/internal/rag"
	"github.com/akolanti/delphi/pkg/logger_i"
)

var (
	_jobService        *job.Service
	_ragService        rag.Service
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	dispatcherChannel  chan bool
	currentWorkerCount int64
	logger             *logger_i.Logger

	minWorkerCount = config.MinWorkerCount
	maxWorkerCount = config.MaxWorkerCount
	idleTimeout    = config.IdleWorkerTimeout

	// ingestSlots bounds how many workers embed documents at once.
	ingestSlots = make(chan struct{}, config.MaxConcurrentIngestions)
)

func InitServices(jobService *job.Service, ragService rag.Service) {
	_jobService = jobService
	_ragService = ragService
	dispatcherChannel = jobService.DispatcherChannel
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger = logger_i.NewLogger("WorkerPool")
	logger.Info("Initializing worker pool", "min", minWorkerCount, "max", maxWorkerCount, "ingestSlots", cap(ingestSlots))
	for range max(minWorkerCount, 1) {
		createWorker()
	}
	go dispatcher()
}

// ActiveWorkers is the number of running workers.
func ActiveWorkers() int64 {
	return atomic.LoadInt64(&currentWorkerCount)
}

func dispatcher() {
	stop, signals := stopWorkerChannel, dispatcherChannel
	logger.Info("Dispatcher started")
	for {
		select {
		case <-stop:
			logger.Info("Dispatcher stopped")
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			if count := ActiveWorkers(); count < maxWorkerCount {
				logger.Info("Creating new worker", "workerCount", count)
				createWorker()
			}
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go worker()
}

func worker() {
	jobs, stop := _jobService.JobChannel, stopWorkerChannel
	idle := time.NewTimer(idleTimeout)
	defer idle.Stop()

	for {
		select {
		case currentJob := <-jobs:
			metrics.DecrementJobsInQueue()
			runJob(currentJob)
			idle.Reset(idleTimeout)

		case <-stop:
			atomic.AddInt64(&currentWorkerCount, -1)
			removeWorker("stop signal received")
			return

		case <-idle.C:
			if retireIdle() {
				removeWorker("idle timeout")
				return
			}
			idle.Reset(idleTimeout)
		}
	}
}

// retireIdle claims a retirement unless that would leave fewer than
// minWorkerCount workers; concurrent idle workers cannot both pass the check.
func retireIdle() bool {
	for {
		count := atomic.LoadInt64(&currentWorkerCount)
		if count <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, count, count-1) {
			return true
		}
	}
}
