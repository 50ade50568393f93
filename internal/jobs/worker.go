package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sjperalta/feria-api/pkg/logger"
)

var (
	// ErrUnknownJob is returned by RunNow for a name that was never registered
	ErrUnknownJob = errors.New("unknown job")
	// ErrJobPending is returned by RunNow when the job is already queued or running
	ErrJobPending = errors.New("job already queued or running")
	// ErrQueueFull is returned by RunNow when no slot is free in the queue
	ErrQueueFull = errors.New("job queue full")
	// ErrInvalidInterval is returned by ScheduleEvery for a non-positive interval
	ErrInvalidInterval = errors.New("schedule interval must be positive")
)

// Job represents a background task
type Job func(ctx context.Context) error

type namedJob struct {
	name    string
	run     Job
	pending bool
	stats   JobStats
}

// JobStats holds the run history of one named job
type JobStats struct {
	Name         string        `json:"name"`
	Interval     string        `json:"interval,omitempty"`
	Runs         int64         `json:"runs"`
	Failures     int64         `json:"failures"`
	Running      bool          `json:"running"`
	LastRun      *time.Time    `json:"last_run,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	LastError    string        `json:"last_error,omitempty"`
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	Workers       int        `json:"workers"`
	ActiveJobs    int        `json:"active_jobs"`
	CompletedJobs int64      `json:"completed_jobs"`
	FailedJobs    int64      `json:"failed_jobs"`
	QueueLength   int        `json:"queue_length"`
	Jobs          []JobStats `json:"jobs"`
}

// Worker runs named jobs on a fixed pool of goroutines. A job is never
// queued twice: a tick or manual trigger that arrives while the previous
// run is still pending is dropped.
type Worker struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	queue      chan string
	numWorkers int

	mu    sync.Mutex
	jobs  map[string]*namedJob
	stats WorkerStats
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		ctx:        ctx,
		cancel:     cancel,
		queue:      make(chan string, 16),
		numWorkers: numWorkers,
		jobs:       make(map[string]*namedJob),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Register makes a job available to RunNow without scheduling it
func (w *Worker) Register(name string, job Job) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.jobs[name] = &namedJob{name: name, run: job, stats: JobStats{Name: name}}
}

// ScheduleEvery registers a job and queues it at fixed intervals. The first
// run happens after the interval (not at startup).
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s got %s", ErrInvalidInterval, name, interval)
	}

	w.Register(name, job)
	w.mu.Lock()
	w.jobs[name].stats.Interval = interval.String()
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				if err := w.RunNow(name); err != nil && !errors.Is(err, ErrJobPending) {
					logger.Warn("[Scheduler] Tick skipped", "job", name, "error", err)
				}
			}
		}
	}()
	return nil
}

// RunNow queues a registered job for immediate execution
func (w *Worker) RunNow(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ctx.Err(); err != nil {
		return err
	}
	job, ok := w.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if job.pending {
		return fmt.Errorf("%w: %s", ErrJobPending, name)
	}

	select {
	case w.queue <- name:
		job.pending = true
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrQueueFull, name)
	}
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case name := <-w.queue:
			w.run(workerID, name)
		}
	}
}

func (w *Worker) run(workerID int, name string) {
	w.mu.Lock()
	job := w.jobs[name]
	job.stats.Running = true
	w.stats.ActiveJobs++
	w.mu.Unlock()

	start := time.Now()
	err := w.invoke(job)
	elapsed := time.Since(start)

	w.mu.Lock()
	job.pending = false
	job.stats.Running = false
	job.stats.Runs++
	job.stats.LastRun = &start
	job.stats.LastDuration = elapsed
	job.stats.LastError = ""
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
	if err != nil {
		job.stats.Failures++
		job.stats.LastError = err.Error()
		w.stats.FailedJobs++
	}
	w.mu.Unlock()

	if err != nil {
		logger.Error(fmt.Sprintf("[Worker %d] Job %s failed", workerID, name), "error", err, "duration", elapsed)
		return
	}
	logger.Info(fmt.Sprintf("[Worker %d] Job %s completed in %v", workerID, name, elapsed))
}

func (w *Worker) invoke(job *namedJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.run(w.ctx)
}

// Shutdown gracefully stops all workers. Jobs still queued are dropped;
// running jobs see their context cancelled.
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats := w.stats
	stats.Workers = w.numWorkers
	stats.QueueLength = len(w.queue)
	stats.Jobs = make([]JobStats, 0, len(w.jobs))
	for _, job := range w.jobs {
		js := job.stats
		if js.LastRun != nil {
			t := *js.LastRun
			js.LastRun = &t
		}
		stats.Jobs = append(stats.Jobs, js)
	}
	sort.Slice(stats.Jobs, func(i, j int) bool { return stats.Jobs[i].Name < stats.Jobs[j].Name })
	return stats
}
