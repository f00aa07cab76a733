// Package queue provides background job processing for the storefront.
//
// Usage:
//
//	// Define a job
//	type ConfirmationMailJob struct { OrderID string }
//	func (j ConfirmationMailJob) Handle() error { ... }
//
//	// Register once at boot, then dispatch from anywhere:
//	queue.Register("*jobs.ConfirmationMailJob", func() queue.Job { return &ConfirmationMailJob{} })
//	queue.Dispatch(&ConfirmationMailJob{OrderID: id})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vastrahub/vastra/pkg/logger"
	"github.com/vastrahub/vastra/pkg/metrics"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle() error
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// Manager is the central queue hub.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job // type name → constructor
	failed   []FailedJob
	maxRetry int
}

var defaultManager = &Manager{
	registry: map[string]func() Job{},
	maxRetry: 3,
	driver:   NewMemoryDriver(),
}

// SetDriver swaps the underlying queue driver (e.g. Redis).
func SetDriver(d Driver) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.driver = d
}

// SetMaxRetry sets how many times a failing job is retried.
func SetMaxRetry(n int) { defaultManager.maxRetry = n }

// Register makes a job type available for deserialization by name.
// Call this once at boot for every job type you define.
func Register(name string, factory func() Job) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.registry[name] = factory
}

type envelope struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatch pushes job onto the default queue immediately.
func Dispatch(job Job) error {
	return defaultManager.push(job, 0)
}

func (m *Manager) push(job Job, attempts int) error {
	typeName := fmt.Sprintf("%T", job)

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", typeName, err)
	}

	env, err := json.Marshal(envelope{Type: typeName, Payload: payload, Attempts: attempts})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	return d.Push(env)
}

// StartWorkers launches n concurrent workers that process jobs from the queue.
// The workers run until ctx is cancelled.
func StartWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go defaultManager.work(ctx)
	}
	logger.Info("queue: workers started", "count", n)
}

func (m *Manager) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			m.mu.RLock()
			d := m.driver
			m.mu.RUnlock()

			raw, err := d.Pop(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("queue: pop failed", "error", err)
				time.Sleep(time.Second)
				continue
			}
			if raw == nil {
				continue // driver timeout, nothing ready
			}

			m.process(raw)
		}
	}
}

func (m *Manager) process(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		logger.Error("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal job", "type", env.Type, "error", err)
		return
	}

	if err := job.Handle(); err != nil {
		metrics.QueueJobsProcessed.WithLabelValues("failed").Inc()
		m.retry(job, env, err)
		return
	}
	metrics.QueueJobsProcessed.WithLabelValues("success").Inc()
}

// retry re-dispatches with a 1s backoff until maxRetry is exhausted,
// then records the job in the failed list.
func (m *Manager) retry(job Job, env envelope, err error) {
	attempts := env.Attempts + 1
	if attempts < m.maxRetry {
		logger.Warn("queue: job failed, retrying", "type", env.Type, "attempt", attempts, "error", err)
		go func() {
			time.Sleep(time.Second)
			if pushErr := m.push(job, attempts); pushErr != nil {
				logger.Error("queue: retry push failed", "type", env.Type, "error", pushErr)
			}
		}()
		return
	}

	logger.Error("queue: job permanently failed", "type", env.Type, "attempts", attempts, "error", err)
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{Job: job, Err: err, FailedAt: time.Now(), Attempts: attempts})
	m.mu.Unlock()
}

// FailedJobs returns a copy of the permanently-failed job list.
func FailedJobs() []FailedJob {
	defaultManager.mu.RLock()
	defer defaultManager.mu.RUnlock()
	out := make([]FailedJob, len(defaultManager.failed))
	copy(out, defaultManager.failed)
	return out
}
