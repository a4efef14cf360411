// Package scheduler runs background order imports for linked shops.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Order Import Job Types
// ---------------------------------------------------------------------------

// OrderImportJobStatus represents the status of an order import job
type OrderImportJobStatus string

const (
	OrderImportJobStatusPending OrderImportJobStatus = "PENDING"
	OrderImportJobStatusRunning OrderImportJobStatus = "RUNNING"
	OrderImportJobStatusSuccess OrderImportJobStatus = "SUCCESS"
	OrderImportJobStatusPartial OrderImportJobStatus = "PARTIAL"
	OrderImportJobStatusFailed  OrderImportJobStatus = "FAILED"
)

// maxRetryDelay caps the exponential backoff between retries
const maxRetryDelay = 30 * time.Minute

// OrderImportJob pulls one shop's recent orders into the local store
type OrderImportJob struct {
	ID          uuid.UUID
	ShopID      uuid.UUID
	OwnerID     uuid.UUID
	Status      OrderImportJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	Pages    int
	Imported int
}

// NewOrderImportJob creates a pending import job for a shop
func NewOrderImportJob(shopID, ownerID uuid.UUID, maxRetries int) *OrderImportJob {
	return &OrderImportJob{
		ID:         uuid.New(),
		ShopID:     shopID,
		OwnerID:    ownerID,
		Status:     OrderImportJobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *OrderImportJob) Start() {
	now := time.Now()
	j.Status = OrderImportJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the import totals. A job cut short after at least one
// page is PARTIAL.
func (j *OrderImportJob) Complete(pages, imported int, cutShort error) {
	now := time.Now()
	j.Pages = pages
	j.Imported = imported
	j.CompletedAt = &now

	switch {
	case cutShort == nil:
		j.Status = OrderImportJobStatusSuccess
	case pages > 0:
		j.Status = OrderImportJobStatusPartial
		j.Error = cutShort.Error()
	default:
		j.Status = OrderImportJobStatusFailed
		j.Error = cutShort.Error()
	}
}

// Fail marks the job as failed
func (j *OrderImportJob) Fail(err string) {
	now := time.Now()
	j.Status = OrderImportJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *OrderImportJob) ShouldRetry() bool {
	return j.Status == OrderImportJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry moves the job back to pending with exponential backoff and
// returns the delay until it may run again.
func (j *OrderImportJob) ScheduleRetry(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	j.Status = OrderImportJobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	next := time.Now().Add(delay)
	j.NextRetryAt = &next
	return delay
}

// ---------------------------------------------------------------------------
// OrderImportExecutor Interface
// ---------------------------------------------------------------------------

// OrderImportExecutor runs a single import job and fills in its totals
type OrderImportExecutor interface {
	Execute(ctx context.Context, job *OrderImportJob) error
}

// ---------------------------------------------------------------------------
// OrderImportSchedulerConfig
// ---------------------------------------------------------------------------

// OrderImportSchedulerConfig holds configuration for the import worker pool
type OrderImportSchedulerConfig struct {
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	// RetryDelay is the base delay, doubled per attempt
	RetryDelay time.Duration
	QueueSize  int
	MaxHistory int
}

// DefaultOrderImportSchedulerConfig returns default configuration
func DefaultOrderImportSchedulerConfig() OrderImportSchedulerConfig {
	return OrderImportSchedulerConfig{
		MaxConcurrentJobs: 4,
		JobTimeout:        10 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        time.Minute,
		QueueSize:         100,
		MaxHistory:        100,
	}
}

// Validate validates the configuration
func (c *OrderImportSchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 || c.MaxHistory < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// OrderImportScheduler
// ---------------------------------------------------------------------------

// OrderImportScheduler runs import jobs on a fixed pool of workers. A shop has
// at most one queued or running job at a time.
type OrderImportScheduler struct {
	config   OrderImportSchedulerConfig
	executor OrderImportExecutor
	logger   *zap.Logger

	jobs      chan *OrderImportJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  map[uuid.UUID]uuid.UUID
	retries   map[uuid.UUID]*time.Timer

	historyMu sync.RWMutex
	history   []*OrderImportJob
}

// NewOrderImportScheduler creates a new order import scheduler
func NewOrderImportScheduler(config OrderImportSchedulerConfig, executor OrderImportExecutor, logger *zap.Logger) (*OrderImportScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &OrderImportScheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *OrderImportJob, config.QueueSize),
		inFlight: make(map[uuid.UUID]uuid.UUID),
		retries:  make(map[uuid.UUID]*time.Timer),
		history:  make([]*OrderImportJob, 0, config.MaxHistory),
	}, nil
}

// Start starts the worker pool
func (s *OrderImportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Order import scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for the workers to exit
func (s *OrderImportScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	for id, timer := range s.retries {
		timer.Stop()
		delete(s.retries, id)
	}
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Order import scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Order import scheduler stop timed out")
		return ctx.Err()
	}
}

// ScheduleImport queues an import for a shop
func (s *OrderImportScheduler) ScheduleImport(shopID, ownerID uuid.UUID) error {
	return s.SubmitJob(NewOrderImportJob(shopID, ownerID, s.config.RetryAttempts))
}

// SubmitJob queues a job. It fails when the shop already has a job in flight.
func (s *OrderImportScheduler) SubmitJob(job *OrderImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	if _, busy := s.inFlight[job.ShopID]; busy {
		return ErrImportAlreadyQueued
	}

	select {
	case s.jobs <- job:
		s.inFlight[job.ShopID] = job.ID
		s.logger.Debug("Order import job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("shop_id", job.ShopID.String()),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// InFlight reports whether the shop has a queued, running or retrying job
func (s *OrderImportScheduler) InFlight(shopID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[shopID]
	return ok
}

func (s *OrderImportScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *OrderImportScheduler) processJob(ctx context.Context, job *OrderImportJob, workerID int) {
	job.Start()
	fields := []zap.Field{
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("shop_id", job.ShopID.String()),
	}
	s.logger.Info("Processing order import job", fields...)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := s.executor.Execute(jobCtx, job); err != nil {
		job.Fail(err.Error())
		s.logger.Error("Order import job failed", append(fields, zap.Error(err))...)

		if ctx.Err() == nil && job.ShouldRetry() {
			s.addToHistory(job)
			s.retry(job)
			return
		}
		s.finish(job)
		return
	}

	s.logger.Info("Order import job completed", append(fields,
		zap.String("status", string(job.Status)),
		zap.Int("pages", job.Pages),
		zap.Int("imported", job.Imported),
	)...)
	s.finish(job)
}

// retry re-queues the job once its backoff elapses. The shop stays in flight
// meanwhile so the trigger does not queue a duplicate.
func (s *OrderImportScheduler) retry(job *OrderImportJob) {
	delay := job.ScheduleRetry(s.config.RetryDelay)
	s.logger.Info("Order import job scheduled for retry",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Duration("delay", delay),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		delete(s.inFlight, job.ShopID)
		return
	}
	s.retries[job.ID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.retries, job.ID)
		if !s.isRunning {
			delete(s.inFlight, job.ShopID)
			return
		}
		select {
		case s.jobs <- job:
		default:
			delete(s.inFlight, job.ShopID)
			s.logger.Warn("Failed to re-queue order import job for retry",
				zap.String("job_id", job.ID.String()),
			)
		}
	})
}

func (s *OrderImportScheduler) finish(job *OrderImportJob) {
	s.addToHistory(job)
	s.mu.Lock()
	if s.inFlight[job.ShopID] == job.ID {
		delete(s.inFlight, job.ShopID)
	}
	s.mu.Unlock()
}

func (s *OrderImportScheduler) addToHistory(job *OrderImportJob) {
	if s.config.MaxHistory == 0 {
		return
	}
	snapshot := *job

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*OrderImportJob{&snapshot}, s.history...)
	if len(s.history) > s.config.MaxHistory {
		s.history = s.history[:s.config.MaxHistory]
	}
}

// JobHistory returns the most recent job outcomes, newest first
func (s *OrderImportScheduler) JobHistory(limit int) []*OrderImportJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]*OrderImportJob, limit)
	copy(result, s.history[:limit])
	return result
}

// JobHistoryByShop returns recent job outcomes for one shop, newest first
func (s *OrderImportScheduler) JobHistoryByShop(shopID uuid.UUID, limit int) []*OrderImportJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	result := make([]*OrderImportJob, 0)
	for _, job := range s.history {
		if job.ShopID != shopID {
			continue
		}
		result = append(result, job)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}
