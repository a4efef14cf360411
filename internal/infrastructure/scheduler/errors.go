package scheduler

import "errors"

var (
	ErrSchedulerNotRunning = errors.New("order import scheduler is not running")
	ErrJobQueueFull        = errors.New("order import queue is full")
	ErrInvalidConfig       = errors.New("invalid order import scheduler configuration")

	// ErrImportAlreadyQueued means the shop already has an import pending or running
	ErrImportAlreadyQueued = errors.New("order import already queued for this shop")

	// ErrImportFailed wraps the error a shop adapter reported while importing
	ErrImportFailed = errors.New("order import failed")
)
