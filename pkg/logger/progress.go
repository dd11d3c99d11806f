package logger

import "time"

// ProgressTracker logs progress of a long-running phase at fixed record
// intervals. The matching tiers update it once per processed record.
type ProgressTracker struct {
	logger    Logger
	operation string
	total     int
	current   int
	interval  int
	startTime time.Time
}

// NewProgressTracker creates a tracker for an operation over total records.
// A log line is emitted every interval records; interval <= 0 disables
// intermediate logging and only the completion line is written.
func NewProgressTracker(log Logger, operation string, total, interval int) *ProgressTracker {
	if log == nil {
		log = GetGlobalLogger()
	}

	return &ProgressTracker{
		logger:    log.WithComponent("progress"),
		operation: operation,
		total:     total,
		interval:  interval,
		startTime: time.Now(),
	}
}

// Increment advances the counter by one record
func (p *ProgressTracker) Increment() {
	p.current++

	if p.interval > 0 && p.current%p.interval == 0 && p.current < p.total {
		p.logger.WithFields(Fields{
			"operation": p.operation,
			"processed": p.current,
			"total":     p.total,
		}).Infof("%s: %d/%d records", p.operation, p.current, p.total)
	}
}

// Complete logs the final state of the operation
func (p *ProgressTracker) Complete() {
	p.logger.WithFields(Fields{
		"operation": p.operation,
		"processed": p.current,
		"total":     p.total,
		"elapsed":   time.Since(p.startTime).String(),
	}).Infof("%s completed", p.operation)
}
