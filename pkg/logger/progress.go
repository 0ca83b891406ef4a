package logger

import (
	"fmt"
	"sync"
	"time"
)

// ProgressReporter logs fetch progress at most once per interval, plus
// always on completion. Report matches the fetcher's progress callback.
type ProgressReporter struct {
	mu         sync.Mutex
	interval   time.Duration
	startTime  time.Time
	lastUpdate time.Time
	logger     *Logger
}

func NewProgressReporter(interval time.Duration) *ProgressReporter {
	now := time.Now()
	return &ProgressReporter{
		interval:   interval,
		startTime:  now,
		lastUpdate: now.Add(-interval),
		logger:     GetLogger().WithField("component", "progress"),
	}
}

func (pr *ProgressReporter) Report(current, total int, message string) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	now := time.Now()
	if now.Sub(pr.lastUpdate) < pr.interval && current < total {
		return
	}
	pr.lastUpdate = now

	var percentage float64
	if total > 0 {
		percentage = float64(current) / float64(total) * 100
	}

	var eta string
	elapsed := now.Sub(pr.startTime)
	if current > 0 && current < total {
		remaining := time.Duration(total-current) * (elapsed / time.Duration(current))
		eta = fmt.Sprintf(" (ETA: %s)", remaining.Round(time.Second))
	}

	pr.logger.WithFields(map[string]interface{}{
		"current": current,
		"total":   total,
		"elapsed": elapsed.Round(time.Second).String(),
	}).Info(fmt.Sprintf("%s: %d/%d (%.1f%%)%s", message, current, total, percentage, eta))
}
