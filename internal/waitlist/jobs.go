package waitlist

import (
	"context"
	"log"
	"time"
)

// JobProcessor runs the expiry sweeper in the background
type JobProcessor struct {
	service  Service
	interval time.Duration
	done     chan struct{}
}

// NewJobProcessor creates a new job processor. interval <= 0 falls back to
// a daily sweep.
func NewJobProcessor(service Service, interval time.Duration) *JobProcessor {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &JobProcessor{
		service:  service,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start starts the background sweeper
func (jp *JobProcessor) Start(ctx context.Context) {
	log.Printf("Starting waitlist expiry sweeper with %v interval", jp.interval)
	go jp.runSweeper(ctx)
}

// Stop stops the background sweeper
func (jp *JobProcessor) Stop() {
	log.Println("Stopping waitlist expiry sweeper...")
	close(jp.done)
}

func (jp *JobProcessor) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(jp.interval)
	defer ticker.Stop()

	// Run once at startup so a restart doesn't postpone overdue sweeps by
	// a full interval.
	jp.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			jp.sweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) sweep(ctx context.Context) {
	if err := jp.service.Sweep(ctx); err != nil {
		log.Printf("Error sweeping lapsed promotions: %v", err)
	}
}
