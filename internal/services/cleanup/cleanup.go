// Package cleanup schedules the periodic sweep of the media root. The
// sweep itself runs as a queued job so it shares the worker pool's
// claim semantics and shows up in the job history like any other work.
package cleanup

import (
	"context"
	"log"
	"time"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/jobs"
)

// Service enqueues temp cleanup jobs on an interval
type Service struct {
	jobService jobs.Service
	maxAge     time.Duration
	interval   time.Duration
	cancel     context.CancelFunc
}

// NewService creates a new cleanup service
func NewService(jobService jobs.Service, maxAge, interval time.Duration) *Service {
	return &Service{
		jobService: jobService,
		maxAge:     maxAge,
		interval:   interval,
	}
}

// Start begins the cleanup schedule
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	// Sweep once at startup to clear leftovers from a previous run
	s.enqueue(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.enqueue(ctx)
			case <-ctx.Done():
				log.Println("[INFO] Cleanup service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Cleanup service started (interval: %v, max age: %v)", s.interval, s.maxAge)
}

// Stop stops the cleanup schedule
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service) enqueue(ctx context.Context) {
	payload := models.JobPayload{
		"scope":           "temp_files",
		"max_age_seconds": int(s.maxAge.Seconds()),
	}

	if _, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypeTempCleanup, payload, "scope"); err != nil {
		log.Printf("[ERROR] Failed to enqueue cleanup job: %v", err)
	}
}
