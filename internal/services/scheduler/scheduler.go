// Package scheduler promotes due scheduled posts on a cron cadence.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/killallgit/clipdeck-api/internal/services/posts"
	"github.com/robfig/cron/v3"
)

// DefaultDispatchSpec fires at the top of every minute
const DefaultDispatchSpec = "0 * * * * *"

// Scheduler runs the scheduled-post dispatcher
type Scheduler struct {
	cron        *cron.Cron
	postService posts.Service
	spec        string
}

// New creates a scheduler. An empty spec uses the default cadence.
func New(postService posts.Service, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultDispatchSpec
	}
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		postService: postService,
		spec:        spec,
	}
}

// Start registers the dispatch job and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return fmt.Errorf("failed to register dispatch job: %w", err)
	}

	s.cron.Start()
	log.Printf("[INFO] Scheduled post dispatcher started (spec %q)", s.spec)
	return nil
}

// Stop halts the cron loop and waits for a running tick to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Printf("[INFO] Scheduled post dispatcher stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.postService.DispatchDue(ctx, time.Now()); err != nil {
		log.Printf("[ERROR] Scheduled post dispatch failed: %v", err)
	}
}
