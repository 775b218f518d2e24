package workers

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/jobs"
	"github.com/killallgit/clipdeck-api/internal/services/storage"
)

// Transient file prefixes eligible for age-based removal. Final clip
// outputs and source videos are owned by their database records and
// only removed through entity deletion.
var transientPrefixes = []string{"trim_", "optimized_"}

// CleanupProcessor sweeps stale transient files from the media root
// and prunes old finished jobs.
type CleanupProcessor struct {
	jobService    jobs.Service
	store         storage.MediaStore
	retentionDays int
}

// NewCleanupProcessor creates a cleanup processor
func NewCleanupProcessor(jobService jobs.Service, store storage.MediaStore, retentionDays int) *CleanupProcessor {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	return &CleanupProcessor{
		jobService:    jobService,
		store:         store,
		retentionDays: retentionDays,
	}
}

func (p *CleanupProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeTempCleanup
}

func (p *CleanupProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	if !p.CanProcess(job.Type) {
		return fmt.Errorf("unsupported job type: %s", job.Type)
	}

	maxAge := 24 * time.Hour
	if seconds, ok := job.Payload["max_age_seconds"].(float64); ok && seconds > 0 {
		maxAge = time.Duration(seconds) * time.Second
	}

	removed := p.sweepFiles(maxAge)

	prunedJobs, err := p.jobService.CleanupOldJobs(ctx, p.retentionDays)
	if err != nil {
		log.Printf("[WARN] Failed to prune old jobs: %v", err)
	}

	result := models.JobResult{
		"files_removed": removed,
		"jobs_pruned":   prunedJobs,
	}
	if err := p.jobService.CompleteJob(ctx, job.ID, result); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	log.Printf("[INFO] Cleanup swept %d stale files, pruned %d old jobs", removed, prunedJobs)
	return nil
}

// sweepFiles removes transient files older than maxAge, including
// partial downloads
func (p *CleanupProcessor) sweepFiles(maxAge time.Duration) int {
	entries, err := os.ReadDir(p.store.Root())
	if err != nil {
		log.Printf("[ERROR] Cleanup failed to read media root: %v", err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isTransient(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(p.store.Root(), name)
		if err := os.Remove(path); err != nil {
			log.Printf("[WARN] Failed to remove stale file %s: %v", path, err)
			continue
		}
		log.Printf("[DEBUG] Removed stale file %s", path)
		removed++
	}

	return removed
}

func isTransient(name string) bool {
	if strings.HasSuffix(name, ".part") {
		return true
	}
	for _, prefix := range transientPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
