package automator

import (
	"fmt"

	"github.com/killallgit/clipdeck-api/internal/models"
)

// Registry maps platforms to their publishers
type Registry struct {
	publishers map[models.Platform]Publisher
}

// NewRegistry creates a registry with all built-in publishers
func NewRegistry() *Registry {
	r := &Registry{publishers: make(map[models.Platform]Publisher)}
	r.Register(NewTikTokPublisher())
	r.Register(NewInstagramPublisher())
	r.Register(NewYouTubePublisher())
	return r
}

// Register adds a publisher, replacing any existing one for its platform
func (r *Registry) Register(p Publisher) {
	r.publishers[p.Platform()] = p
}

// Get returns the publisher for a platform
func (r *Registry) Get(platform models.Platform) (Publisher, error) {
	p, ok := r.publishers[platform]
	if !ok {
		return nil, fmt.Errorf("no publisher registered for platform %s", platform)
	}
	return p, nil
}

// Platforms lists the registered platforms
func (r *Registry) Platforms() []models.Platform {
	platforms := make([]models.Platform, 0, len(r.publishers))
	for platform := range r.publishers {
		platforms = append(platforms, platform)
	}
	return platforms
}
