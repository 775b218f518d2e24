package workers

import "sync"

// inflightRegistry tracks entity identifiers with a run in progress so
// two workers never process the same clip or post at once. The job
// queue already claims jobs atomically; this guards against duplicate
// jobs for the same entity slipping through.
type inflightRegistry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{active: make(map[string]struct{})}
}

// TryAcquire marks the key as in flight. Returns false if it already is.
func (r *inflightRegistry) TryAcquire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.active[key]; exists {
		return false
	}
	r.active[key] = struct{}{}
	return true
}

// Release clears the key
func (r *inflightRegistry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, key)
}
