// Package models defines the persistent entities of the clip
// publishing pipeline: source videos, their derived clips, social
// account bindings, publish attempts, and the background job queue
// that drives processing.
package models

// AllModels returns every model registered for auto-migration,
// ordered so foreign key targets are created first.
func AllModels() []interface{} {
	return []interface{}{
		&SourceVideo{},
		&Clip{},
		&SocialAccount{},
		&Post{},
		&Job{},
	}
}
