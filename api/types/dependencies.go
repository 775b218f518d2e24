package types

import (
	"github.com/killallgit/clipdeck-api/internal/database"
	"github.com/killallgit/clipdeck-api/internal/services/accounts"
	"github.com/killallgit/clipdeck-api/internal/services/clips"
	"github.com/killallgit/clipdeck-api/internal/services/jobs"
	"github.com/killallgit/clipdeck-api/internal/services/posts"
	"github.com/killallgit/clipdeck-api/internal/services/videos"
	"github.com/killallgit/clipdeck-api/internal/services/workers"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB             *database.DB
	VideoService   videos.Service
	ClipService    clips.Service
	AccountService accounts.Service
	PostService    posts.Service
	JobService     jobs.Service
	WorkerPool     *workers.WorkerPool
}
