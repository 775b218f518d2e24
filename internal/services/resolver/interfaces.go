package resolver

import "context"

// VideoInfo holds the resolved metadata for a source video
type VideoInfo struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Duration     int    `json:"duration"`
	ThumbnailURL string `json:"thumbnail_url"`
	StreamURL    string `json:"-"`
}

// Resolver resolves source video URLs to metadata and local files
type Resolver interface {
	// ResolveInfo fetches metadata for a source video URL
	ResolveInfo(ctx context.Context, sourceURL string) (*VideoInfo, error)

	// Download fetches the video stream behind sourceURL into destPath.
	// destPath is either a complete file or absent when Download returns.
	Download(ctx context.Context, sourceURL, destPath string) error
}
