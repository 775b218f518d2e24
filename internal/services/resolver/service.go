// Package resolver turns source video URLs into metadata and local
// files. Metadata comes from public Invidious instances, which expose
// the video API as plain JSON without bot detection. The stream URL
// resolved alongside the metadata is then fetched with the shared
// download client.
package resolver

import (
	"context"
	"log"
	"time"

	"github.com/killallgit/clipdeck-api/pkg/download"
)

// Options configures the resolver
type Options struct {
	MetadataInstances []string
	MetadataTimeout   time.Duration
	Download          download.DownloadOptions
}

// DefaultResolverOptions returns resolver defaults
func DefaultResolverOptions() Options {
	return Options{
		MetadataTimeout: 15 * time.Second,
		Download:        download.DefaultOptions(),
	}
}

// ResolverImpl implements Resolver
type ResolverImpl struct {
	metadata   *metadataClient
	downloader *download.Downloader
}

// New creates a new resolver
func New(options Options) *ResolverImpl {
	if options.MetadataTimeout == 0 {
		options.MetadataTimeout = 15 * time.Second
	}
	return &ResolverImpl{
		metadata:   newMetadataClient(options.MetadataInstances, options.MetadataTimeout),
		downloader: download.NewDownloader(options.Download),
	}
}

// ResolveInfo fetches metadata for a source video URL
func (r *ResolverImpl) ResolveInfo(ctx context.Context, sourceURL string) (*VideoInfo, error) {
	videoID, err := ExtractVideoID(sourceURL)
	if err != nil {
		return nil, &ResolutionError{URL: sourceURL, Err: err}
	}

	log.Printf("[DEBUG] Resolving metadata for video %s", videoID)

	info, err := r.metadata.fetch(ctx, videoID)
	if err != nil {
		return nil, &ResolutionError{URL: sourceURL, Err: err}
	}

	log.Printf("[INFO] Resolved video %s: %q (%ds)", videoID, info.Title, info.Duration)
	return info, nil
}

// Download fetches the video stream behind sourceURL into destPath
func (r *ResolverImpl) Download(ctx context.Context, sourceURL, destPath string) error {
	info, err := r.ResolveInfo(ctx, sourceURL)
	if err != nil {
		return err
	}

	result, err := r.downloader.DownloadToPath(ctx, info.StreamURL, destPath)
	if err != nil {
		return &DownloadError{URL: sourceURL, Err: err}
	}

	log.Printf("[INFO] Downloaded video %s (%d bytes)", info.VideoID, result.ContentLength)
	return nil
}

// Ensure interface compliance
var _ Resolver = (*ResolverImpl)(nil)
