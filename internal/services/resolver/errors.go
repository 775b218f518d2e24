package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedURL indicates the source URL is not a recognized video URL
	ErrUnsupportedURL = errors.New("unsupported video URL")

	// ErrVideoUnavailable indicates no metadata instance could resolve the video
	ErrVideoUnavailable = errors.New("video unavailable")
)

// ResolutionError wraps a metadata resolution failure with the URL that caused it
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// DownloadError wraps a stream download failure
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
