package download

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DownloadOptions configures the download behavior
type DownloadOptions struct {
	MaxSize       int64         // Maximum file size in bytes (0 = no limit)
	Timeout       time.Duration // Download timeout
	ProgressFunc  ProgressFunc  // Optional progress callback
	UserAgent     string        // User agent string
	ValidateVideo bool          // Validate content-type is video
}

// ProgressFunc is called during download to report progress
type ProgressFunc func(downloaded, total int64)

// DefaultOptions returns default download options
func DefaultOptions() DownloadOptions {
	return DownloadOptions{
		MaxSize:       2 * 1024 * 1024 * 1024, // 2GB default max
		Timeout:       10 * time.Minute,
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ValidateVideo: true,
	}
}

// DownloadResult contains information about a successful download
type DownloadResult struct {
	FilePath      string // Path to downloaded file
	ContentType   string // Content-Type from response
	ContentLength int64  // Size in bytes
}

// Downloader streams media files to local storage
type Downloader struct {
	client  *http.Client
	options DownloadOptions
}

// NewDownloader creates a new downloader with the given options
func NewDownloader(options DownloadOptions) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true, // Don't compress media
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		options: options,
	}
}

// DownloadToPath streams a URL to destPath. The data is written to a
// partial file first and renamed into place on success, so destPath is
// either a complete file or absent.
func (d *Downloader) DownloadToPath(ctx context.Context, url, destPath string) (*DownloadResult, error) {
	log.Printf("[DEBUG] Starting download from %s to %s", url, destPath)

	// Create request
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("User-Agent", d.options.UserAgent)
	req.Header.Set("Accept", "video/*,*/*")

	// Execute request
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	// Check status code
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	// Validate content type if required
	contentType := resp.Header.Get("Content-Type")
	if d.options.ValidateVideo && !isVideoContentType(contentType) {
		return nil, fmt.Errorf("invalid content type: %s", contentType)
	}

	// Check content length
	contentLength := resp.ContentLength
	if d.options.MaxSize > 0 && contentLength > d.options.MaxSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", contentLength, d.options.MaxSize)
	}

	if dir := filepath.Dir(destPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create destination directory: %w", err)
		}
	}

	partPath := destPath + ".part"
	partFile, err := os.Create(partPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create partial file: %w", err)
	}

	written, err := d.downloadToFile(resp.Body, partFile, contentLength)
	closeErr := partFile.Close()

	if err != nil || closeErr != nil {
		os.Remove(partPath)
		if err == nil {
			err = closeErr
		}
		return nil, fmt.Errorf("failed to download: %w", err)
	}

	// Partial reads against a known length are failures, not results
	if contentLength > 0 && written < contentLength {
		os.Remove(partPath)
		return nil, fmt.Errorf("incomplete download: %d of %d bytes", written, contentLength)
	}

	if err := os.Rename(partPath, destPath); err != nil {
		os.Remove(partPath)
		return nil, fmt.Errorf("failed to finalize download: %w", err)
	}

	log.Printf("[DEBUG] Downloaded %d bytes to %s", written, destPath)

	return &DownloadResult{
		FilePath:      destPath,
		ContentType:   contentType,
		ContentLength: written,
	}, nil
}

// downloadToFile downloads response body to file with optional progress tracking
func (d *Downloader) downloadToFile(src io.Reader, dst *os.File, totalSize int64) (int64, error) {
	// Create progress reader if callback provided
	reader := src
	if d.options.ProgressFunc != nil && totalSize > 0 {
		reader = &progressReader{
			reader:   src,
			total:    totalSize,
			callback: d.options.ProgressFunc,
		}
	}

	// Copy with size limit if configured
	if d.options.MaxSize > 0 {
		reader = &io.LimitedReader{
			R: reader,
			N: d.options.MaxSize,
		}
	}

	// Copy to file
	return io.Copy(dst, reader)
}

// CleanupTempFile removes a temporary file
func CleanupTempFile(path string) error {
	if path == "" {
		return nil
	}

	log.Printf("[DEBUG] Cleaning up temp file: %s", path)
	return os.Remove(path)
}

// CleanupOldTempFiles removes files in tempDir older than the specified duration
func CleanupOldTempFiles(tempDir string, maxAge time.Duration) error {
	pattern := filepath.Join(tempDir, "*")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	var removed int

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err == nil {
				removed++
			}
		}
	}

	if removed > 0 {
		log.Printf("[DEBUG] Cleaned up %d old temp files", removed)
	}

	return nil
}

// isVideoContentType checks if content type is video
func isVideoContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.HasPrefix(contentType, "video/") ||
		contentType == "application/octet-stream" // Some servers use this for media
}

// progressReader wraps a reader to report progress
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	callback   ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.downloaded += int64(n)
		if pr.callback != nil {
			pr.callback(pr.downloaded, pr.total)
		}
	}
	return n, err
}
