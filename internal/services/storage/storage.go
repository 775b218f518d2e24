// Package storage manages the shared temporary media root. Every file
// is keyed by the owning entity's identifier, so concurrent pipeline
// runs never write the same path. The naming layout is load-bearing:
// the download endpoint and the publish preconditions both resolve
// files by these keys.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MediaStore addresses pipeline artifacts by entity identifier
type MediaStore interface {
	// SourcePath returns the path for a downloaded source video
	SourcePath(videoUUID string) string

	// ClipPath returns the path for a processed clip file
	ClipPath(clipUUID string) string

	// ThumbnailPath returns the path for a clip's thumbnail
	ThumbnailPath(clipUUID string) string

	// OptimizedPath returns the path for a platform-optimized variant
	OptimizedPath(platform, clipUUID string) string

	// WorkPath returns a scratch path under the storage root
	WorkPath(name string) string

	// Promote moves a finished work file into place at destPath
	Promote(workPath, destPath string) error

	// Open opens a stored file for reading
	Open(path string) (io.ReadCloser, os.FileInfo, error)

	// Exists reports whether a stored file exists
	Exists(path string) bool

	// Remove deletes a stored file; missing files are not an error
	Remove(path string) error

	// RemoveClipArtifacts deletes a clip's output file, thumbnail, and
	// any platform-optimized variants
	RemoveClipArtifacts(clipUUID string) error

	// Root returns the storage root directory
	Root() string
}

// LocalMediaStore implements MediaStore on the local filesystem
type LocalMediaStore struct {
	basePath string
}

// NewLocalMediaStore creates a media store rooted at basePath
func NewLocalMediaStore(basePath string) (*LocalMediaStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	return &LocalMediaStore{basePath: absPath}, nil
}

// Root returns the storage root directory
func (s *LocalMediaStore) Root() string {
	return s.basePath
}

// SourcePath returns the path for a downloaded source video
func (s *LocalMediaStore) SourcePath(videoUUID string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s.mp4", videoUUID))
}

// ClipPath returns the path for a processed clip file
func (s *LocalMediaStore) ClipPath(clipUUID string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("clip_%s.mp4", clipUUID))
}

// ThumbnailPath returns the path for a clip's thumbnail
func (s *LocalMediaStore) ThumbnailPath(clipUUID string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("thumb_%s.jpg", clipUUID))
}

// OptimizedPath returns the path for a platform-optimized variant
func (s *LocalMediaStore) OptimizedPath(platform, clipUUID string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("optimized_%s_%s.mp4", strings.ToLower(platform), clipUUID))
}

// WorkPath returns a scratch path under the storage root
func (s *LocalMediaStore) WorkPath(name string) string {
	return filepath.Join(s.basePath, name)
}

// Promote moves a finished work file into place at destPath
func (s *LocalMediaStore) Promote(workPath, destPath string) error {
	if err := os.Rename(workPath, destPath); err != nil {
		// Rename can fail across filesystems; fall back to copy+delete
		if err := copyFile(workPath, destPath); err != nil {
			return fmt.Errorf("failed to promote file: %w", err)
		}
		_ = os.Remove(workPath)
	}
	return nil
}

// Open opens a stored file for reading
func (s *LocalMediaStore) Open(path string) (io.ReadCloser, os.FileInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("file not found: %s", filepath.Base(path))
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return file, info, nil
}

// Exists reports whether a stored file exists
func (s *LocalMediaStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes a stored file; missing files are not an error
func (s *LocalMediaStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// RemoveClipArtifacts deletes a clip's output file, thumbnail, and any
// platform-optimized variants
func (s *LocalMediaStore) RemoveClipArtifacts(clipUUID string) error {
	paths := []string{
		s.ClipPath(clipUUID),
		s.ThumbnailPath(clipUUID),
	}

	pattern := filepath.Join(s.basePath, fmt.Sprintf("optimized_*_%s.mp4", clipUUID))
	if optimized, err := filepath.Glob(pattern); err == nil {
		paths = append(paths, optimized...)
	}

	var firstErr error
	for _, path := range paths {
		if err := s.Remove(path); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	// Sync to ensure write is complete
	return destFile.Sync()
}
