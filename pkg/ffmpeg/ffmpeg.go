package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// FFmpeg wraps ffmpeg and ffprobe functionality for video transcoding
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// New creates a new FFmpeg instance
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	// Check ffmpeg
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}

	// Check ffprobe
	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}

	return nil
}

// encodeArgs are the codec flags shared by every operation: H.264/AAC,
// fast preset over compression, moov atom at stream start for
// progressive playback.
func encodeArgs() []string {
	return []string{
		"-c:v", "libx264",
		"-c:a", "aac",
		"-preset", "fast",
		"-crf", "23",
		"-movflags", "+faststart",
	}
}

// TrimArgs builds the argument list for extracting [start, end) seconds.
// The seek flag comes before the input (seek-then-duration), so ffmpeg
// jumps to the keyframe and decodes only the requested window.
func TrimArgs(input string, start, end float64, output string) []string {
	args := []string{
		"-ss", formatSeconds(start),
		"-i", input,
		"-t", formatSeconds(end - start),
	}
	args = append(args, encodeArgs()...)
	return append(args, "-y", output)
}

// Trim extracts the [start, end) range of the input into output
func (f *FFmpeg) Trim(ctx context.Context, input string, start, end float64, output string) error {
	if end <= start {
		return NewProcessingError("trim", input,
			fmt.Errorf("invalid range: start %.2f, end %.2f", start, end), "")
	}
	return f.run(ctx, "trim", input, TrimArgs(input, start, end, output))
}

// ThumbnailArgs builds the argument list for a single still frame taken
// at 10% of the clip's elapsed time, scaled to a fixed small raster.
func ThumbnailArgs(input string, clipDuration float64, output string) []string {
	offset := clipDuration * 0.1
	return []string{
		"-ss", formatSeconds(offset),
		"-i", input,
		"-vframes", "1",
		"-vf", "scale=320:240",
		"-y", output,
	}
}

// Thumbnail extracts a still frame from the clip into output
func (f *FFmpeg) Thumbnail(ctx context.Context, input string, clipDuration float64, output string) error {
	return f.run(ctx, "thumbnail", input, ThumbnailArgs(input, clipDuration, output))
}

// OptimizeArgs builds the argument list for re-encoding to a fixed
// platform geometry. The input is scaled to fit and padded to the exact
// raster so the aspect ratio is always honored.
func OptimizeArgs(input string, width, height int, aspect, output string) []string {
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		width, height, width, height,
	)
	args := []string{
		"-i", input,
		"-vf", filter,
		"-aspect", aspect,
	}
	args = append(args, encodeArgs()...)
	return append(args, "-y", output)
}

// Optimize re-encodes the input to the given platform geometry
func (f *FFmpeg) Optimize(ctx context.Context, input string, width, height int, aspect, output string) error {
	return f.run(ctx, "optimize", input, OptimizeArgs(input, width, height, aspect, output))
}

// run executes ffmpeg with the given args under the configured timeout
func (f *FFmpeg) run(ctx context.Context, operation, input string, args []string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if dir := filepath.Dir(args[len(args)-1]); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return NewProcessingError(operation, input, err, "")
		}
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return NewProcessingError(operation, input, ErrProcessingTimeout, stderr.String())
		}
		return NewProcessingError(operation, input, err, stderr.String())
	}

	return nil
}

// formatSeconds renders a seconds value the way ffmpeg expects it
func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
