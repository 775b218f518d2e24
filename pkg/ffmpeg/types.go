package ffmpeg

// VideoMetadata represents metadata extracted from a video file
type VideoMetadata struct {
	Duration float64 `json:"duration"` // Duration in seconds
	Width    int     `json:"width"`    // Frame width in pixels
	Height   int     `json:"height"`   // Frame height in pixels
	Format   string  `json:"format"`   // Container format (mp4, webm, etc.)
	Codec    string  `json:"codec"`    // Video codec
	Size     int64   `json:"size"`     // File size in bytes
	Bitrate  int     `json:"bitrate"`  // Bitrate in bits per second
}
