package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Server       ServerConfig     `mapstructure:"server"`
	Database     DatabaseConfig   `mapstructure:"database"`
	Storage      StorageConfig    `mapstructure:"storage"`
	Processing   ProcessingConfig `mapstructure:"processing"`
	Download     DownloadConfig   `mapstructure:"download"`
	Automation   AutomationConfig `mapstructure:"automation"`
	Scheduler    SchedulerConfig  `mapstructure:"scheduler"`
	RateLimiting RateLimitConfig  `mapstructure:"rate_limiting"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path                  string        `mapstructure:"path"`
	MaxConnections        int           `mapstructure:"max_connections"`
	MaxIdleConnections    int           `mapstructure:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `mapstructure:"connection_max_lifetime"`
	Verbose               bool          `mapstructure:"verbose"`
}

// StorageConfig contains temporary media storage settings
type StorageConfig struct {
	TempDir         string        `mapstructure:"temp_dir"`
	MaxTempAge      time.Duration `mapstructure:"max_temp_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// ProcessingConfig contains transcode and worker settings
type ProcessingConfig struct {
	Workers       int           `mapstructure:"workers"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	JobTimeout    time.Duration `mapstructure:"job_timeout"`
	FFmpegPath    string        `mapstructure:"ffmpeg_path"`
	FFprobePath   string        `mapstructure:"ffprobe_path"`
	FFmpegTimeout time.Duration `mapstructure:"ffmpeg_timeout"`
}

// DownloadConfig contains source media download settings
type DownloadConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxSize         int64         `mapstructure:"max_size"`
	UserAgent       string        `mapstructure:"user_agent"`
	MetadataTimeout time.Duration `mapstructure:"metadata_timeout"`
}

// AutomationConfig contains browser automation settings
type AutomationConfig struct {
	Headless          bool          `mapstructure:"headless"`
	ViewportWidth     int           `mapstructure:"viewport_width"`
	ViewportHeight    int           `mapstructure:"viewport_height"`
	UserAgent         string        `mapstructure:"user_agent"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	LoginTimeout      time.Duration `mapstructure:"login_timeout"`
	UploadTimeout     time.Duration `mapstructure:"upload_timeout"`
	PublishTimeout    time.Duration `mapstructure:"publish_timeout"`
}

// SchedulerConfig contains scheduled-post dispatcher settings
type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DispatchSpec string `mapstructure:"dispatch_spec"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled   bool           `mapstructure:"enabled"`
	Endpoints map[string]int `mapstructure:"endpoints"`
}
