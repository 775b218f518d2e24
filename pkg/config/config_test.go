package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/viper"
)

// resetForTest clears viper and the Init guard so each case starts clean
func resetForTest() {
	viper.Reset()
	once = sync.Once{}
	initErr = nil
	initialized = false
}

func TestConfig(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		cleanup func()
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name: "load from settings file",
			setup: func(t *testing.T) string {
				resetForTest()
				content := `
server:
  host: "127.0.0.1"
  port: 8081
database:
  path: "./test.db"
`
				path := filepath.Join(t.TempDir(), "settings.yaml")
				_ = os.WriteFile(path, []byte(content), 0644)
				return path
			},
			cleanup: func() { resetForTest() },
			wantErr: false,
			check: func(t *testing.T) {
				if GetInt("server.port") != 8081 {
					t.Errorf("Expected server.port to be 8081, got %d", GetInt("server.port"))
				}
			},
		},
		{
			name: "environment variable override",
			setup: func(t *testing.T) string {
				resetForTest()
				os.Setenv("CLIPDECK_SERVER_PORT", "9090")
				return ""
			},
			cleanup: func() {
				os.Unsetenv("CLIPDECK_SERVER_PORT")
				resetForTest()
			},
			wantErr: false,
			check: func(t *testing.T) {
				if GetInt("server.port") != 9090 {
					t.Errorf("Expected server.port to be overridden to 9090, got %d", GetInt("server.port"))
				}
			},
		},
		{
			name: "missing config file with defaults",
			setup: func(t *testing.T) string {
				resetForTest()
				return filepath.Join(t.TempDir(), "absent.yaml")
			},
			cleanup: func() { resetForTest() },
			wantErr: false,
			check: func(t *testing.T) {
				if GetInt("server.port") != 8080 {
					t.Errorf("Expected default server.port to be 8080, got %d", GetInt("server.port"))
				}
				if GetString("storage.temp_dir") != "./tmp" {
					t.Errorf("Expected default storage.temp_dir, got %s", GetString("storage.temp_dir"))
				}
				if !GetBool("automation.headless") {
					t.Error("Expected automation.headless to default to true")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			defer tt.cleanup()

			err := Init(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.check != nil && err == nil {
				tt.check(t)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Server: ServerConfig{
					Host: "localhost",
					Port: 8080,
				},
				Database: DatabaseConfig{
					Path: "./data/clipdeck.db",
				},
			},
			wantErr: false,
		},
		{
			name: "invalid port",
			config: &Config{
				Server: ServerConfig{
					Host: "localhost",
					Port: 0,
				},
			},
			wantErr: true,
		},
		{
			name: "zero workers auto-corrected",
			config: &Config{
				Server: ServerConfig{
					Host: "localhost",
					Port: 8080,
				},
				Processing: ProcessingConfig{Workers: 0},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
