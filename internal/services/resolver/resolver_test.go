package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch form", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch with extra params", "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts form", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed form", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"wrong host", "https://vimeo.com/123456", "", true},
		{"bad id length", "https://youtu.be/short", "", true},
		{"no id", "https://www.youtube.com/watch", "", true},
		{"not a url", "://broken", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnsupportedURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// fakeInstance serves the Invidious video API shape for one video
func fakeInstance(t *testing.T, streamURL string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/videos/dQw4w9WgXcQ" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"title": "Test Video",
			"description": "A test",
			"lengthSeconds": 212,
			"videoThumbnails": [
				{"quality": "maxres", "url": "https://img.example/maxres.jpg"},
				{"quality": "medium", "url": "https://img.example/medium.jpg"}
			],
			"formatStreams": [
				{"url": "` + streamURL + `", "type": "video/mp4; codecs=\"avc1, mp4a\""}
			],
			"adaptiveFormats": []
		}`))
	}))
}

func TestResolveInfo(t *testing.T) {
	instance := fakeInstance(t, "https://stream.example/video.mp4")
	defer instance.Close()

	options := DefaultResolverOptions()
	options.MetadataInstances = []string{instance.URL}
	resolver := New(options)

	info, err := resolver.ResolveInfo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", info.VideoID)
	assert.Equal(t, "Test Video", info.Title)
	assert.Equal(t, "A test", info.Description)
	assert.Equal(t, 212, info.Duration)
	assert.Equal(t, "https://img.example/medium.jpg", info.ThumbnailURL)
	assert.Equal(t, "https://stream.example/video.mp4", info.StreamURL)
}

func TestResolveInfo_InstanceFallback(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer dead.Close()

	live := fakeInstance(t, "https://stream.example/video.mp4")
	defer live.Close()

	options := DefaultResolverOptions()
	options.MetadataInstances = []string{dead.URL, live.URL}
	resolver := New(options)

	info, err := resolver.ResolveInfo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Test Video", info.Title)
}

func TestResolveInfo_AllInstancesDown(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer dead.Close()

	options := DefaultResolverOptions()
	options.MetadataInstances = []string{dead.URL}
	options.MetadataTimeout = 2 * time.Second
	resolver := New(options)

	_, err := resolver.ResolveInfo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.ErrorIs(t, err, ErrVideoUnavailable)
}

func TestResolveInfo_UnsupportedURL(t *testing.T) {
	resolver := New(DefaultResolverOptions())

	_, err := resolver.ResolveInfo(context.Background(), "https://example.com/video.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestDownload(t *testing.T) {
	stream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("stream-bytes"))
	}))
	defer stream.Close()

	instance := fakeInstance(t, stream.URL)
	defer instance.Close()

	options := DefaultResolverOptions()
	options.MetadataInstances = []string{instance.URL}
	resolver := New(options)

	destPath := filepath.Join(t.TempDir(), "source.mp4")
	err := resolver.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", destPath)
	require.NoError(t, err)

	data, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, "stream-bytes", string(data))
}

func TestDownload_StreamFailure(t *testing.T) {
	stream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer stream.Close()

	instance := fakeInstance(t, stream.URL)
	defer instance.Close()

	options := DefaultResolverOptions()
	options.MetadataInstances = []string{instance.URL}
	resolver := New(options)

	destPath := filepath.Join(t.TempDir(), "source.mp4")
	err := resolver.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", destPath)
	require.Error(t, err)

	var dlErr *DownloadError
	assert.True(t, errors.As(err, &dlErr))

	_, statErr := os.Stat(destPath)
	assert.True(t, os.IsNotExist(statErr))
}
