package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultMetadataInstances lists public Invidious instances used for
// metadata resolution. Instances come and go; resolution walks the list
// until one answers.
var DefaultMetadataInstances = []string{
	"https://invidious.fdn.fr",
	"https://invidious.privacydev.net",
	"https://inv.tux.pizza",
	"https://yt.artemislena.eu",
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID parses the 11-character video identifier out of the
// common YouTube URL forms: watch, shorts, embed, and youtu.be links.
func ExtractVideoID(sourceURL string) (string, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return "", ErrUnsupportedURL
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	var id string
	switch host {
	case "youtube.com", "m.youtube.com":
		switch {
		case parsed.Path == "/watch":
			id = parsed.Query().Get("v")
		case strings.HasPrefix(parsed.Path, "/shorts/"):
			id = strings.TrimPrefix(parsed.Path, "/shorts/")
		case strings.HasPrefix(parsed.Path, "/embed/"):
			id = strings.TrimPrefix(parsed.Path, "/embed/")
		}
	case "youtu.be":
		id = strings.TrimPrefix(parsed.Path, "/")
	}

	id = strings.TrimSuffix(id, "/")
	if !videoIDPattern.MatchString(id) {
		return "", ErrUnsupportedURL
	}
	return id, nil
}

// videoResponse is the subset of the Invidious video API we consume
type videoResponse struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	LengthSeconds int    `json:"lengthSeconds"`
	Thumbnails    []struct {
		Quality string `json:"quality"`
		URL     string `json:"url"`
	} `json:"videoThumbnails"`
	AdaptiveFormats []struct {
		URL  string `json:"url"`
		Type string `json:"type"`
	} `json:"adaptiveFormats"`
	FormatStreams []struct {
		URL  string `json:"url"`
		Type string `json:"type"`
	} `json:"formatStreams"`
}

// metadataClient resolves video metadata through Invidious instances
type metadataClient struct {
	instances []string
	client    *http.Client
}

func newMetadataClient(instances []string, timeout time.Duration) *metadataClient {
	if len(instances) == 0 {
		instances = DefaultMetadataInstances
	}
	return &metadataClient{
		instances: instances,
		client:    &http.Client{Timeout: timeout},
	}
}

// fetch queries each instance in turn until one returns usable metadata
func (m *metadataClient) fetch(ctx context.Context, videoID string) (*VideoInfo, error) {
	var lastErr error

	for _, instance := range m.instances {
		info, err := m.fetchFrom(ctx, instance, videoID)
		if err != nil {
			lastErr = err
			continue
		}
		return info, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrVideoUnavailable, lastErr)
	}
	return nil, ErrVideoUnavailable
}

func (m *metadataClient) fetchFrom(ctx context.Context, instance, videoID string) (*VideoInfo, error) {
	endpoint := fmt.Sprintf("%s/api/v1/videos/%s", instance, videoID)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instance returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data videoResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}

	if data.Title == "" || data.LengthSeconds <= 0 {
		return nil, fmt.Errorf("instance returned incomplete metadata")
	}

	info := &VideoInfo{
		VideoID:     videoID,
		Title:       data.Title,
		Description: data.Description,
		Duration:    data.LengthSeconds,
	}

	// Prefer the medium thumbnail, fall back to the first one
	for _, thumb := range data.Thumbnails {
		if thumb.Quality == "medium" {
			info.ThumbnailURL = thumb.URL
			break
		}
	}
	if info.ThumbnailURL == "" && len(data.Thumbnails) > 0 {
		info.ThumbnailURL = data.Thumbnails[0].URL
	}

	// Muxed format streams carry audio; adaptive formats are video-only
	for _, format := range data.FormatStreams {
		if strings.Contains(format.Type, "video/mp4") && format.URL != "" {
			info.StreamURL = format.URL
			break
		}
	}
	if info.StreamURL == "" {
		for _, format := range data.AdaptiveFormats {
			if strings.Contains(format.Type, "video/mp4") && format.URL != "" {
				info.StreamURL = format.URL
				break
			}
		}
	}
	if info.StreamURL == "" {
		return nil, fmt.Errorf("no mp4 stream available")
	}

	return info, nil
}
