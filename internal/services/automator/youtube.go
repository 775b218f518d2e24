package automator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/killallgit/clipdeck-api/internal/models"
)

const (
	youtubeLoginURL  = "https://accounts.google.com/ServiceLogin?service=youtube"
	youtubeStudioURL = "https://studio.youtube.com"

	youtubeAvatarSel   = "#avatar-btn"
	youtubeEmailSel    = "input[type='email']"
	youtubeEmailNext   = "#identifierNext button"
	youtubePassSel     = "input[type='password']"
	youtubePassNext    = "#passwordNext button"
	youtubeUploadBtn   = "#upload-icon"
	youtubeFileSel     = "input[type='file']"
	youtubeTitleSel    = "#textbox[aria-label*='title']"
	youtubeDescSel     = "#textbox[aria-label*='Tell viewers']"
	youtubeNextBtn     = "#next-button"
	youtubePublicSel   = "tp-yt-paper-radio-button[name='PUBLIC']"
	youtubeDoneBtn     = "#done-button"
	youtubeShareURLSel = "a.ytcp-video-info"
)

// YouTubePublisher publishes clips to YouTube as shorts. Vertical
// videos under 60s are classified as shorts automatically, so the flow
// is the regular studio upload.
type YouTubePublisher struct{}

// NewYouTubePublisher creates a YouTube publisher
func NewYouTubePublisher() *YouTubePublisher {
	return &YouTubePublisher{}
}

// Platform returns the platform this publisher serves
func (p *YouTubePublisher) Platform() models.Platform {
	return models.PlatformYouTubeShorts
}

// Publish runs the full upload flow inside the session's browser
func (p *YouTubePublisher) Publish(ctx context.Context, session *Session, req *UploadRequest) (*UploadResult, error) {
	browserCtx := session.Context()
	opts := session.Options()

	if err := p.login(browserCtx, session, req.Credentials); err != nil {
		if errors.Is(err, ErrLoginFailed) {
			return failedResult(err), nil
		}
		return failedResult(fmt.Errorf("%w: %v", ErrLoginFailed, err)), nil
	}

	if err := navigate(browserCtx, session, youtubeStudioURL); err != nil {
		return failedResult(fmt.Errorf("failed to open studio: %v", err)), nil
	}
	if err := awaitSelector(browserCtx, youtubeUploadBtn, opts.NavigationTimeout); err != nil {
		return failedResult(fmt.Errorf("upload button not found: %w", err)), nil
	}
	if err := chromedp.Run(browserCtx, chromedp.Click(youtubeUploadBtn, chromedp.ByQuery)); err != nil {
		return failedResult(fmt.Errorf("failed to open upload dialog: %v", err)), nil
	}

	log.Printf("[DEBUG] Uploading %s to YouTube", req.VideoPath)
	if err := setUploadFile(browserCtx, session, youtubeFileSel, req.VideoPath); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return failedResult(ErrUploadTimeout), nil
		}
		return failedResult(fmt.Errorf("upload failed: %v", err)), nil
	}

	if err := awaitSelector(browserCtx, youtubeTitleSel, opts.UploadTimeout); err != nil {
		return failedResult(ErrUploadTimeout), nil
	}

	// Details step: clear the filename-derived title, set ours
	err := chromedp.Run(browserCtx,
		chromedp.Click(youtubeTitleSel, chromedp.ByQuery),
		chromedp.Clear(youtubeTitleSel, chromedp.ByQuery),
		chromedp.SendKeys(youtubeTitleSel, req.Title, chromedp.ByQuery),
	)
	if err != nil {
		return failedResult(fmt.Errorf("failed to set title: %v", err)), nil
	}

	if req.Description != "" {
		err = chromedp.Run(browserCtx,
			chromedp.Click(youtubeDescSel, chromedp.ByQuery),
			chromedp.SendKeys(youtubeDescSel, req.Description, chromedp.ByQuery),
		)
		if err != nil {
			return failedResult(fmt.Errorf("failed to set description: %v", err)), nil
		}
	}

	// Details, checks, visibility
	err = chromedp.Run(browserCtx,
		chromedp.Click(youtubeNextBtn, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.Click(youtubeNextBtn, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.Click(youtubeNextBtn, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.Click(youtubePublicSel, chromedp.ByQuery),
	)
	if err != nil {
		return failedResult(fmt.Errorf("failed to advance upload dialog: %v", err)), nil
	}

	// The share link appears once processing starts
	var shareURL string
	publishCtx, cancel := context.WithTimeout(browserCtx, opts.PublishTimeout)
	err = chromedp.Run(publishCtx,
		chromedp.WaitVisible(youtubeShareURLSel, chromedp.ByQuery),
		chromedp.AttributeValue(youtubeShareURLSel, "href", &shareURL, nil, chromedp.ByQuery),
		chromedp.Click(youtubeDoneBtn, chromedp.ByQuery),
	)
	cancel()
	if err != nil {
		return failedResult(fmt.Errorf("publish confirmation timed out: %w", err)), nil
	}

	if shareURL == "" {
		shareURL = youtubeStudioURL
	}
	log.Printf("[INFO] Published to YouTube: %s", shareURL)

	return &UploadResult{Success: true, PlatformURL: shareURL}, nil
}

// login probes the studio for an existing session, then walks Google's
// two-step credential flow
func (p *YouTubePublisher) login(ctx context.Context, session *Session, creds Credentials) error {
	if signedIn(ctx, session, youtubeStudioURL, youtubeAvatarSel) {
		log.Printf("[DEBUG] YouTube session already signed in")
		return nil
	}

	if err := navigate(ctx, session, youtubeLoginURL); err != nil {
		return err
	}

	loginCtx, cancel := context.WithTimeout(ctx, session.Options().LoginTimeout)
	defer cancel()

	err := chromedp.Run(loginCtx,
		chromedp.WaitVisible(youtubeEmailSel, chromedp.ByQuery),
		chromedp.SendKeys(youtubeEmailSel, creds.Username, chromedp.ByQuery),
		chromedp.Click(youtubeEmailNext, chromedp.ByQuery),
		chromedp.WaitVisible(youtubePassSel, chromedp.ByQuery),
		chromedp.SendKeys(youtubePassSel, creds.Password, chromedp.ByQuery),
		chromedp.Click(youtubePassNext, chromedp.ByQuery),
	)
	if err != nil {
		return err
	}

	_, err = awaitURL(loginCtx, session.Options().LoginTimeout, func(url string) bool {
		return !strings.Contains(url, "accounts.google.com")
	})
	if err != nil {
		return fmt.Errorf("%w: still on login page", ErrLoginFailed)
	}
	return nil
}
