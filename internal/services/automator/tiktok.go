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

// TikTok's upload UI changes often; selectors here follow the data-e2e
// attributes, which have been the most stable handle.
const (
	tiktokLoginURL  = "https://www.tiktok.com/login/phone-or-email/email"
	tiktokUploadURL = "https://www.tiktok.com/upload"
	tiktokBaseURL   = "https://www.tiktok.com"

	tiktokUserSel    = "input[name='username']"
	tiktokPassSel    = "input[type='password']"
	tiktokSubmitSel  = "button[data-e2e='login-button']"
	tiktokAvatarSel  = "[data-e2e='profile-icon']"
	tiktokFileSel    = "input[type='file']"
	tiktokCaptionSel = ".notranslate.public-DraftEditor-content"
	tiktokPostSel    = "button[data-e2e='post_video_button']"
)

// TikTokPublisher publishes clips to TikTok
type TikTokPublisher struct{}

// NewTikTokPublisher creates a TikTok publisher
func NewTikTokPublisher() *TikTokPublisher {
	return &TikTokPublisher{}
}

// Platform returns the platform this publisher serves
func (p *TikTokPublisher) Platform() models.Platform {
	return models.PlatformTikTok
}

// Publish runs the full upload flow inside the session's browser
func (p *TikTokPublisher) Publish(ctx context.Context, session *Session, req *UploadRequest) (*UploadResult, error) {
	browserCtx := session.Context()
	opts := session.Options()

	if err := p.login(browserCtx, session, req.Credentials); err != nil {
		if errors.Is(err, ErrLoginFailed) {
			return failedResult(err), nil
		}
		return failedResult(fmt.Errorf("%w: %v", ErrLoginFailed, err)), nil
	}

	if err := navigate(browserCtx, session, tiktokUploadURL); err != nil {
		return failedResult(fmt.Errorf("failed to open upload page: %v", err)), nil
	}

	log.Printf("[DEBUG] Uploading %s to TikTok", req.VideoPath)
	if err := setUploadFile(browserCtx, session, tiktokFileSel, req.VideoPath); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return failedResult(ErrUploadTimeout), nil
		}
		return failedResult(fmt.Errorf("upload failed: %v", err)), nil
	}

	// The caption editor only appears once the file is accepted
	if err := awaitSelector(browserCtx, tiktokCaptionSel, opts.UploadTimeout); err != nil {
		return failedResult(ErrUploadTimeout), nil
	}

	caption := req.Title
	if req.Description != "" {
		caption = caption + " " + req.Description
	}

	err := chromedp.Run(browserCtx,
		chromedp.Click(tiktokCaptionSel, chromedp.ByQuery),
		chromedp.SendKeys(tiktokCaptionSel, caption, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.Click(tiktokPostSel, chromedp.ByQuery),
	)
	if err != nil {
		return failedResult(fmt.Errorf("failed to submit post: %v", err)), nil
	}

	// After posting, TikTok redirects to the content manager; the video
	// URL itself is not surfaced, so fall back to the profile URL
	if _, err := awaitURLPrefix(browserCtx, opts.PublishTimeout,
		tiktokBaseURL+"/tiktokstudio", tiktokBaseURL+"/creator-center"); err != nil {
		return failedResult(fmt.Errorf("publish confirmation timed out: %w", err)), nil
	}

	platformURL := fmt.Sprintf("%s/@%s", tiktokBaseURL, req.Credentials.Username)
	log.Printf("[INFO] Published to TikTok: %s", platformURL)

	return &UploadResult{Success: true, PlatformURL: platformURL}, nil
}

// login probes for an existing session first, then signs in with the
// stored credentials and waits for the redirect away from the login page
func (p *TikTokPublisher) login(ctx context.Context, session *Session, creds Credentials) error {
	if signedIn(ctx, session, tiktokBaseURL, tiktokAvatarSel) {
		log.Printf("[DEBUG] TikTok session already signed in")
		return nil
	}

	if err := navigate(ctx, session, tiktokLoginURL); err != nil {
		return err
	}

	loginCtx, cancel := context.WithTimeout(ctx, session.Options().LoginTimeout)
	defer cancel()

	if err := fillCredentials(loginCtx, tiktokUserSel, tiktokPassSel, tiktokSubmitSel, creds); err != nil {
		return err
	}

	// Redirect away from the login path means the session is live;
	// sitting on the login page until the deadline means it is not
	_, err := awaitURL(loginCtx, session.Options().LoginTimeout, func(url string) bool {
		return !strings.Contains(url, "/login")
	})
	if err != nil {
		return fmt.Errorf("%w: still on login page", ErrLoginFailed)
	}
	return nil
}
