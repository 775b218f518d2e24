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
	instagramLoginURL = "https://www.instagram.com/accounts/login/"
	instagramBaseURL  = "https://www.instagram.com"

	instagramUserSel    = "input[name='username']"
	instagramPassSel    = "input[name='password']"
	instagramSubmitSel  = "button[type='submit']"
	instagramAvatarSel  = "img[alt*='profile picture']"
	instagramCreateSel  = "svg[aria-label='New post']"
	instagramFileSel    = "input[type='file']"
	instagramNextSel    = "div[role='dialog'] button"
	instagramCaptionSel = "textarea[aria-label='Write a caption...']"
	instagramShareSel   = "div[role='dialog'] button"
)

// InstagramPublisher publishes clips to Instagram as reels
type InstagramPublisher struct{}

// NewInstagramPublisher creates an Instagram publisher
func NewInstagramPublisher() *InstagramPublisher {
	return &InstagramPublisher{}
}

// Platform returns the platform this publisher serves
func (p *InstagramPublisher) Platform() models.Platform {
	return models.PlatformInstagram
}

// Publish runs the full upload flow inside the session's browser
func (p *InstagramPublisher) Publish(ctx context.Context, session *Session, req *UploadRequest) (*UploadResult, error) {
	browserCtx := session.Context()
	opts := session.Options()

	if err := p.login(browserCtx, session, req.Credentials); err != nil {
		if errors.Is(err, ErrLoginFailed) {
			return failedResult(err), nil
		}
		return failedResult(fmt.Errorf("%w: %v", ErrLoginFailed, err)), nil
	}

	// Open the create dialog from the home page
	if err := navigate(browserCtx, session, instagramBaseURL); err != nil {
		return failedResult(fmt.Errorf("failed to open home page: %v", err)), nil
	}
	if err := awaitSelector(browserCtx, instagramCreateSel, opts.NavigationTimeout); err != nil {
		return failedResult(fmt.Errorf("create button not found: %w", err)), nil
	}
	if err := chromedp.Run(browserCtx, chromedp.Click(instagramCreateSel, chromedp.ByQuery)); err != nil {
		return failedResult(fmt.Errorf("failed to open create dialog: %v", err)), nil
	}

	log.Printf("[DEBUG] Uploading %s to Instagram", req.VideoPath)
	if err := setUploadFile(browserCtx, session, instagramFileSel, req.VideoPath); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return failedResult(ErrUploadTimeout), nil
		}
		return failedResult(fmt.Errorf("upload failed: %v", err)), nil
	}

	// Two Next steps (crop, filters), then caption and share. The
	// dialog reuses one button slot for every step.
	err := chromedp.Run(browserCtx,
		chromedp.Sleep(3*time.Second),
		chromedp.Click(instagramNextSel, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(instagramNextSel, chromedp.ByQuery),
	)
	if err != nil {
		return failedResult(fmt.Errorf("failed to advance upload dialog: %v", err)), nil
	}

	if err := awaitSelector(browserCtx, instagramCaptionSel, opts.UploadTimeout); err != nil {
		return failedResult(ErrUploadTimeout), nil
	}

	caption := req.Title
	if req.Description != "" {
		caption = caption + "\n" + req.Description
	}

	err = chromedp.Run(browserCtx,
		chromedp.SendKeys(instagramCaptionSel, caption, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.Click(instagramShareSel, chromedp.ByQuery),
	)
	if err != nil {
		return failedResult(fmt.Errorf("failed to submit post: %v", err)), nil
	}

	// Wait for the "shared" confirmation; the post URL is not exposed,
	// so record the account's reels page
	shareCtx, cancel := context.WithTimeout(browserCtx, opts.PublishTimeout)
	err = chromedp.Run(shareCtx, chromedp.WaitVisible("img[alt*='Animated checkmark']", chromedp.ByQuery))
	cancel()
	if err != nil {
		return failedResult(fmt.Errorf("publish confirmation timed out: %w", err)), nil
	}

	platformURL := fmt.Sprintf("%s/%s/reels/", instagramBaseURL, req.Credentials.Username)
	log.Printf("[INFO] Published to Instagram: %s", platformURL)

	return &UploadResult{Success: true, PlatformURL: platformURL}, nil
}

func (p *InstagramPublisher) login(ctx context.Context, session *Session, creds Credentials) error {
	if signedIn(ctx, session, instagramBaseURL, instagramAvatarSel) {
		log.Printf("[DEBUG] Instagram session already signed in")
		return nil
	}

	if err := navigate(ctx, session, instagramLoginURL); err != nil {
		return err
	}

	loginCtx, cancel := context.WithTimeout(ctx, session.Options().LoginTimeout)
	defer cancel()

	if err := fillCredentials(loginCtx, instagramUserSel, instagramPassSel, instagramSubmitSel, creds); err != nil {
		return err
	}

	_, err := awaitURL(loginCtx, session.Options().LoginTimeout, func(url string) bool {
		return !strings.Contains(url, "/accounts/login")
	})
	if err != nil {
		return fmt.Errorf("%w: still on login page", ErrLoginFailed)
	}
	return nil
}
