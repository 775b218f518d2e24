package automator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/killallgit/clipdeck-api/internal/models"
)

var (
	// ErrLoginFailed indicates the credential flow never reached the
	// upload surface, usually bad credentials or a challenge page
	ErrLoginFailed = errors.New("login failed")

	// ErrUploadTimeout indicates the platform never acknowledged the file
	ErrUploadTimeout = errors.New("upload timed out")
)

// Credentials carries the stored account login for a publish run
type Credentials struct {
	Username string
	Password string
}

// UploadRequest describes one publish attempt
type UploadRequest struct {
	VideoPath   string
	Title       string
	Description string
	Credentials Credentials
}

// UploadResult reports the outcome of a publish attempt. Success false
// with ErrorMessage set means the platform flow failed in a way the
// caller should record, not retry blindly.
type UploadResult struct {
	Success      bool
	PlatformURL  string
	ErrorMessage string
}

// Publisher publishes a clip file to one platform through a browser
// session. Publish returns an error only when the browser session
// itself is unusable; every platform flow failure, login included, is
// reported as an UploadResult with Success false.
type Publisher interface {
	// Platform returns the platform this publisher serves
	Platform() models.Platform

	// Publish runs the full upload flow inside the session's browser
	Publish(ctx context.Context, session *Session, req *UploadRequest) (*UploadResult, error)
}

// AutomatorError wraps a failure bringing up the browser session
type AutomatorError struct {
	Platform models.Platform
	Step     string
	Err      error
}

func (e *AutomatorError) Error() string {
	return fmt.Sprintf("%s automation failed at %s: %v", e.Platform, e.Step, e.Err)
}

func (e *AutomatorError) Unwrap() error {
	return e.Err
}

// failedResult builds the result recorded for a platform-level failure
func failedResult(err error) *UploadResult {
	return &UploadResult{Success: false, ErrorMessage: err.Error()}
}

// signedInScript builds the expression probing for a logged-in marker
func signedInScript(selector string) string {
	return fmt.Sprintf("document.querySelector(%q) !== null", selector)
}

// signedIn loads a page and probes it for a logged-in marker. Any
// navigation or evaluation failure counts as not signed in.
func signedIn(ctx context.Context, session *Session, url, selector string) bool {
	if err := navigate(ctx, session, url); err != nil {
		return false
	}
	var present bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(signedInScript(selector), &present)); err != nil {
		return false
	}
	return present
}

// navigate loads a URL under the session's navigation timeout
func navigate(ctx context.Context, session *Session, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, session.Options().NavigationTimeout)
	defer cancel()
	return chromedp.Run(navCtx, chromedp.Navigate(url))
}

// setUploadFile points the platform's file input at an absolute path.
// Relative paths confuse the browser's file chooser bridge.
func setUploadFile(ctx context.Context, session *Session, selector, videoPath string) error {
	absPath, err := filepath.Abs(videoPath)
	if err != nil {
		return err
	}

	uploadCtx, cancel := context.WithTimeout(ctx, session.Options().UploadTimeout)
	defer cancel()

	return chromedp.Run(uploadCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetUploadFiles(selector, []string{absPath}, chromedp.ByQuery),
	)
}

// awaitSelector waits for a selector to appear within the given timeout
func awaitSelector(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// currentURL reads the browser's current location
func currentURL(ctx context.Context) (string, error) {
	var url string
	err := chromedp.Run(ctx, chromedp.Evaluate(`window.location.href`, &url))
	return url, err
}

// awaitURL polls the location until the condition holds or the timeout
// elapses. Used to detect post-login redirects and publish
// confirmations.
func awaitURL(ctx context.Context, timeout time.Duration, cond func(url string) bool) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return "", waitCtx.Err()
		case <-ticker.C:
			url, err := currentURL(waitCtx)
			if err != nil {
				continue
			}
			if cond(url) {
				return url, nil
			}
		}
	}
}

// awaitURLPrefix waits until the location matches one of the prefixes
func awaitURLPrefix(ctx context.Context, timeout time.Duration, prefixes ...string) (string, error) {
	return awaitURL(ctx, timeout, func(url string) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(url, prefix) {
				return true
			}
		}
		return false
	})
}

// fillCredentials types a username and password into a login form and
// submits it
func fillCredentials(ctx context.Context, userSel, passSel, submitSel string, creds Credentials) error {
	return chromedp.Run(ctx,
		chromedp.WaitVisible(userSel, chromedp.ByQuery),
		chromedp.SendKeys(userSel, creds.Username, chromedp.ByQuery),
		chromedp.SendKeys(passSel, creds.Password, chromedp.ByQuery),
		chromedp.Click(submitSel, chromedp.ByQuery),
	)
}
