// Package automator drives real browser sessions to publish clips on
// platforms that have no usable upload API. Each publish run opens a
// fresh Chrome instance, logs in with the stored account credentials,
// pushes the file through the platform's upload UI, and extracts the
// resulting post URL.
package automator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Options configures browser sessions
type Options struct {
	Headless          bool
	ViewportWidth     int
	ViewportHeight    int
	UserAgent         string
	NavigationTimeout time.Duration
	LoginTimeout      time.Duration
	UploadTimeout     time.Duration
	PublishTimeout    time.Duration
}

// DefaultSessionOptions returns session defaults
func DefaultSessionOptions() Options {
	return Options{
		Headless:          true,
		ViewportWidth:     1366,
		ViewportHeight:    768,
		UserAgent:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		NavigationTimeout: 30 * time.Second,
		LoginTimeout:      60 * time.Second,
		UploadTimeout:     5 * time.Minute,
		PublishTimeout:    2 * time.Minute,
	}
}

// Session owns one browser instance. Open and Close are idempotent;
// the context returned by Context drives all chromedp actions.
type Session struct {
	options Options

	mu          sync.Mutex
	ctx         context.Context
	cancelChain []context.CancelFunc
	open        bool
}

// NewSession creates a session with the given options
func NewSession(options Options) *Session {
	return &Session{options: options}
}

// Open starts the browser. Calling Open on an open session is a no-op.
func (s *Session) Open(parent context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.options.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(s.options.ViewportWidth, s.options.ViewportHeight),
		chromedp.UserAgent(s.options.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser now so a missing Chrome binary fails here
	// instead of mid-publish. Network events must be enabled before any
	// navigation for download and redirect tracking to work.
	err := chromedp.Run(browserCtx,
		network.Enable(),
		emulation.SetUserAgentOverride(s.options.UserAgent),
	)
	if err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	s.ctx = browserCtx
	s.cancelChain = []context.CancelFunc{browserCancel, allocCancel}
	s.open = true

	log.Printf("[DEBUG] Browser session opened (headless=%v)", s.options.Headless)
	return nil
}

// Context returns the browser context. Only valid while open.
func (s *Session) Context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Options returns the session's configured timeouts
func (s *Session) Options() Options {
	return s.options
}

// Close shuts the browser down. Calling Close on a closed session is a
// no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return
	}

	for _, cancel := range s.cancelChain {
		cancel()
	}
	s.ctx = nil
	s.cancelChain = nil
	s.open = false

	log.Printf("[DEBUG] Browser session closed")
}

// IsOpen reports whether the session has a live browser
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
