// Package browser drives a visible Chromium window for the interactive part
// of the OAuth login: the user authenticates on the provider's page and the
// redirect back to the backend callback is captured automatically.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	// DefaultLoginTimeout is the maximum time to wait for the user to
	// complete interactive authentication.
	DefaultLoginTimeout = 5 * time.Minute
)

// Window manages a chromedp browser context for interactive login.
type Window struct {
	timeout time.Duration
}

// NewWindow creates a login browser window helper.
func NewWindow() *Window {
	return &Window{timeout: DefaultLoginTimeout}
}

// SetTimeout overrides the default login timeout.
func (w *Window) SetTimeout(d time.Duration) {
	w.timeout = d
}

// CaptureRedirect opens authURL in a visible browser window, waits for the
// provider to redirect back with code and state query parameters, and
// returns the full redirect URL. The window is torn down on every exit path.
func (w *Window) CaptureRedirect(ctx context.Context, authURL string) (string, error) {
	var opts []chromedp.ExecAllocatorOption
	opts = append(opts, chromedp.DefaultExecAllocatorOptions[:]...)

	// Visible window: the user has to type credentials and approve scopes.
	opts = append(opts,
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-gpu", false),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.WindowSize(1280, 900),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(taskCtx, w.timeout)
	defer timeoutCancel()

	redirects := make(chan string, 1)
	chromedp.ListenTarget(timeoutCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventFrameNavigated); ok {
			if isCallbackURL(e.Frame.URL) {
				select {
				case redirects <- e.Frame.URL:
				default:
				}
			}
		}
	})

	if err := chromedp.Run(timeoutCtx, chromedp.Navigate(authURL)); err != nil {
		return "", fmt.Errorf("opening authorization page: %w", err)
	}

	select {
	case redirect := <-redirects:
		return redirect, nil
	case <-timeoutCtx.Done():
		return "", fmt.Errorf("waiting for oauth redirect: %w", timeoutCtx.Err())
	}
}

// isCallbackURL reports whether a navigated URL looks like the OAuth
// callback: it must carry both code and state query parameters.
func isCallbackURL(raw string) bool {
	if !strings.Contains(raw, "code=") {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	q := parsed.Query()
	return q.Get("code") != "" && q.Get("state") != ""
}
