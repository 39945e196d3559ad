package page

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"marketpulse/internal/ports"
)

// ChromeRenderer renders pages in a headless browser. Each Render call
// acquires its own browser context and releases it before returning, on both
// success and failure paths.
type ChromeRenderer struct {
	timeout time.Duration
}

var _ ports.Renderer = (*ChromeRenderer)(nil)

// NewChromeRenderer builds a renderer with a per-page deadline.
func NewChromeRenderer(timeout time.Duration) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &ChromeRenderer{timeout: timeout}
}

// Render navigates to the URL and returns the document HTML after scripts
// have run.
func (r *ChromeRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, r.timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}
	return html, nil
}
