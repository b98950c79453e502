// Package pages holds the page objects for WorkFlow Pro UI tests.
package pages

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/spf13/afero"

	"github.com/workflowpro/qaharness/internal/config"
)

// Page provides the shared browser interactions every page object needs:
// navigation, element interaction with bounded waits, and screenshots.
type Page struct {
	ctx            context.Context
	fs             afero.Fs
	timeout        time.Duration
	elementTimeout time.Duration
}

// NewPage wraps a browser context. Screenshots are written through fs.
func NewPage(ctx context.Context, fs afero.Fs) *Page {
	return &Page{
		ctx:            ctx,
		fs:             fs,
		timeout:        config.DefaultTimeout,
		elementTimeout: config.ElementTimeout,
	}
}

// Navigate opens a URL and waits for the document body to be ready.
func (p *Page) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(p.ctx, config.NavigationTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Click waits for a selector to be visible, then clicks it.
func (p *Page) Click(selector string) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// Fill clears a visible input and types into it.
func (p *Page) Fill(selector, text string) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	return nil
}

// Text returns the text content of a visible element.
func (p *Page) Text(selector string) (string, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	var text string
	err := chromedp.Run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	return text, nil
}

// IsVisible reports whether an element becomes visible within the element
// timeout. A timeout is an answer, not an error.
func (p *Page) IsVisible(selector string) bool {
	ctx, cancel := context.WithTimeout(p.ctx, p.elementTimeout)
	defer cancel()

	err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	return err == nil
}

// WaitVisible blocks until an element is visible or the timeout elapses.
func (p *Page) WaitVisible(selector string) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("element %s not visible: %w", selector, err)
	}
	return nil
}

// CurrentURL returns the page's current location.
func (p *Page) CurrentURL() (string, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	var url string
	if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read current URL: %w", err)
	}
	return url, nil
}

// WaitForURLContains polls until the location contains the fragment.
func (p *Page) WaitForURLContains(fragment string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.timeout
	}
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	for {
		var url string
		if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
			return fmt.Errorf("waiting for URL containing %q: %w", fragment, err)
		}
		if strings.Contains(url, fragment) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for URL containing %q, still at %s", fragment, url)
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Count returns how many elements match a selector.
func (p *Page) Count(selector string) (int, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	var count int
	script := fmt.Sprintf(`document.querySelectorAll(%q).length`, selector)
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &count)); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", selector, err)
	}
	return count, nil
}

// TextAll returns the text content of every element matching a selector.
func (p *Page) TextAll(selector string) ([]string, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	var texts []string
	script := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(el => el.textContent || "")`, selector)
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &texts)); err != nil {
		return nil, fmt.Errorf("failed to collect text of %s: %w", selector, err)
	}
	return texts, nil
}

// ScrollIntoView scrolls an element into the viewport.
func (p *Page) ScrollIntoView(selector string) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.ScrollIntoView(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to scroll %s into view: %w", selector, err)
	}
	return nil
}

// Screenshot captures the viewport into screenshots/<name>.png and
// returns the path.
func (p *Page) Screenshot(name string) (string, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}

	if err := p.fs.MkdirAll("screenshots", 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshots directory: %w", err)
	}
	path := filepath.Join("screenshots", name+".png")
	if err := afero.WriteFile(p.fs, path, buf, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}
