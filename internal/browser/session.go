// Package browser manages chromedp browser sessions, local or on
// BrowserStack.
package browser

import (
	"context"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/workflowpro/qaharness/internal/config"
)

// Session owns a browser context and the allocator behind it.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// NewSession starts a browser according to the settings. With BrowserStack
// credentials present the session attaches to the remote hub; otherwise a
// local Chromium is launched. chromedp speaks CDP only, so firefox/webkit
// selections run locally as Chromium with a warning.
func NewSession(ctx context.Context, settings *config.Settings, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if settings.BrowserStack != nil {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, settings.BrowserStack.HubURL())
		logger.Info("using BrowserStack hub",
			zap.String("browser", string(settings.Browser)),
		)
	} else {
		if settings.Browser != config.BrowserChromium {
			logger.Warn("requested browser not supported locally, falling back to chromium",
				zap.String("requested", string(settings.Browser)),
			)
		}
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", settings.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(1280, 720),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	}
	s.cancels = append(s.cancels, allocCancel)

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
	)
	s.cancels = append(s.cancels, browserCancel)

	s.ctx = browserCtx
	return s
}

// Context returns the browser context page actions run against.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Close tears down the browser and allocator in reverse order.
func (s *Session) Close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}
