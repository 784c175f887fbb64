// Package export prints rendered resume pages to PDF with a headless browser.
package export

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds a single page print.
const DefaultTimeout = 30 * time.Second

// Letter paper, in inches.
const (
	PaperWidth  = 8.5
	PaperHeight = 11.0
	Margin      = 0.4
)

// Chrome prints HTML to PDF in one shared headless browser. Each call opens
// its own tab, so PDF is safe for concurrent use. Requires Chrome/Chromium to
// be installed on the system.
type Chrome struct {
	Timeout time.Duration

	once       sync.Once
	startErr   error
	browserCtx context.Context
	cancel     context.CancelFunc
}

// NewChrome creates an exporter. The browser starts on first use.
func NewChrome(timeout time.Duration) *Chrome {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Chrome{Timeout: timeout}
}

func (c *Chrome) start() error {
	c.once.Do(func() {
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(),
			append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
			)...,
		)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)
		c.browserCtx = browserCtx
		c.cancel = func() {
			browserCancel()
			allocCancel()
		}
		// Launch the browser now so tabs opened concurrently share it.
		if err := chromedp.Run(browserCtx); err != nil {
			c.startErr = &ExportError{Message: "failed to start browser", Cause: err}
		}
	})
	return c.startErr
}

// PDF loads html into a fresh tab and prints it.
func (c *Chrome) PDF(ctx context.Context, html string) ([]byte, error) {
	if err := c.start(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.Timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(PaperWidth).
				WithPaperHeight(PaperHeight).
				WithMarginTop(Margin).
				WithMarginBottom(Margin).
				WithMarginLeft(Margin).
				WithMarginRight(Margin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ExportError{Message: "failed to print page", Cause: err}
	}
	if len(pdf) == 0 {
		return nil, &ExportError{Message: "browser returned an empty document"}
	}
	return pdf, nil
}

// Close shuts the browser down. The exporter cannot be used afterwards.
func (c *Chrome) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}
