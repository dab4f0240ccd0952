// Package snapshot captures a rendered dashboard page as a PNG using a
// headless Chrome.
package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChartSelector matches a chart once vega-embed has rendered it
const ChartSelector = ".vega-embed"

// Options controls a capture
type Options struct {
	URL     string
	Out     string
	Width   int64
	Height  int64
	Quality int
	Timeout time.Duration
	Visible bool
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1400
	}
	if o.Height <= 0 {
		o.Height = 900
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 100
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Minute
	}
	return o
}

// Validate checks the target URL and output path
func (o Options) Validate() error {
	u, err := url.Parse(o.URL)
	if err != nil {
		return fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must be http or https, got %q", o.URL)
	}
	if o.Out == "" {
		return fmt.Errorf("output path is required")
	}
	return nil
}

func (o Options) allocatorOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !o.Visible),
		chromedp.Flag("no-sandbox", true),            // Required for running as root on Linux
		chromedp.Flag("disable-gpu", true),           // Recommended for headless Linux
		chromedp.Flag("disable-dev-shm-usage", true), // Avoid /dev/shm issues on Linux
		chromedp.WindowSize(int(o.Width), int(o.Height)),
	)
}

// Capture loads the page, waits for the first chart to render and writes a
// full page screenshot to o.Out
func Capture(ctx context.Context, o Options, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := o.Validate(); err != nil {
		return err
	}
	o = o.withDefaults()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, o.allocatorOptions()...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, o.Timeout)
	defer cancel()

	logger.Info("capturing dashboard", zap.String("url", o.URL), zap.String("out", o.Out))

	var buf []byte
	if err := chromedp.Run(browserCtx,
		emulation.SetDeviceMetricsOverride(o.Width, o.Height, 1, false),
		chromedp.Navigate(o.URL),
		chromedp.WaitVisible(ChartSelector, chromedp.ByQuery),
		// vega renders asynchronously after the container appears
		chromedp.Sleep(time.Second),
		chromedp.FullScreenshot(&buf, o.Quality),
	); err != nil {
		return fmt.Errorf("capturing %s: %w", o.URL, err)
	}

	if err := os.MkdirAll(filepath.Dir(o.Out), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(o.Out, buf, 0644); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}

	logger.Info("captured dashboard", zap.Int("bytes", len(buf)))
	return nil
}
