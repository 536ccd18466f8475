package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jamesruggles/secuscan/internal/model"
)

var (
	ErrNodeMissing  = errors.New("chart node not found on page")
	errBrowserStart = errors.New("starting browser")
)

// Browser screenshots chart nodes of the report page served at baseURL
// using headless Chrome.
type Browser struct {
	baseURL  string
	execPath string
	timeout  time.Duration

	mu          sync.Mutex
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	loaded      string
}

func NewBrowser(baseURL, execPath string, timeout time.Duration) *Browser {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Browser{
		baseURL:  strings.TrimRight(baseURL, "/"),
		execPath: execPath,
		timeout:  timeout,
	}
}

// ReportURL is the page hosting the chart nodes of scan id.
func (b *Browser) ReportURL(id string) string {
	return b.baseURL + "/report/" + id
}

// pageKey identifies one revision of a scan's report page. Every change to
// a scan moves its timestamp, so a new key means the page must be reloaded.
func pageKey(r model.ScanResult) string {
	return fmt.Sprintf("%s/%s/%d", r.ID, r.Status, r.Timestamp.UnixNano())
}

func (b *Browser) tab(ctx context.Context, r model.ScanResult) (context.Context, error) {
	if b.tabCtx == nil {
		opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.WindowSize(1280, 2400))
		if b.execPath != "" {
			opts = append(opts, chromedp.ExecPath(b.execPath))
		}
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
		tabCtx, tabCancel := chromedp.NewContext(allocCtx)
		// The first Run starts the browser and binds it to tabCtx, which
		// must outlive the per-capture timeouts.
		if err := chromedp.Run(tabCtx); err != nil {
			tabCancel()
			allocCancel()
			return nil, fmt.Errorf("%w: %w", errBrowserStart, err)
		}
		b.allocCancel, b.tabCtx, b.tabCancel = allocCancel, tabCtx, tabCancel
	}
	key := pageKey(r)
	if b.loaded == key {
		return b.tabCtx, nil
	}

	navCtx, cancel := context.WithTimeout(b.tabCtx, b.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(navCtx,
		chromedp.Navigate(b.ReportURL(r.ID)),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		b.loaded = ""
		return nil, fmt.Errorf("loading report page: %w", err)
	}
	b.loaded = key
	return b.tabCtx, nil
}

// Capture screenshots the element whose DOM id is chartID.
func (b *Browser) Capture(ctx context.Context, r model.ScanResult, chartID string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tab, err := b.tab(ctx, r)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(tab, b.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var present bool
	check := fmt.Sprintf("document.getElementById(%q) !== null", chartID)
	if err := chromedp.Run(runCtx, chromedp.Evaluate(check, &present)); err != nil {
		return nil, fmt.Errorf("locating %s: %w", chartID, err)
	}
	if !present {
		return nil, fmt.Errorf("%w: #%s", ErrNodeMissing, chartID)
	}

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.Screenshot("#"+chartID, &buf, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", chartID, err)
	}
	return buf, nil
}

// Close shuts down the browser if one was started.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tabCancel != nil {
		b.tabCancel()
		b.allocCancel()
	}
	b.tabCtx, b.tabCancel, b.allocCancel, b.loaded = nil, nil, nil, ""
}
