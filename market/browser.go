package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"m3calc/utils"
)

// BrowserDoer performs requests with fetch() inside a headless Chrome tab, so
// the price sources see the same cross-origin traffic a browser page sends.
type BrowserDoer struct {
	ctx         context.Context
	cancel      context.CancelFunc
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	logger      *utils.Logger
}

// NewBrowserDoer starts Chrome. chromeBin may be empty to search the usual
// install locations.
func NewBrowserDoer(chromeBin string, timeout time.Duration, logger *utils.Logger) (*BrowserDoer, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	// Suppress chromedp log noise
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(ctx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		cancelAlloc()
		return nil, fmt.Errorf("browser: start chrome: %w", err)
	}

	return &BrowserDoer{
		ctx:         ctx,
		cancel:      cancel,
		cancelAlloc: cancelAlloc,
		timeout:     timeout,
		logger:      logger,
	}, nil
}

type browserResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

const fetchScript = `(async () => {
	const res = await fetch(%s, {method: %s, mode: "cors", credentials: "omit"});
	const headers = {};
	res.headers.forEach((v, k) => { headers[k] = v; });
	return {status: res.status, headers: headers, body: await res.text()};
})()`

// Do runs the request in a fresh tab. Only GET without a body is supported.
func (b *BrowserDoer) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.Body != http.NoBody {
		return nil, fmt.Errorf("browser: request bodies are not supported")
	}

	tabCtx, cancelTab := chromedp.NewContext(b.ctx)
	defer cancelTab()
	ctx, cancel := context.WithTimeout(tabCtx, b.timeout)
	defer cancel()
	stop := context.AfterFunc(req.Context(), cancel)
	defer stop()

	urlJSON, _ := json.Marshal(req.URL.String())
	methodJSON, _ := json.Marshal(req.Method)
	script := fmt.Sprintf(fetchScript, urlJSON, methodJSON)

	var res browserResponse
	err := chromedp.Run(ctx, chromedp.Evaluate(script, &res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err != nil {
		if reqErr := req.Context().Err(); reqErr != nil {
			return nil, reqErr
		}
		return nil, fmt.Errorf("browser: fetch %s: %w", req.URL, err)
	}
	return res.toHTTP(req), nil
}

func (r browserResponse) toHTTP(req *http.Request) *http.Response {
	header := make(http.Header, len(r.Headers))
	for k, v := range r.Headers {
		header.Set(k, v)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.Status, http.StatusText(r.Status)),
		StatusCode:    r.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       req,
	}
}

// Close shuts Chrome down.
func (b *BrowserDoer) Close() error {
	b.cancel()
	b.cancelAlloc()
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
