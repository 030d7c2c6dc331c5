package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"smart-search-be/pkg/utils"

	"golang.org/x/time/rate"
)

const (
	UserAgent       = "Mozilla/5.0 (compatible; MCPBot/1.0)"
	DefaultTimeout  = 15 * time.Second
	DefaultMaxChars = 10000
	TruncatedMarker = "\n...[TRUNCATED]..."

	maxBodyBytes = 5 << 20
)

const (
	ModeText        = "text"
	ModeReadability = "readability"
)

type Config struct {
	Timeout       time.Duration
	MaxChars      int
	RatePerSecond float64 // 0 disables throttling
	Mode          string  // ModeText (default) or ModeReadability
}

// Fetcher downloads a page and reduces it to plain text.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxChars int
	mode     string
}

func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeText
	}

	f := &Fetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		maxChars: cfg.MaxChars,
		mode:     cfg.Mode,
	}
	if cfg.RatePerSecond > 0 {
		burst := int(cfg.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return f
}

// FetchText returns the visible text of url, truncated to the configured
// maximum. Transport errors and non-2xx statuses are returned as errors.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("scrape %s: %w", url, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", url, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("scrape %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("scrape %s: read body: %w", url, err)
	}

	text, err := f.extract(string(body), url)
	if err != nil {
		return "", fmt.Errorf("scrape %s: parse html: %w", url, err)
	}
	return utils.Truncate(text, f.maxChars, TruncatedMarker), nil
}

func (f *Fetcher) extract(doc, url string) (string, error) {
	if f.mode == ModeReadability {
		if text, ok := ArticleText(doc, url); ok {
			return text, nil
		}
	}
	return VisibleText(doc)
}
