// Package collyfetcher implements enrich.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/refsignal/tourney-enrich/internal/enrich"
	"github.com/refsignal/tourney-enrich/internal/ratelimit"
)

// DefaultUserAgent identifies the crawler to site owners, with a contact URL
// for abuse triage.
const DefaultUserAgent = "tourney-enrich-bot/1.0 (+https://refsignal.example/crawler)"

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 1 << 20
)

// Config controls fetch behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int
}

// Fetcher fetches single pages politely: per-host spacing via the injected
// limiter, a hard timeout, a body size cap, and an HTML-only content-type
// requirement.
type Fetcher struct {
	cfg           Config
	limiter       *ratelimit.HostLimiter
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, limiter *ratelimit.HostLimiter, logger *zap.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(
		colly.Async(false),
		colly.MaxBodySize(cfg.MaxBytes),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
	)
	c.UserAgent = cfg.UserAgent
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		limiter:       limiter,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch retrieves one URL. A nil page with nil error means the response was
// not usable HTML; transport failures return an error. Both are "no page" to
// the caller, never a job failure by themselves.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*enrich.Page, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	var (
		page        *enrich.Page
		contentType string
		fetchErr    error
	)

	collector := f.baseCollector.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnResponse(func(r *colly.Response) {
		contentType = r.Headers.Get("Content-Type")
		page = &enrich.Page{
			URL:        r.Request.URL.String(),
			HTML:       string(r.Body),
			StatusCode: r.StatusCode,
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := f.runCollector(ctx, collector, url, &fetchErr); err != nil {
		f.logger.Warn("page fetch failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("fetch %s: no response", url)
	}
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		f.logger.Debug("skipping non-HTML response",
			zap.String("url", url),
			zap.String("content_type", contentType),
		)
		return nil, nil
	}
	return page, nil
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit %s: %w", url, err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("fetch %s: %w", url, *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
