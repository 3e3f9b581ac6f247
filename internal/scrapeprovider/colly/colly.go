// Package colly implements capability.Scraper over a single-page colly
// collector: fetch a page, strip boilerplate via goquery, return its
// readable text.
package colly

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// boilerplateSelectors are stripped from the document before text
// extraction: navigation chrome, scripts/styles, and ad slots carry no
// claim-bearing content and would otherwise pollute the extractor's
// input.
var boilerplateSelectors = []string{
	"script", "style", "nav", "header", "footer", "aside", "form",
	".advertisement", ".ads", ".comments", ".social-share",
}

// DefaultUserAgent presents as a current desktop Chrome build so sites
// that block bare Go HTTP clients still serve the page.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0 Safari/537.36"

// DefaultHeaders is sent with every request.
var DefaultHeaders = map[string]string{
	"User-Agent":      DefaultUserAgent,
	"Accept-Language": "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7",
	"Accept-Encoding": "gzip",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Connection":      "keep-alive",
}

// Scraper fetches a single URL per call via a fresh colly.Collector.
type Scraper struct {
	headers map[string]string
	timeout time.Duration
}

// Option configures a Scraper at construction time.
type Option func(*Scraper)

// WithHeaders overrides the default request headers.
func WithHeaders(headers map[string]string) Option {
	return func(s *Scraper) { s.headers = headers }
}

// New builds a Scraper with the given per-request timeout, defaulting
// to 30s.
func New(timeout time.Duration, opts ...Option) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &Scraper{headers: DefaultHeaders, timeout: timeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape implements capability.Scraper. Failures yield empty text, not
// an error — the Workflow's extract stage treats a scrape failure as a
// reason to skip a URL, not to abort.
func (s *Scraper) Scrape(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", nil
	}

	c := colly.NewCollector()
	c.SetClient(&http.Client{Timeout: s.timeout})

	var mu sync.Mutex
	var text string
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		for k, v := range s.headers {
			r.Headers.Set(k, v)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		fetchErr = fmt.Errorf("colly: fetch %s: status %d: %w", url, r.StatusCode, err)
		mu.Unlock()
	})

	c.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(r.Body)))
		if err != nil {
			mu.Lock()
			fetchErr = fmt.Errorf("colly: parse %s: %w", url, err)
			mu.Unlock()
			return
		}

		for _, sel := range boilerplateSelectors {
			doc.Find(sel).Remove()
		}

		mu.Lock()
		text = normalizeWhitespace(doc.Text())
		mu.Unlock()
	})

	if err := c.Visit(url); err != nil {
		return "", nil
	}
	c.Wait()

	if fetchErr != nil {
		return "", nil
	}
	return text, nil
}

func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
