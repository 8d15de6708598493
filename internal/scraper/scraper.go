package scraper

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/evalregistry/internal/logger"
	"github.com/pfrederiksen/evalregistry/internal/registry"
)

const (
	// DefaultBaseURL is the public Evaluation Registry host.
	DefaultBaseURL = "https://evaluation-registry.cabinetoffice.gov.uk"

	// DefaultUserAgent is a browser-like User-Agent; the registry serves a
	// different page skeleton to unknown clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"

	// DefaultMaxAttempts bounds retries of a single request.
	DefaultMaxAttempts = 5

	// DefaultInitialBackoff is the delay after the first failed attempt.
	DefaultInitialBackoff = 500 * time.Millisecond

	// Timeout applies to each HTTP request.
	Timeout = 30 * time.Second
)

// Structural assumption violations. The registry's markup has changed and
// the extraction rules need revisiting, so the run aborts.
var (
	ErrResultsContainerMissing = errors.New("search results container not found")
	ErrTitleMissing            = errors.New("page heading not found")
	ErrDescriptionMissing      = errors.New("description paragraph not found")
	ErrSummaryRowMalformed     = errors.New("summary row missing key or value")
)

// detailPathPattern matches hrefs that point at evaluation detail pages.
var detailPathPattern = regexp.MustCompile(`^/search/`)

// Scraper fetches and parses Evaluation Registry pages.
type Scraper struct {
	client         *http.Client
	baseURL        string
	userAgent      string
	maxAttempts    uint64
	initialBackoff time.Duration
}

// Options configures a Scraper. Zero values fall back to the defaults.
type Options struct {
	BaseURL        string
	UserAgent      string
	MaxAttempts    int
	InitialBackoff time.Duration
}

// New creates a new Scraper instance
func New(opts Options) *Scraper {
	s := &Scraper{
		client:         &http.Client{Timeout: Timeout},
		baseURL:        DefaultBaseURL,
		userAgent:      DefaultUserAgent,
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: DefaultInitialBackoff,
	}
	if opts.BaseURL != "" {
		s.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.UserAgent != "" {
		s.userAgent = opts.UserAgent
	}
	if opts.MaxAttempts > 0 {
		s.maxAttempts = uint64(opts.MaxAttempts)
	}
	if opts.InitialBackoff > 0 {
		s.initialBackoff = opts.InitialBackoff
	}
	return s
}

// get fetches a URL and parses the body, retrying transient failures with
// exponential backoff. Connection errors and retryable status codes (429,
// 5xx timeouts) are retried up to the attempt bound; anything else is
// permanent. A 404 body is parsed rather than rejected because dead detail
// pages render the not-found heading with a 404 status.
func (s *Scraper) get(url string) (*goquery.Document, error) {
	var doc *goquery.Document

	operation := func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", s.userAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
			err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			if !retryableStatus(resp.StatusCode) {
				return backoff.Permanent(err)
			}
			return err
		}

		d, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("parsing HTML: %w", err))
		}
		doc = d
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.initialBackoff

	notify := func(err error, wait time.Duration) {
		logger.IncrCounter("scraper.retries")
		logger.Warn("retrying request", logger.Fields{
			"url":  url,
			"wait": wait.String(),
		})
	}

	if err := backoff.RetryNotify(operation, backoff.WithMaxRetries(bo, s.maxAttempts-1), notify); err != nil {
		return nil, err
	}
	logger.IncrCounter("scraper.requests")
	return doc, nil
}

// CollectLinks pages through the search listing and returns the set of
// detail-page paths, sorted for stable output. It follows the next-page
// affordance until none remains; a listing page without the results
// container is fatal.
func (s *Scraper) CollectLinks() ([]string, error) {
	seen := make(map[string]bool)
	page := 1

	for {
		doc, err := s.get(fmt.Sprintf("%s/search/?page=%d", s.baseURL, page))
		if err != nil {
			return nil, fmt.Errorf("fetching listing page %d: %w", page, err)
		}

		results := doc.Find(`div[aria-label="Evaluation Registry search results"]`)
		if results.Length() == 0 {
			return nil, fmt.Errorf("listing page %d: %w", page, ErrResultsContainerMissing)
		}

		found := 0
		results.Find("a.govuk-link").Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || !detailPathPattern.MatchString(href) {
				return
			}
			found++
			seen[href] = true
		})

		logger.Debug("listing page fetched", logger.Fields{
			"page":  page,
			"links": found,
		})

		if doc.Find("div.govuk-pagination__next").Length() == 0 {
			break
		}
		page++
	}

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)

	logger.AddCounter("scraper.pages_crawled", int64(page))
	return links, nil
}

// FetchRecord fetches one detail page and extracts its labelled fields.
// A page carrying the not-found heading returns early with only the URL
// and title set; missing structure anywhere else is fatal.
func (s *Scraper) FetchRecord(path string) (*registry.Record, error) {
	url := s.baseURL + path

	doc, err := s.get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	rec := &registry.Record{URL: url}

	heading := doc.Find("h1.govuk-heading-l").First()
	if heading.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", url, ErrTitleMissing)
	}
	rec.Title = strings.TrimSpace(heading.Text())
	if rec.NotFound() {
		logger.Warn("page not found", logger.Fields{"url": url})
		return rec, nil
	}

	desc := doc.Find("p.govuk-body.govuk-grid-column-two-thirds").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.HasClass("govuk-!-padding-0")
	}).First()
	if desc.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", url, ErrDescriptionMissing)
	}
	rec.Description = strings.TrimSpace(desc.Text())

	var rowErr error
	doc.Find("div.govuk-summary-list__row").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		key := sel.Find("dt.govuk-summary-list__key").First()
		value := sel.Find("dd.govuk-summary-list__value").First()
		if key.Length() == 0 || value.Length() == 0 {
			rowErr = fmt.Errorf("%s: summary row %d: %w", url, i, ErrSummaryRowMalformed)
			return false
		}
		rec.Add(strings.TrimSpace(key.Text()), strings.TrimSpace(value.Text()))
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return rec, nil
}

// FetchRecords visits every collected link in turn. Invocations are
// independent; output order follows input order.
func (s *Scraper) FetchRecords(links []string) ([]*registry.Record, error) {
	records := make([]*registry.Record, 0, len(links))
	for _, link := range links {
		rec, err := s.FetchRecord(link)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// retryableStatus reports whether a status code indicates a temporary
// server-side condition.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
