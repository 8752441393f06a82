// Package linkedin implements a credential-free fallback adapter over
// LinkedIn's public guest job-search endpoint. The endpoint returns HTML
// job cards without authentication, with far less detail than the primary
// provider; it serves as a last resort when no credentialed adapter is
// configured.
package linkedin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/helio/keyword-mapper/internal/source"
	"github.com/helio/keyword-mapper/internal/types"
)

const (
	// AdapterName is stamped into each posting's SourceID.
	AdapterName = "linkedin_guest"

	defaultBaseURL = "https://www.linkedin.com"
	guestPath      = "/jobs-guest/jobs/api/seeMoreJobPostings/search"

	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	requestTimeout = 15 * time.Second
)

// Adapter scrapes the guest search endpoint. Synchronous: the search runs
// inside StartSearch and results are buffered for Fetch.
type Adapter struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger

	// results buffers completed searches by handle ID until Fetch drains
	// them. The adapter is shared across concurrent runs.
	results *source.Buffer
}

// Option configures the adapter.
type Option func(*Adapter)

// WithBaseURL overrides the endpoint host. Used in tests.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// New creates a guest adapter.
func New(log *zap.Logger, opts ...Option) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Adapter{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
		log:     log,
		results: source.NewBuffer(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Name() string { return AdapterName }

// CredentialsOK is always true: the guest endpoint needs no token.
func (a *Adapter) CredentialsOK() bool { return true }

// StartSearch fetches one page of guest job cards.
func (a *Adapter) StartSearch(ctx context.Context, role, location string, maxItems int) (source.Handle, error) {
	values := url.Values{}
	values.Set("keywords", role)
	values.Set("location", location)
	values.Set("start", "0")
	endpoint := a.baseURL + guestPath + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return source.Handle{}, source.NewError(source.KindTransient, AdapterName, "build search request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
			return source.Handle{}, source.NewError(source.KindTimeout, AdapterName, "search timed out", err)
		}
		return source.Handle{}, source.NewError(source.KindTransient, AdapterName, "search request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return source.Handle{}, source.NewError(source.KindTransient, AdapterName, "search failed", fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return source.Handle{}, source.NewError(source.KindInvalidResponse, AdapterName, "search failed", fmt.Errorf("status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return source.Handle{}, source.NewError(source.KindInvalidResponse, AdapterName, "parse search response", err)
	}

	now := time.Now().UTC()
	var postings []types.JobPosting
	doc.Find("div.job-search-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := strings.TrimSpace(card.Find("h3.job-search-card__title").Text())
		company := strings.TrimSpace(card.Find("h4.job-search-card__company-name").Text())
		loc := strings.TrimSpace(card.Find("span.job-search-card__location").Text())
		link, _ := card.Find("a.base-card__full-link").Attr("href")

		if title == "" && company == "" {
			return true
		}
		postings = append(postings, types.JobPosting{
			Title:       title,
			Company:     company,
			Location:    loc,
			Description: title,
			SourceID:    AdapterName,
			SourceURL:   link,
			FetchedAt:   now,
		})
		return len(postings) < maxItems
	})

	id := a.results.Put(postings)
	a.log.Debug("guest search completed",
		zap.String("role", role),
		zap.String("location", location),
		zap.Int("postings", len(postings)),
	)
	return source.Handle{ID: id, Provider: AdapterName}, nil
}

// Poll reports done immediately.
func (a *Adapter) Poll(ctx context.Context, h source.Handle) (source.PollStatus, error) {
	n, ok := a.results.Len(h.ID)
	if !ok {
		return source.PollStatus{}, source.NewError(source.KindNotFound, AdapterName, "unknown search handle", nil)
	}
	return source.PollStatus{State: source.StateDone, ItemsSoFar: n}, nil
}

// Fetch pages out of the buffered cards. Drained handles report no further
// items.
func (a *Adapter) Fetch(ctx context.Context, h source.Handle, offset, count int) ([]types.JobPosting, error) {
	return a.results.Page(h.ID, offset, count), nil
}

// Cancel drops the buffered results.
func (a *Adapter) Cancel(ctx context.Context, h source.Handle) error {
	a.results.Drop(h.ID)
	return nil
}
