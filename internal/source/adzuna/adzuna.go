// Package adzuna implements a synchronous job-board adapter over the
// Adzuna search API. Searches complete inside StartSearch; results are
// buffered in the adapter and paged out through Fetch.
package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helio/keyword-mapper/internal/source"
	"github.com/helio/keyword-mapper/internal/types"
)

const (
	// AdapterName is stamped into each posting's SourceID.
	AdapterName = "adzuna"

	defaultBaseURL = "https://api.adzuna.com"
	defaultCountry = "br"

	requestTimeout = 30 * time.Second
)

// Adapter queries the Adzuna job search API. It is a synchronous provider:
// Poll always reports done for handles it issued.
type Adapter struct {
	appID   string
	appKey  string
	country string
	baseURL string
	client  *http.Client
	log     *zap.Logger

	// results buffers completed searches by handle ID until Fetch drains
	// them. The adapter is shared across concurrent runs.
	results *source.Buffer
}

// Option configures the adapter.
type Option func(*Adapter)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.baseURL = strings.TrimSuffix(u, "/") }
}

// WithCountry sets the Adzuna country code.
func WithCountry(c string) Option {
	return func(a *Adapter) { a.country = c }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// New creates an Adzuna adapter. Missing credentials make CredentialsOK
// report false so the collector skips this provider.
func New(appID, appKey string, log *zap.Logger, opts ...Option) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Adapter{
		appID:   appID,
		appKey:  appKey,
		country: defaultCountry,
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

func (a *Adapter) CredentialsOK() bool { return a.appID != "" && a.appKey != "" }

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Description string `json:"description"`
	RedirectURL string `json:"redirect_url"`
}

// StartSearch runs the search synchronously and buffers the results under
// the returned handle.
func (a *Adapter) StartSearch(ctx context.Context, role, location string, maxItems int) (source.Handle, error) {
	endpoint, err := a.buildSearchURL(role, location, maxItems)
	if err != nil {
		return source.Handle{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return source.Handle{}, source.NewError(source.KindTransient, AdapterName, "build search request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
			return source.Handle{}, source.NewError(source.KindTimeout, AdapterName, "search timed out", err)
		}
		return source.Handle{}, source.NewError(source.KindTransient, AdapterName, "search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return source.Handle{}, translateStatus(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return source.Handle{}, source.NewError(source.KindInvalidResponse, AdapterName, "decode search response", err)
	}

	now := time.Now().UTC()
	postings := make([]types.JobPosting, 0, len(payload.Results))
	for _, r := range payload.Results {
		raw, _ := json.Marshal(r)
		description := r.Description
		if description == "" {
			description = r.Title
		} else if r.Title != "" {
			description = r.Title + "\n" + description
		}
		postings = append(postings, types.JobPosting{
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: description,
			SourceID:    AdapterName,
			SourceURL:   r.RedirectURL,
			FetchedAt:   now,
			Raw:         raw,
		})
	}
	if len(postings) > maxItems {
		postings = postings[:maxItems]
	}

	id := a.results.Put(postings)
	a.log.Debug("search completed",
		zap.String("role", role),
		zap.String("location", location),
		zap.Int("postings", len(postings)),
	)
	return source.Handle{ID: id, Provider: AdapterName}, nil
}

// Poll reports done immediately: the search ran inside StartSearch.
func (a *Adapter) Poll(ctx context.Context, h source.Handle) (source.PollStatus, error) {
	n, ok := a.results.Len(h.ID)
	if !ok {
		return source.PollStatus{}, source.NewError(source.KindNotFound, AdapterName, "unknown search handle", nil)
	}
	return source.PollStatus{State: source.StateDone, ItemsSoFar: n}, nil
}

// Fetch pages out of the buffered results. Drained handles report no
// further items.
func (a *Adapter) Fetch(ctx context.Context, h source.Handle, offset, count int) ([]types.JobPosting, error) {
	return a.results.Page(h.ID, offset, count), nil
}

// Cancel drops the buffered results.
func (a *Adapter) Cancel(ctx context.Context, h source.Handle) error {
	a.results.Drop(h.ID)
	return nil
}

func (a *Adapter) buildSearchURL(role, location string, maxItems int) (string, error) {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return "", source.NewError(source.KindInvalidResponse, AdapterName, "parse base url", err)
	}
	u.Path = path.Join(u.Path, "v1", "api", "jobs", a.country, "search", "1")

	values := url.Values{}
	values.Set("app_id", a.appID)
	values.Set("app_key", a.appKey)
	values.Set("what", role)
	values.Set("results_per_page", strconv.Itoa(maxItems))
	values.Set("content-type", "application/json")
	if strings.EqualFold(location, "remote") {
		values.Set("where", "Remote")
		values.Set("distance", "0")
	} else if location != "" {
		values.Set("where", location)
	}

	u.RawQuery = values.Encode()
	return u.String(), nil
}

func translateStatus(code int, body string) error {
	cause := fmt.Errorf("status %d: %s", code, body)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return source.NewError(source.KindAuthFailed, AdapterName, "search rejected", cause)
	case code == http.StatusTooManyRequests || code >= 500:
		return source.NewError(source.KindTransient, AdapterName, "search failed", cause)
	default:
		return source.NewError(source.KindInvalidResponse, AdapterName, "search failed", cause)
	}
}
