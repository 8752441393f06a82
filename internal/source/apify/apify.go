// Package apify implements the asynchronous job-board adapter backed by an
// Apify actor scraping LinkedIn job searches.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/helio/keyword-mapper/internal/source"
	"github.com/helio/keyword-mapper/internal/types"
)

const (
	// AdapterName is stamped into each posting's SourceID.
	AdapterName = "linkedin_apify"

	// DefaultActorID runs the hosted LinkedIn jobs scraper.
	DefaultActorID = "curious_coder~linkedin-jobs-scraper"

	defaultBaseURL = "https://api.apify.com/v2"

	// lastWeekFilter keeps results fresh: LinkedIn's time-posted-range
	// query value for the last 7 days.
	lastWeekFilter = "r604800"

	requestTimeout = 30 * time.Second
)

// Adapter talks to the Apify actor-run API. Searches are asynchronous:
// StartSearch launches an actor run, Poll tracks it, Fetch pages through
// the run's default dataset.
type Adapter struct {
	token   string
	actorID string
	baseURL string
	client  *http.Client
	log     *zap.Logger

	// runs tracks in-flight actor runs by run ID: the default dataset
	// (learned from the run envelope or the first status poll that carries
	// it) and how many items the run was asked for. The adapter is shared
	// across concurrent runs, so access is guarded; entries are released
	// once the dataset is drained or the run is cancelled.
	mu   sync.Mutex
	runs map[string]runRef
}

type runRef struct {
	dataset string
	wanted  int
}

// Option configures the adapter.
type Option func(*Adapter)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// WithActorID overrides the actor that runs the search.
func WithActorID(id string) Option {
	return func(a *Adapter) { a.actorID = id }
}

// New creates an Apify adapter. token may be empty, in which case
// CredentialsOK reports false and the collector skips this provider.
func New(token string, log *zap.Logger, opts ...Option) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Adapter{
		token:   token,
		actorID: DefaultActorID,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
		log:     log,
		runs:    make(map[string]runRef),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Name() string { return AdapterName }

func (a *Adapter) CredentialsOK() bool { return a.token != "" }

// runInput is the actor input payload.
type runInput struct {
	URLs               []string   `json:"urls"`
	NumberOfJobsNeeded int        `json:"numberOfJobsNeeded"`
	Proxy              proxyInput `json:"proxy"`
}

type proxyInput struct {
	UseApifyProxy    bool     `json:"useApifyProxy"`
	ApifyProxyGroups []string `json:"apifyProxyGroups"`
}

type runEnvelope struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

// StartSearch launches an actor run for the given role and location. The
// search URL targets LinkedIn's job search with a last-week freshness
// filter.
func (a *Adapter) StartSearch(ctx context.Context, role, location string, maxItems int) (source.Handle, error) {
	searchURL := fmt.Sprintf(
		"https://www.linkedin.com/jobs/search/?keywords=%s&location=%s&f_TPR=%s",
		url.QueryEscape(role), url.QueryEscape(location), lastWeekFilter,
	)

	input := runInput{
		URLs:               []string{searchURL},
		NumberOfJobsNeeded: maxItems,
		Proxy: proxyInput{
			UseApifyProxy:    true,
			ApifyProxyGroups: []string{"RESIDENTIAL"},
		},
	}
	body, err := json.Marshal(input)
	if err != nil {
		return source.Handle{}, source.NewError(source.KindInvalidResponse, AdapterName, "encode actor input", err)
	}

	endpoint := fmt.Sprintf("%s/acts/%s/runs", a.baseURL, a.actorID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return source.Handle{}, source.NewError(source.KindTransient, AdapterName, "build run request", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return source.Handle{}, translateTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return source.Handle{}, translateStatus(resp.StatusCode, "start actor run")
	}

	var env runEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return source.Handle{}, source.NewError(source.KindInvalidResponse, AdapterName, "decode run response", err)
	}
	if env.Data.ID == "" {
		return source.Handle{}, source.NewError(source.KindInvalidResponse, AdapterName, "run response missing id", nil)
	}
	a.mu.Lock()
	a.runs[env.Data.ID] = runRef{dataset: env.Data.DefaultDatasetID, wanted: maxItems}
	a.mu.Unlock()

	a.log.Debug("actor run started",
		zap.String("run_id", env.Data.ID),
		zap.String("role", role),
		zap.String("location", location),
	)
	return source.Handle{ID: env.Data.ID, Provider: AdapterName}, nil
}

// Poll reads the actor run status. Apify reports SUCCEEDED, FAILED,
// ABORTED, TIMED-OUT, or a running state.
func (a *Adapter) Poll(ctx context.Context, h source.Handle) (source.PollStatus, error) {
	endpoint := fmt.Sprintf("%s/actor-runs/%s", a.baseURL, h.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return source.PollStatus{}, source.NewError(source.KindTransient, AdapterName, "build poll request", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return source.PollStatus{}, translateTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return source.PollStatus{}, translateStatus(resp.StatusCode, "poll actor run")
	}

	var env runEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return source.PollStatus{}, source.NewError(source.KindInvalidResponse, AdapterName, "decode poll response", err)
	}
	if env.Data.DefaultDatasetID != "" {
		a.mu.Lock()
		ref := a.runs[h.ID]
		ref.dataset = env.Data.DefaultDatasetID
		a.runs[h.ID] = ref
		a.mu.Unlock()
	}

	status := source.PollStatus{ProviderNote: env.Data.Status}
	switch env.Data.Status {
	case "SUCCEEDED":
		status.State = source.StateDone
	case "FAILED", "ABORTED":
		status.State = source.StateFailed
	case "TIMED-OUT":
		status.State = source.StateTimedOut
	default:
		status.State = source.StateRunning
	}
	return status, nil
}

// datasetItem is the actor's output record. Field names vary between
// actor versions, so each logical field has alternates.
type datasetItem struct {
	Title          string `json:"title"`
	JobTitle       string `json:"jobTitle"`
	Company        string `json:"company"`
	CompanyName    string `json:"companyName"`
	Location       string `json:"location"`
	Description    string `json:"description"`
	JobDescription string `json:"jobDescription"`
	Link           string `json:"link"`
	JobURL         string `json:"jobUrl"`
}

// Fetch pages through the run's dataset items. Draining the dataset
// releases the run's tracked state.
func (a *Adapter) Fetch(ctx context.Context, h source.Handle, offset, count int) ([]types.JobPosting, error) {
	a.mu.Lock()
	ref := a.runs[h.ID]
	a.mu.Unlock()

	datasetID := ref.dataset
	if datasetID == "" {
		// The dataset ID appears after the first poll; fall back to the
		// run ID, which Apify also accepts for default datasets.
		datasetID = h.ID
	}

	endpoint := fmt.Sprintf("%s/datasets/%s/items?offset=%s&limit=%s",
		a.baseURL, datasetID, strconv.Itoa(offset), strconv.Itoa(count))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, source.NewError(source.KindTransient, AdapterName, "build fetch request", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, translateTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp.StatusCode, "fetch dataset items")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, source.NewError(source.KindTransient, AdapterName, "read dataset response", err)
	}

	var items []datasetItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, source.NewError(source.KindInvalidResponse, AdapterName, "decode dataset items", err)
	}

	var rawItems []json.RawMessage
	// Best effort: keep each item's native payload alongside the mapped
	// posting. A second unmarshal of the same bytes cannot fail here.
	_ = json.Unmarshal(raw, &rawItems)

	now := time.Now().UTC()
	postings := make([]types.JobPosting, 0, len(items))
	for i, item := range items {
		p := types.JobPosting{
			Title:     firstNonEmpty(item.Title, item.JobTitle),
			Company:   firstNonEmpty(item.CompanyName, item.Company),
			Location:  item.Location,
			SourceID:  AdapterName,
			SourceURL: firstNonEmpty(item.Link, item.JobURL),
			FetchedAt: now,
		}
		p.Description = joinDescription(p.Title, firstNonEmpty(item.Description, item.JobDescription))
		if i < len(rawItems) {
			p.Raw = rawItems[i]
		}
		postings = append(postings, p)
	}

	// A short page means the dataset is drained; reaching the requested
	// item count means the caller stops fetching. Either way the run's
	// state is no longer needed.
	if len(items) < count || (ref.wanted > 0 && offset+len(items) >= ref.wanted) {
		a.release(h.ID)
	}
	return postings, nil
}

// Cancel aborts the actor run and releases its tracked state.
func (a *Adapter) Cancel(ctx context.Context, h source.Handle) error {
	a.release(h.ID)
	endpoint := fmt.Sprintf("%s/actor-runs/%s/abort", a.baseURL, h.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return source.NewError(source.KindTransient, AdapterName, "build abort request", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return translateTransport(err)
	}
	resp.Body.Close()
	return nil
}

func (a *Adapter) release(runID string) {
	a.mu.Lock()
	delete(a.runs, runID)
	a.mu.Unlock()
}

// joinDescription guarantees the description carries at least the title.
func joinDescription(title, description string) string {
	if description == "" {
		return title
	}
	if title == "" {
		return description
	}
	return title + "\n" + description
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func translateTransport(err error) error {
	if ctxErr := contextKind(err); ctxErr != nil {
		return ctxErr
	}
	return source.NewError(source.KindTransient, AdapterName, "request failed", err)
}

func contextKind(err error) error {
	if err == nil {
		return nil
	}
	if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
		return source.NewError(source.KindTimeout, AdapterName, "request timed out", err)
	}
	return nil
}

func translateStatus(code int, op string) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return source.NewError(source.KindAuthFailed, AdapterName, op, fmt.Errorf("status %d", code))
	case code == http.StatusPaymentRequired:
		return source.NewError(source.KindQuotaExceeded, AdapterName, op, fmt.Errorf("status %d", code))
	case code == http.StatusNotFound:
		return source.NewError(source.KindNotFound, AdapterName, op, fmt.Errorf("status %d", code))
	case code == http.StatusTooManyRequests || code >= 500:
		return source.NewError(source.KindTransient, AdapterName, op, fmt.Errorf("status %d", code))
	default:
		return source.NewError(source.KindInvalidResponse, AdapterName, op, fmt.Errorf("status %d", code))
	}
}
