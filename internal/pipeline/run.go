// Package pipeline orchestrates a keyword run: expansion, planning,
// collection, dedup, extraction, and consolidation, with progress events
// streamed along the way.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helio/keyword-mapper/internal/collector"
	"github.com/helio/keyword-mapper/internal/config"
	"github.com/helio/keyword-mapper/internal/consolidate"
	"github.com/helio/keyword-mapper/internal/db"
	"github.com/helio/keyword-mapper/internal/expansion"
	"github.com/helio/keyword-mapper/internal/extraction"
	"github.com/helio/keyword-mapper/internal/llm"
	"github.com/helio/keyword-mapper/internal/planner"
	"github.com/helio/keyword-mapper/internal/source"
	"github.com/helio/keyword-mapper/internal/stream"
	"github.com/helio/keyword-mapper/internal/types"
)

// Plan dimensions handed to the expanders. The planner trims further.
const (
	roleVariantsWanted     = 5
	locationVariantsWanted = 3
)

// Pipeline wires the run stages together. Build one per process and share
// it across runs; per-run state lives in Run's locals.
type Pipeline struct {
	queries   *expansion.QueryExpander
	locations *expansion.LocationExpander
	planner   *planner.Planner
	sources   *source.Registry
	clients   []llm.Client
	store     *db.DB
	log       *zap.Logger

	batchSize    int
	pollInterval time.Duration
	softTimeout  time.Duration
}

// Options configures a pipeline.
type Options struct {
	Sources *source.Registry
	Clients []llm.Client
	Store   *db.DB
	Log     *zap.Logger

	BatchSize    int
	PollInterval time.Duration
	SoftTimeout  time.Duration
}

// New builds a pipeline. The first client doubles as the location
// expander's model; with no clients, location expansion uses curated
// tables only.
func New(opts Options) *Pipeline {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	var locationModel llm.Client
	if len(opts.Clients) > 0 {
		locationModel = opts.Clients[0]
	}
	return &Pipeline{
		queries:      expansion.NewQueryExpander(log),
		locations:    expansion.NewLocationExpander(locationModel, log),
		planner:      planner.New(log),
		sources:      opts.Sources,
		clients:      opts.Clients,
		store:        opts.Store,
		log:          log,
		batchSize:    opts.BatchSize,
		pollInterval: opts.PollInterval,
		softTimeout:  opts.SoftTimeout,
	}
}

// Run executes one keyword run. Progress is published to sink (may be
// nil). On cancellation, the partial keyword map consolidated so far is
// returned with Cancelled set instead of an error. Extraction exhaustion
// and configuration problems fail the run.
func (p *Pipeline) Run(ctx context.Context, request types.SearchRequest, sink stream.Sink) (types.RankedKeywordMap, error) {
	started := time.Now()
	reporter := stream.NewReporter(sink)
	reporter.Emit(stream.EventStarting, fmt.Sprintf("searching %q near %q", request.TargetRole, request.BaseLocation), request)

	if err := config.ValidateRequest(&request); err != nil {
		reporter.Emit(stream.EventFailed, err.Error(), failurePayload("invalid_request", err))
		return types.RankedKeywordMap{}, err
	}

	adapter := p.sources.First()
	if adapter == nil {
		err := errors.New("no job source configured: set provider credentials")
		reporter.Emit(stream.EventFailed, err.Error(), failurePayload("no_source", err))
		return types.RankedKeywordMap{}, err
	}
	reporter.Emit(stream.EventConfigOK, "configuration validated", map[string]string{"source": adapter.Name()})

	runID := p.createRun(ctx, request)

	// Expansion and planning.
	roles := p.queries.ExpandRole(request.TargetRole, request.Area)
	if len(roles) > roleVariantsWanted {
		roles = roles[:roleVariantsWanted]
	}
	locations, err := p.locations.Expand(ctx, request.BaseLocation, request.WorkMode, locationVariantsWanted)
	if err != nil {
		reporter.Emit(stream.EventFailed, err.Error(), failurePayload("expansion_failed", err))
		p.completeRun(runID, db.StatusFailed)
		return types.RankedKeywordMap{}, err
	}
	plan := p.planner.BuildPlan(roles, locations, request.WorkMode)

	// Collection.
	reporter.Emit(stream.EventCollectionStarted, fmt.Sprintf("trying %d combinations on %s", len(plan), adapter.Name()), map[string]int{"combinations": len(plan)})

	collected := 0
	coll := collector.New(adapter, p.log,
		collector.WithPollInterval(p.pollInterval),
		collector.WithSoftTimeout(p.softTimeout),
		collector.WithBatchCallback(func(combination types.SearchCombination, postings []types.JobPosting) {
			collected += len(postings)
			reporter.Emit(stream.EventNewPostingsBatch,
				fmt.Sprintf("%d postings for %q in %q", len(postings), combination.Role, combination.Location),
				map[string]any{"count": len(postings), "role": combination.Role, "location": combination.Location})
			reporter.Emit(stream.EventCollectionStatus,
				fmt.Sprintf("%d of %d postings collected", collected, request.DesiredCount),
				map[string]int{"collected": collected, "desired": request.DesiredCount, "percent": percent(collected, request.DesiredCount)})
		}),
	)

	postings, audit, err := coll.Collect(ctx, request, plan)
	if err != nil {
		// Only cancellation escapes the collector.
		return p.finishCancelled(runID, reporter, nil, audit, request, started)
	}

	postings, dropped := collector.Dedup(postings)
	audit.Deduplicated = dropped
	reporter.Emit(stream.EventCollectionDone,
		fmt.Sprintf("collected %d postings (%d duplicates removed)", len(postings), dropped),
		map[string]int{"postings": len(postings), "deduplicated": dropped})
	p.saveAudit(runID, audit)

	// Extraction.
	extractor := extraction.New(p.clients, p.log,
		extraction.WithBatchSize(p.batchSize),
		extraction.WithProgress(func(done, total, succeeded int) {
			reporter.Emit(stream.EventExtractionProgress,
				fmt.Sprintf("batch %d of %d analyzed", done, total),
				map[string]int{"done": done, "total": total, "succeeded": succeeded, "percent": percent(done, total)})
		}),
	)

	extracted, err := extractor.Extract(ctx, request.TargetRole, postings)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return p.finishCancelled(runID, reporter, extracted, audit, request, started)
		}
		reporter.Emit(stream.EventFailed, err.Error(), failurePayload("extraction_unavailable", err))
		p.completeRun(runID, db.StatusFailed)
		return types.RankedKeywordMap{}, err
	}

	// Consolidation.
	result := consolidate.Build(consolidate.Input{
		Counts:           extracted.Counts,
		PostingsAnalyzed: len(postings),
		ModelUsed:        extracted.ModelUsed,
		Duration:         time.Since(started),
	})

	p.saveResult(runID, result)
	p.completeRun(runID, db.StatusCompleted)
	reporter.Emit(stream.EventCompleted,
		fmt.Sprintf("%d terms from %d postings", result.UniqueTerms, result.PostingsAnalyzed),
		result)
	p.log.Info("run completed",
		zap.String("role", request.TargetRole),
		zap.Int("postings", result.PostingsAnalyzed),
		zap.Int("terms", result.UniqueTerms),
		zap.Float64("duration_s", result.DurationS),
	)
	return result, nil
}

// finishCancelled consolidates whatever extraction produced before the
// cancellation and returns it as a partial result.
func (p *Pipeline) finishCancelled(runID uuid.UUID, reporter *stream.Reporter, extracted *extraction.Result, audit types.RunMetadata, request types.SearchRequest, started time.Time) (types.RankedKeywordMap, error) {
	counts := map[string]int{}
	model := ""
	if extracted != nil {
		counts = extracted.Counts
		model = extracted.ModelUsed
	}
	result := consolidate.Build(consolidate.Input{
		Counts:           counts,
		PostingsAnalyzed: postingsFromAudit(audit),
		ModelUsed:        model,
		Duration:         time.Since(started),
		Cancelled:        true,
	})

	p.saveAudit(runID, audit)
	p.saveResult(runID, result)
	p.completeRun(runID, db.StatusCancelled)
	reporter.Emit(stream.EventCompleted, "run cancelled, returning partial results", result)
	p.log.Warn("run cancelled", zap.String("role", request.TargetRole), zap.Int("terms", result.UniqueTerms))
	return result, nil
}

// Health is a readiness snapshot for the health endpoint.
type Health struct {
	Sources []string `json:"sources"`
	Models  []string `json:"models"`
}

// Health reports which job sources and LLM models are configured.
func (p *Pipeline) Health() Health {
	var h Health
	if p.sources != nil {
		for _, a := range p.sources.Available() {
			h.Sources = append(h.Sources, a.Name())
		}
	}
	for _, c := range p.clients {
		h.Models = append(h.Models, c.Model())
	}
	return h
}

func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := done * 100 / total
	if p > 100 {
		p = 100
	}
	return p
}

func postingsFromAudit(audit types.RunMetadata) int {
	total := 0
	for _, c := range audit.Combinations {
		total += c.Postings
	}
	return total - audit.Deduplicated
}

func failurePayload(kind string, err error) map[string]string {
	return map[string]string{"kind": kind, "message": err.Error()}
}

// Persistence helpers. The database is optional and failures downgrade to
// warnings; a run never fails because Postgres is down.

func (p *Pipeline) createRun(ctx context.Context, request types.SearchRequest) uuid.UUID {
	if p.store == nil {
		return uuid.Nil
	}
	runID, err := p.store.CreateRun(ctx, request)
	if err != nil {
		p.log.Warn("failed to create run record", zap.Error(err))
		return uuid.Nil
	}
	return runID
}

func (p *Pipeline) completeRun(runID uuid.UUID, status string) {
	if p.store == nil || runID == uuid.Nil {
		return
	}
	// Detached from the run context so a cancelled run still records its
	// final status.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.CompleteRun(ctx, runID, status); err != nil {
		p.log.Warn("failed to complete run record", zap.Error(err))
	}
}

func (p *Pipeline) saveAudit(runID uuid.UUID, audit types.RunMetadata) {
	if p.store == nil || runID == uuid.Nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.SaveAudit(ctx, runID, audit); err != nil {
		p.log.Warn("failed to save audit", zap.Error(err))
	}
}

func (p *Pipeline) saveResult(runID uuid.UUID, result types.RankedKeywordMap) {
	if p.store == nil || runID == uuid.Nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.SaveKeywordMap(ctx, runID, result); err != nil {
		p.log.Warn("failed to save keyword map", zap.Error(err))
	}
}
