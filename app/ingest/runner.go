package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mjwhitby/regwatch/app/cfg"
	"github.com/mjwhitby/regwatch/app/database"
	"github.com/mjwhitby/regwatch/app/extract"
	"github.com/mjwhitby/regwatch/app/source"
	"github.com/mjwhitby/regwatch/app/summarize"
)

// Runner executes one ingestion pass over every enabled source. Sources are
// processed by a bounded worker pool; one source failing is recorded in the
// report and never aborts the others.
type Runner struct {
	configCache *source.ConfigCache
	adapters    map[string]source.Adapter
	filterer    *source.Filterer
	extractor   *extract.Extractor
	engine      *summarize.Engine
	records     *database.RecordRepository
	client      *http.Client

	userAgent    string
	workerCount  int
	sinceDays    int
	forceRefresh bool
}

func NewRunner(
	configCache *source.ConfigCache,
	adapters map[string]source.Adapter,
	filterer *source.Filterer,
	extractor *extract.Extractor,
	engine *summarize.Engine,
	records *database.RecordRepository,
	client *http.Client,
) *Runner {
	c := cfg.Get()
	workerCount := c.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}
	return &Runner{
		configCache:  configCache,
		adapters:     adapters,
		filterer:     filterer,
		extractor:    extractor,
		engine:       engine,
		records:      records,
		client:       client,
		userAgent:    c.UserAgent,
		workerCount:  workerCount,
		sinceDays:    c.SinceDays,
		forceRefresh: c.ForceRefresh,
	}
}

// Run ingests all enabled sources and returns the per-run report. The only
// fatal condition is having no sources at all.
func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	configs := r.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		return nil, ErrNoSources
	}

	report := newRunReport()
	slog.Info("Ingestion run started", "run_id", report.RunID, "sources", len(configs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workerCount)

	for name, sourceConfig := range configs {
		g.Go(func() error {
			if err := r.processSource(gctx, sourceConfig, report); err != nil {
				slog.Error("Source failed", "source", name, "error", err)
				report.setSourceFailure(name, err.Error())
			}
			return nil
		})
	}

	g.Wait()
	report.Duration = time.Since(report.StartedAt)

	slog.Info("Ingestion run finished",
		"run_id", report.RunID,
		"duration", report.Duration.Round(time.Millisecond),
		"candidates", report.CandidatesSeen,
		"created", report.Created,
		"updated", report.Updated,
		"filtered", report.Filtered,
		"skipped", report.Skipped,
		"failed_sources", len(report.SourceFailures))

	return report, nil
}

func (r *Runner) processSource(ctx context.Context, sourceConfig *source.Config, report *RunReport) error {
	adapter, ok := r.adapters[sourceConfig.Kind]
	if !ok {
		return fmt.Errorf("no adapter for source kind: %s", sourceConfig.Kind)
	}

	candidates, err := adapter.Run(ctx, sourceConfig)
	if err != nil {
		return fmt.Errorf("failed to collect candidates: %w", err)
	}

	candidates = r.filterer.Run(candidates, sourceConfig)
	report.addCandidates(len(candidates))

	cutoff := r.sinceCutoff()

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if candidate.IsFiltered {
			slog.Debug("Candidate filtered", "source", sourceConfig.Name,
				"title", candidate.Title, "reason", candidate.FilterReason)
			report.addFiltered()
			continue
		}

		if cutoff != nil && candidate.PublishedAt != nil && candidate.PublishedAt.Before(*cutoff) {
			report.addSkipped()
			continue
		}

		if err := r.processCandidate(ctx, candidate, report); err != nil {
			return fmt.Errorf("failed to process candidate %q: %w", candidate.Title, err)
		}
	}

	return nil
}

func (r *Runner) processCandidate(ctx context.Context, candidate source.Candidate, report *RunReport) error {
	exists, err := r.records.Exists(candidate.GUID)
	if err != nil {
		return err
	}

	// A known guid without a forced refresh only gets a metadata touch-up.
	// Skipping the fetch and the summarizer here is what makes re-ingesting
	// unchanged feeds cheap.
	if exists && !r.forceRefresh {
		_, err := r.records.Upsert(database.Record{
			GUID:        candidate.GUID,
			Source:      candidate.Source,
			Title:       candidate.Title,
			Link:        candidate.Link,
			PublishedAt: candidate.PublishedAt,
		}, false)
		if err != nil {
			return err
		}
		report.addUpdated()
		return nil
	}

	text := r.resolveText(ctx, candidate)

	result := r.engine.Run(ctx, summarize.Request{
		Title:  candidate.Title,
		Text:   text,
		Source: candidate.Source,
	})

	created, err := r.records.Upsert(database.Record{
		GUID:        candidate.GUID,
		Source:      candidate.Source,
		Title:       candidate.Title,
		Link:        candidate.Link,
		PublishedAt: candidate.PublishedAt,
		Content:     text,
		Summary:     result.Summary,
		Topics:      result.Topics,
	}, r.forceRefresh)
	if err != nil {
		return err
	}

	if result.Strategy == summarize.StrategyAI {
		if err := r.records.SetAISummary(candidate.GUID, result.Summary, r.forceRefresh); err != nil {
			return err
		}
		report.addAISummary()
	} else {
		report.addFallbackSummary()
	}

	if created {
		report.addCreated()
	} else {
		report.addUpdated()
	}
	return nil
}

// resolveText prefers the body the source already delivered. Only sources
// that publish bare links cost an extra fetch per candidate.
func (r *Runner) resolveText(ctx context.Context, candidate source.Candidate) string {
	if candidate.Content != "" {
		return r.extractor.Run([]byte(candidate.Content), "text/html", candidate.Link)
	}

	if candidate.Link != "" {
		data, contentType, err := source.FetchDocument(ctx, r.client, candidate.Link, r.userAgent)
		if err != nil {
			slog.Warn("Failed to fetch article body", "source", candidate.Source,
				"link", candidate.Link, "error", err)
		} else if text := r.extractor.Run(data, contentType, candidate.Link); text != "" {
			return text
		}
	}

	return candidate.Summary
}

func (r *Runner) sinceCutoff() *time.Time {
	if r.sinceDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -r.sinceDays)
	return &cutoff
}
