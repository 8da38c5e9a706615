package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mjwhitby/regwatch/app/cfg"
	"github.com/mjwhitby/regwatch/app/database"
	"github.com/mjwhitby/regwatch/app/extract"
	"github.com/mjwhitby/regwatch/app/ingest"
	"github.com/mjwhitby/regwatch/app/source"
	"github.com/mjwhitby/regwatch/app/summarize"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if c.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting regwatch", "version", cfg.GetVersion())

	db, err := database.NewConnection(c.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", c.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", c.DBPath, "schema_version", version, "dirty", dirty)

	configCache := source.NewConfigCache(c.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "dir", c.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "dir", c.SourcesDir, "count", configCache.GetConfigCount())

	httpClient := &http.Client{Timeout: 60 * time.Second}

	adapters := map[string]source.Adapter{
		source.KindFeed: source.NewFeedAdapter(httpClient, c.UserAgent),
		source.KindPage: source.NewPageAdapter(httpClient, c.UserAgent),
	}

	aiClient := &summarize.Client{
		BaseURL: c.AIBaseURL,
		APIKey:  c.AIAPIKey,
		Model:   c.AIModel,
		Timeout: time.Duration(c.AITimeout) * time.Second,
	}
	if !aiClient.Configured() {
		slog.Warn("AI summarization disabled, no API key configured")
	}

	runner := ingest.NewRunner(
		configCache,
		adapters,
		source.NewFilterer(c.BypassFilters),
		extract.NewExtractor(),
		summarize.NewEngine(aiClient, c.WordBudget, c.AIMaxRetries),
		database.NewRecordRepository(db),
		httpClient,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.RunTimeout)*time.Second)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received signal, cancelling run", "signal", sig.String())
		cancel()
	}()

	report, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, ingest.ErrNoSources) {
			slog.Error("Nothing to ingest", "dir", c.SourcesDir, "error", err)
		} else {
			slog.Error("Ingestion run failed", "error", err)
		}
		os.Exit(1)
	}

	for name, reason := range report.SourceFailures {
		slog.Warn("Source did not complete", "source", name, "reason", reason)
	}

	slog.Info("Run complete",
		"run_id", report.RunID,
		"created", report.Created,
		"updated", report.Updated,
		"filtered", report.Filtered,
		"skipped", report.Skipped,
		"ai_summaries", report.AISummaries,
		"fallback_summaries", report.FallbackSummaries)

	if len(report.SourceFailures) > 0 {
		os.Exit(2)
	}
}
