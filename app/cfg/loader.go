package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"./regwatch.db" description:"Path to the SQLite database file"`

	// Ingestion
	SourcesDir    string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	WorkerCount   int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of concurrent source workers"`
	SinceDays     int    `long:"since" env:"SINCE_DAYS" description:"Only ingest items published in the last N days (0 = full history)"`
	ForceRefresh  bool   `long:"force-refresh" env:"FORCE_REFRESH" description:"Recompute AI summaries for records that already have one"`
	BypassFilters bool   `long:"bypass-filters" env:"BYPASS_FILTERS" description:"Disable include/exclude filtering (debugging aid)"`
	RunTimeout    int    `long:"run-timeout" env:"RUN_TIMEOUT" default:"1800" description:"Whole-run timeout in seconds"`

	// Summarization
	WordBudget   int    `long:"word-budget" env:"WORD_BUDGET" default:"100" description:"Maximum summary length in words"`
	AIBaseURL    string `long:"ai-base-url" env:"AI_BASE_URL" default:"https://api.openai.com/v1/chat/completions" description:"Chat completions endpoint for AI summaries"`
	AIAPIKey     string `long:"ai-api-key" env:"AI_API_KEY" description:"API key for the AI summarizer (empty = fallback only)"`
	AIModel      string `long:"ai-model" env:"AI_MODEL" default:"gpt-4o-mini" description:"Model name for AI summaries"`
	AITimeout    int    `long:"ai-timeout" env:"AI_TIMEOUT" default:"30" description:"Per-attempt AI request timeout in seconds"`
	AIMaxRetries int    `long:"ai-max-retries" env:"AI_MAX_RETRIES" default:"2" description:"Retries before falling back to the local summarizer"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RegWatch/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:        raw.DBPath,
		SourcesDir:    raw.SourcesDir,
		WorkerCount:   raw.WorkerCount,
		SinceDays:     raw.SinceDays,
		ForceRefresh:  raw.ForceRefresh,
		BypassFilters: raw.BypassFilters,
		RunTimeout:    raw.RunTimeout,
		WordBudget:    raw.WordBudget,
		AIBaseURL:     raw.AIBaseURL,
		AIAPIKey:      raw.AIAPIKey,
		AIModel:       raw.AIModel,
		AITimeout:     raw.AITimeout,
		AIMaxRetries:  raw.AIMaxRetries,
		UserAgent:     raw.UserAgent,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}
