package summarize

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"
)

var errEmptySummary = errors.New("summarizer returned empty output")

// Strategy identifies which path produced a summary. Callers use it to skip
// re-summarizing records that already carry an AI summary.
type Strategy string

const (
	StrategyAI       Strategy = "ai"
	StrategyFallback Strategy = "fallback"
)

// Request carries one candidate's text into the engine.
type Request struct {
	Title  string
	Text   string
	Source string
}

// Result is the engine's output. Summary is always valid (possibly empty for
// empty input) and Topics is never nil.
type Result struct {
	Summary  string
	Topics   []string
	Strategy Strategy
}

// Engine produces a bounded-length summary plus topic labels. The primary
// strategy calls the external AI service with bounded retries; the fallback
// is local, deterministic, and total.
type Engine struct {
	client     *Client
	wordBudget int
	maxRetries int
}

func NewEngine(client *Client, wordBudget, maxRetries int) *Engine {
	if wordBudget <= 0 {
		wordBudget = 100
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Engine{
		client:     client,
		wordBudget: wordBudget,
		maxRetries: maxRetries,
	}
}

// Run never fails: any primary-path error degrades to the fallback result.
func (e *Engine) Run(ctx context.Context, req Request) Result {
	text := strings.TrimSpace(req.Text)
	topics := heuristicTopics(req.Title, text, req.Source)

	if e.client.Configured() && text != "" {
		if summary, err := e.primary(ctx, req.Title, text); err == nil {
			return Result{
				Summary:  capWords(summary, e.wordBudget),
				Topics:   topics,
				Strategy: StrategyAI,
			}
		} else {
			slog.Warn("AI summarization failed, using fallback", "title", req.Title, "error", err)
		}
	}

	return Result{
		Summary:  fallbackSummary(req.Title, text, e.wordBudget),
		Topics:   topics,
		Strategy: StrategyFallback,
	}
}

func (e *Engine) primary(ctx context.Context, title, text string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(1.6, float64(attempt-1)) * float64(time.Second))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		summary, err := e.client.Summarize(ctx, title, text, e.wordBudget)
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary), nil
		}
		if err == nil {
			err = errEmptySummary
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", lastErr
}

// capWords enforces the word budget on AI output, which does not reliably
// honour the prompt's limit.
func capWords(s string, budget int) string {
	words := strings.Fields(s)
	if len(words) <= budget {
		return s
	}
	return strings.Join(words[:budget], " ") + "…"
}
