package ingest

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunReport accumulates the outcome of one ingestion run. Workers update it
// concurrently; read the fields only after Run returns.
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	mu                sync.Mutex
	CandidatesSeen    int
	Created           int
	Updated           int
	Filtered          int
	Skipped           int
	AISummaries       int
	FallbackSummaries int
	SourceFailures    map[string]string
}

func newRunReport() *RunReport {
	return &RunReport{
		RunID:          uuid.NewString(),
		StartedAt:      time.Now().UTC(),
		SourceFailures: map[string]string{},
	}
}

func (r *RunReport) addCandidates(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CandidatesSeen += n
}

func (r *RunReport) addCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Created++
}

func (r *RunReport) addUpdated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updated++
}

func (r *RunReport) addFiltered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Filtered++
}

func (r *RunReport) addSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped++
}

func (r *RunReport) addAISummary() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AISummaries++
}

func (r *RunReport) addFallbackSummary() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FallbackSummaries++
}

func (r *RunReport) setSourceFailure(sourceName string, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SourceFailures[sourceName] = reason
}
