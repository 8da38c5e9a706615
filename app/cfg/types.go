package cfg

type Cfg struct {
	// Storage
	DBPath string

	// Ingestion
	SourcesDir    string
	WorkerCount   int
	SinceDays     int
	ForceRefresh  bool
	BypassFilters bool
	RunTimeout    int // seconds, whole run

	// Summarization
	WordBudget   int
	AIBaseURL    string
	AIAPIKey     string
	AIModel      string
	AITimeout    int // seconds, per attempt
	AIMaxRetries int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
