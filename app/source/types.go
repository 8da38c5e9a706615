package source

import (
	"time"
)

// Source kinds.
const (
	KindFeed = "feed"
	KindPage = "page"
)

// Candidate is a freshly fetched, unpersisted item awaiting dedup/merge.
type Candidate struct {
	Source      string
	GUID        string
	Title       string
	Link        string
	PublishedAt *time.Time
	Summary     string // source-provided summary/description, may be HTML
	Content     string // extracted plain text, filled downstream

	IsFiltered   bool
	FilterReason string
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Kind     string         `yaml:"kind"` // "feed" or "page"
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled  bool `yaml:"enabled"`
	Timeout  int  `yaml:"timeout"`   // seconds
	MaxItems int  `yaml:"max_items"` // per run
	MaxPages int  `yaml:"max_pages"` // page-kind pagination bound
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
