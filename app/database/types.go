package database

import (
	"time"
)

// Record is the persisted, deduplicated representation of one logical item.
// AISummary is nil until the AI path succeeds once; after that it survives
// routine re-ingestion unless a forced refresh is requested.
type Record struct {
	GUID               string
	Source             string
	Title              string
	Link               string
	PublishedAt        *time.Time
	Content            string
	Summary            string // heuristic/fallback summary, always present
	Topics             []string
	AISummary          *string
	AISummaryUpdatedAt *time.Time
	FirstSeenAt        time.Time
	UpdatedAt          time.Time
}

// Tag is a user-scoped association of a record to an org/site/control triple.
// SiteID and ControlID are nil when the dimension is not specified.
type Tag struct {
	ID        int64
	UserEmail string
	ItemGUID  string
	OrgID     int64
	SiteID    *int64
	ControlID *int64
	CreatedAt time.Time
}

type Folder struct {
	ID        int64
	UserEmail string
	Name      string
	CreatedAt time.Time
}

type SavedItem struct {
	ID        int64
	UserEmail string
	ItemGUID  string
	FolderID  *int64
	Note      string
	CreatedAt time.Time
}
