package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Adapter turns one source descriptor into a list of candidates. A failure
// affects only its own source: the run carries on with the rest.
type Adapter interface {
	Run(ctx context.Context, sourceConfig *Config) ([]Candidate, error)
}

// FeedAdapter handles RSS/Atom sources.
type FeedAdapter struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
}

func NewFeedAdapter(client *http.Client, userAgent string) *FeedAdapter {
	return &FeedAdapter{
		client:    client,
		parser:    gofeed.NewParser(),
		userAgent: userAgent,
	}
}

func (a *FeedAdapter) Run(ctx context.Context, sourceConfig *Config) ([]Candidate, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(sourceConfig.Settings.Timeout)*time.Second)
	defer cancel()

	data, _, err := fetchURL(fetchCtx, a.client, sourceConfig.URL, a.userAgent,
		"application/rss+xml, application/atom+xml, application/xml, text/xml")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := a.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	candidates := make([]Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" && item.Title == "" {
			continue
		}
		candidates = append(candidates, a.normalizeItem(sourceConfig.Name, item))

		if len(candidates) >= sourceConfig.Settings.MaxItems {
			break
		}
	}

	return candidates, nil
}

func (a *FeedAdapter) normalizeItem(sourceName string, item *gofeed.Item) Candidate {
	c := Candidate{
		Source:  sourceName,
		Title:   item.Title,
		Link:    item.Link,
		Summary: item.Description,
	}

	if c.Summary == "" {
		c.Summary = item.Content
	}

	if item.PublishedParsed != nil {
		c.PublishedAt = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		c.PublishedAt = item.UpdatedParsed
	}

	// Prefer the source-supplied identifier; derive one otherwise.
	if item.GUID != "" {
		c.GUID = item.GUID
	} else {
		c.GUID = ResolveGUID(c.Link, c.Title)
	}

	return c
}
