package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageAdapter scrapes HTML listing pages (publication libraries, media
// centres) that expose no feed. It walks listing cards and JSON-LD blocks
// and follows pagination up to the configured page bound.
type PageAdapter struct {
	client    *http.Client
	userAgent string
}

func NewPageAdapter(client *http.Client, userAgent string) *PageAdapter {
	return &PageAdapter{
		client:    client,
		userAgent: userAgent,
	}
}

var cardSelectors = []string{
	"article a[href]",
	"main a[href]",
	"li a[href]",
	"table a[href]",
}

func (a *PageAdapter) Run(ctx context.Context, sourceConfig *Config) ([]Candidate, error) {
	var candidates []Candidate
	seen := make(map[string]bool)

	pageURL := sourceConfig.URL
	for page := 1; page <= sourceConfig.Settings.MaxPages; page++ {
		fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(sourceConfig.Settings.Timeout)*time.Second)
		data, _, err := fetchURL(fetchCtx, a.client, pageURL, a.userAgent, "text/html")
		cancel()
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("failed to fetch page: %w", err)
			}
			// Later pages are best-effort.
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("failed to parse page: %w", err)
			}
			break
		}

		found := a.extractCards(doc, sourceConfig, pageURL, seen, &candidates)
		found += a.extractJSONLD(doc, sourceConfig, pageURL, seen, &candidates)

		if found == 0 || len(candidates) >= sourceConfig.Settings.MaxItems {
			break
		}

		nextURL := a.findNextPage(doc, pageURL, page)
		if nextURL == "" || nextURL == pageURL {
			break
		}
		pageURL = nextURL
	}

	if len(candidates) > sourceConfig.Settings.MaxItems {
		candidates = candidates[:sourceConfig.Settings.MaxItems]
	}

	return candidates, nil
}

func (a *PageAdapter) extractCards(doc *goquery.Document, sourceConfig *Config, pageURL string, seen map[string]bool, out *[]Candidate) int {
	found := 0
	for _, sel := range cardSelectors {
		doc.Find(sel).Each(func(_ int, anchor *goquery.Selection) {
			href, ok := anchor.Attr("href")
			if !ok || strings.HasPrefix(href, "#") {
				return
			}
			if _, ok := anchor.Attr("rel"); ok {
				return
			}
			title := strings.TrimSpace(anchor.Text())
			if title == "" || isNavText(title) {
				return
			}

			link := resolveRef(pageURL, href)
			if link == "" || seen[link] {
				return
			}
			seen[link] = true

			// Walk up a few levels to the enclosing card for a date.
			container := anchor
			for i := 0; i < 3; i++ {
				if parent := container.Parent(); parent.Length() > 0 {
					container = parent
				}
			}
			publishedAt := findCardDate(container)

			*out = append(*out, Candidate{
				Source:      sourceConfig.Name,
				GUID:        ResolveGUID(link, title),
				Title:       title,
				Link:        link,
				PublishedAt: publishedAt,
			})
			found++
		})
	}
	return found
}

// jsonldDoc covers the NewsArticle/BlogPosting shapes that listing pages
// embed for search engines.
type jsonldDoc struct {
	Type          string `json:"@type"`
	URL           string `json:"url"`
	Headline      string `json:"headline"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	DatePublished string `json:"datePublished"`
	DateModified  string `json:"dateModified"`
}

func (a *PageAdapter) extractJSONLD(doc *goquery.Document, sourceConfig *Config, pageURL string, seen map[string]bool, out *[]Candidate) int {
	found := 0
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, script *goquery.Selection) {
		raw := strings.TrimSpace(script.Text())
		if raw == "" {
			return
		}

		var docs []jsonldDoc
		if strings.HasPrefix(raw, "[") {
			if err := json.Unmarshal([]byte(raw), &docs); err != nil {
				return
			}
		} else {
			var single jsonldDoc
			if err := json.Unmarshal([]byte(raw), &single); err != nil {
				return
			}
			docs = []jsonldDoc{single}
		}

		for _, d := range docs {
			kind := strings.ToLower(d.Type)
			if kind != "newsarticle" && kind != "blogposting" {
				continue
			}
			title := strings.TrimSpace(d.Headline)
			if title == "" {
				title = strings.TrimSpace(d.Name)
			}
			link := resolveRef(pageURL, d.URL)
			if title == "" || link == "" || seen[link] {
				continue
			}
			seen[link] = true

			c := Candidate{
				Source:  sourceConfig.Name,
				GUID:    ResolveGUID(link, title),
				Title:   title,
				Link:    link,
				Summary: d.Description,
			}
			if ts := parseCardDate(d.DatePublished); ts != nil {
				c.PublishedAt = ts
			} else if ts := parseCardDate(d.DateModified); ts != nil {
				c.PublishedAt = ts
			}

			*out = append(*out, c)
			found++
		}
	})
	return found
}

// isNavText weeds out pagination and skip links that share markup with
// listing cards.
func isNavText(title string) bool {
	switch strings.ToLower(title) {
	case "next", "previous", "prev", "first", "last", "more", "skip to content":
		return true
	}
	for _, r := range title {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (a *PageAdapter) findNextPage(doc *goquery.Document, currentURL string, page int) string {
	if href, ok := doc.Find("a[rel='next']").First().Attr("href"); ok {
		return resolveRef(currentURL, href)
	}

	var next string
	doc.Find("a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(anchor.Text()), "next") {
			if href, ok := anchor.Attr("href"); ok {
				next = resolveRef(currentURL, href)
				return false
			}
		}
		return true
	})
	if next != "" {
		return next
	}

	// Fall back to incrementing ?page=. The caller stops when a page
	// yields no cards.
	u, err := url.Parse(currentURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page+1))
	u.RawQuery = q.Encode()
	return u.String()
}

func resolveRef(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

var cardDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2 January 2006",
	"02 Jan 2006",
}

func parseCardDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range cardDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func findCardDate(container *goquery.Selection) *time.Time {
	timeEl := container.Find("time").First()
	if timeEl.Length() == 0 {
		return nil
	}
	if dt, ok := timeEl.Attr("datetime"); ok {
		if ts := parseCardDate(dt); ts != nil {
			return ts
		}
	}
	return parseCardDate(timeEl.Text())
}
