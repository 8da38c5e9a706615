package source

import (
	"strings"
	"testing"
)

func TestCanonicalLink_StripsTrackingParams(t *testing.T) {
	link := "https://Example.GOV.uk/News/Item/?utm_source=rss&utm_medium=feed&fbclid=abc123&page=2"

	result := CanonicalLink(link)

	if strings.Contains(result, "utm_source") {
		t.Errorf("Expected utm_source to be stripped, got: %s", result)
	}
	if strings.Contains(result, "fbclid") {
		t.Errorf("Expected fbclid to be stripped, got: %s", result)
	}
	if !strings.Contains(result, "page=2") {
		t.Errorf("Expected non-tracking param to survive, got: %s", result)
	}
	if !strings.Contains(result, "example.gov.uk") {
		t.Errorf("Expected lowercased host, got: %s", result)
	}
}

func TestCanonicalLink_DropsFragmentAndTrailingSlash(t *testing.T) {
	result := CanonicalLink("https://example.com/guidance/#main-content")

	if strings.Contains(result, "#") {
		t.Errorf("Expected fragment to be dropped, got: %s", result)
	}
	if strings.HasSuffix(result, "/") {
		t.Errorf("Expected trailing slash to be trimmed, got: %s", result)
	}
}

func TestCanonicalLink_UnparseableInput(t *testing.T) {
	result := CanonicalLink("  not a url at all  ")

	if result != "not a url at all" {
		t.Errorf("Expected trimmed input back, got: %q", result)
	}
}

func TestResolveGUID_StableAcrossTrackingVariants(t *testing.T) {
	a := ResolveGUID("https://example.com/item?utm_campaign=1", "New CAF guidance published")
	b := ResolveGUID("https://example.com/item?utm_campaign=2", "New CAF guidance published")

	if a != b {
		t.Errorf("Expected identical GUIDs for tracking-param variants, got %s and %s", a, b)
	}
}

func TestResolveGUID_StableAcrossWhitespaceVariants(t *testing.T) {
	a := ResolveGUID("https://example.com/item", "New   CAF\tguidance")
	b := ResolveGUID("https://example.com/item", "New CAF guidance")

	if a != b {
		t.Errorf("Expected identical GUIDs for whitespace variants, got %s and %s", a, b)
	}
}

func TestResolveGUID_DifferentItemsDiffer(t *testing.T) {
	a := ResolveGUID("https://example.com/item-1", "First item")
	b := ResolveGUID("https://example.com/item-2", "First item")

	if a == b {
		t.Error("Expected different links to produce different GUIDs")
	}

	c := ResolveGUID("https://example.com/item-1", "Second item")
	if a == c {
		t.Error("Expected different titles to produce different GUIDs")
	}
}

func TestResolveGUID_Format(t *testing.T) {
	guid := ResolveGUID("https://example.com/item", "Item")

	if len(guid) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(guid))
	}
}
