package extract

import (
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Guidance update</title></head>
<body>
<nav><a href="#main">Skip to main content</a></nav>
<article>
<h1>Updated CAF assessment guidance</h1>
<p>The regulator has published updated guidance for operators of essential services.
The changes clarify how outcome B2.a should be assessed during inspections, and what
evidence operators are expected to retain between assessment cycles.</p>
<p>Operators should review the updated profiles before their next engagement. The
guidance applies from October 2026 and replaces the interim position published last
year. Supervisory teams will use the new profiles in all scheduled assessments.</p>
</article>
<script>console.log("tracking")</script>
</body></html>`

func TestExtractor_Run_HTML(t *testing.T) {
	e := NewExtractor()

	text := e.Run([]byte(articleHTML), "text/html", "https://example.com/guidance")

	if text == "" {
		t.Fatal("Expected non-empty text from article HTML")
	}
	if !strings.Contains(text, "updated guidance for operators") {
		t.Errorf("Expected article body in output, got: %s", text)
	}
	if strings.Contains(text, "console.log") {
		t.Error("Expected script content to be stripped")
	}
}

func TestExtractor_Run_EmptyInput(t *testing.T) {
	e := NewExtractor()

	if text := e.Run(nil, "text/html", "https://example.com"); text != "" {
		t.Errorf("Expected empty output for empty input, got: %q", text)
	}
}

func TestExtractor_Run_MalformedPDF(t *testing.T) {
	e := NewExtractor()

	// A PDF magic prefix with garbage behind it must not panic or error,
	// just yield nothing.
	data := []byte("%PDF-1.7 this is not a real pdf")
	if text := e.Run(data, "application/pdf", "https://example.com/report.pdf"); text != "" {
		t.Errorf("Expected empty output for malformed PDF, got: %q", text)
	}
}

func TestIsPDF(t *testing.T) {
	if !isPDF([]byte("%PDF-1.4"), "", "https://example.com/doc") {
		t.Error("Expected magic-byte detection")
	}
	if !isPDF([]byte("data"), "application/pdf", "https://example.com/doc") {
		t.Error("Expected content-type detection")
	}
	if !isPDF([]byte("data"), "", "https://example.com/annual-report.PDF") {
		t.Error("Expected path-extension detection")
	}
	if isPDF([]byte("<html>"), "text/html", "https://example.com/page") {
		t.Error("Expected HTML to not be detected as PDF")
	}
}

func TestCleanText_DropsBoilerplate(t *testing.T) {
	input := strings.Join([]string{
		"Skip to main content",
		"Main navigation",
		"Sign in",
		"The regulator has published updated guidance for operators of essential services, clarifying how outcomes are assessed.",
		"Operators should review the updated profiles before their next engagement with supervisory teams in October.",
		"Accept all cookies",
		"Share this page",
	}, "\n")

	got := cleanText(input)

	if strings.Contains(got, "Skip to main content") {
		t.Error("Expected boilerplate line to be dropped")
	}
	if strings.Contains(got, "cookies") {
		t.Error("Expected cookie banner line to be dropped")
	}
	if !strings.Contains(got, "updated guidance for operators") {
		t.Errorf("Expected substantive lines to survive, got: %s", got)
	}
}

func TestCleanText_RevertsWhenOverCleaned(t *testing.T) {
	// Every line here is label-like and would be dropped, leaving almost
	// nothing. The raw text must come back instead.
	input := "Menu\nHome\nAbout\nContact\nNews"

	got := cleanText(input)

	if got != input {
		t.Errorf("Expected raw text back when cleaning strips too much, got: %q", got)
	}
}

func TestCleanText_CapsLength(t *testing.T) {
	input := strings.Repeat("This sentence pads the text out towards the cap. ", 600)

	got := cleanText(input)

	if len(got) > maxTextChars {
		t.Errorf("Expected output capped at %d chars, got %d", maxTextChars, len(got))
	}
}

func TestCleanText_Empty(t *testing.T) {
	if got := cleanText("   \n\t  "); got != "" {
		t.Errorf("Expected empty output, got: %q", got)
	}
}
