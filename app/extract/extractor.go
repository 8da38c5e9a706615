package extract

import (
	"bytes"
	"log/slog"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

const (
	maxPDFPages  = 8
	maxTextChars = 12000
)

// Extractor resolves best-effort plain text from HTML or PDF payloads.
// It never fails: malformed or undecodable content yields an empty string
// and downstream stages degrade the summary accordingly.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Run(data []byte, contentType, sourceURL string) string {
	if len(data) == 0 {
		return ""
	}

	var text string
	if isPDF(data, contentType, sourceURL) {
		text = e.pdfText(data)
	} else {
		text = e.htmlText(data, sourceURL)
	}

	return cleanText(text)
}

func isPDF(data []byte, contentType, sourceURL string) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	if u, err := url.Parse(sourceURL); err == nil && strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF"))
}

func (e *Extractor) htmlText(data []byte, sourceURL string) string {
	pageURL, _ := url.Parse(sourceURL)

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return article.TextContent
	}

	// Readability gives up on sparse or malformed markup; fall back to a
	// plain tag-stripping walk.
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}

func (e *Extractor) pdfText(data []byte) string {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("PDF extraction panicked", "recovered", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var out []string
	pages := reader.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}

	return strings.Join(out, "\n")
}
