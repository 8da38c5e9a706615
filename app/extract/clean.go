package extract

import (
	"regexp"
	"strings"
)

// Navigation and cookie-banner fragments that survive tag stripping on
// government and regulator sites.
var boilerplateRe = regexp.MustCompile(strings.Join([]string{
	`\bskip to (main )?content\b`,
	`\b(main )?navigation\b`,
	`\b(show/?hide|toggle) menu\b`,
	`\b(sign in|register|log ?in|log ?out)\b`,
	`\b(cookie(s)? (banner|settings|preferences)|accept all cookies)\b`,
	`\buser account menu\b`,
	`\bshare (this )?page\b`,
	`\brelated (content|links)\b`,
}, "|"))

var (
	spaceRe   = regexp.MustCompile(`[ \t]+`)
	blankRe   = regexp.MustCompile(`\n{3,}`)
	newlineRe = regexp.MustCompile(`\r\n?`)
)

// cleanText drops boilerplate lines and normalizes whitespace. When cleaning
// strips almost everything, it keeps the raw text instead: a noisy summary
// input beats an empty one.
func cleanText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	raw := spaceRe.ReplaceAllString(text, " ")
	raw = newlineRe.ReplaceAllString(raw, "\n")

	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) <= 3 {
			continue
		}
		if boilerplateRe.MatchString(strings.ToLower(line)) {
			continue
		}
		// Short label-like lines without terminal punctuation are menu noise.
		if len(line) <= 18 && !strings.HasSuffix(line, ".") && !strings.HasSuffix(line, ":") &&
			!strings.HasSuffix(line, "?") && !strings.HasSuffix(line, "!") {
			continue
		}
		kept = append(kept, line)
	}

	cleaned := strings.Join(kept, "\n")
	cleaned = blankRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) < 200 {
		cleaned = strings.TrimSpace(text)
	}
	if len(cleaned) > maxTextChars {
		cleaned = cleaned[:maxTextChars]
	}
	return cleaned
}
