package summarize

import (
	"sort"
	"strings"
)

// topicRules maps a topic label to the keywords that trigger it. Matching is
// case-insensitive substring over title+text.
var topicRules = map[string][]string{
	"CAF/NIS":      {"caf", "nis2", "network and information", "cyber assessment framework"},
	"Cyber":        {"cyber", "malware", "vulnerability", "threat", "phishing"},
	"Incident":     {"incident", "outage", "compromise"},
	"Guidance":     {"guidance", "good practice"},
	"Enforcement":  {"enforcement", "compliance case", "penalty"},
	"Consultation": {"consultation", "call for evidence"},
}

// fallbackSummary produces a deterministic extractive summary: the leading
// words of the text up to the budget, prefixed with the title. It cannot
// fail; empty input yields an empty-but-valid summary.
func fallbackSummary(title, text string, wordBudget int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	truncated := len(words) > wordBudget
	if truncated {
		words = words[:wordBudget]
	}

	summary := strings.Join(words, " ")
	if title != "" {
		summary = title + " — " + summary
	}
	if truncated {
		summary += "…"
	}
	return summary
}

// heuristicTopics assigns topic labels from the keyword rule table plus the
// upper-cased publisher label. Output is sorted for stable comparisons.
func heuristicTopics(title, text, sourceName string) []string {
	blob := strings.ToLower(title + "\n" + text)

	set := make(map[string]bool)
	for topic, needles := range topicRules {
		for _, needle := range needles {
			if strings.Contains(blob, needle) {
				set[topic] = true
				break
			}
		}
	}
	if sourceName != "" {
		set[strings.ToUpper(sourceName)] = true
	}

	topics := make([]string, 0, len(set))
	for topic := range set {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}
