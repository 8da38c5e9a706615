package source

import (
	"fmt"
	"regexp"
	"strings"
)

// Filterer applies per-source include/exclude rules to candidates. A pattern
// prefixed with "re:" is treated as a case-insensitive regular expression,
// anything else as a case-insensitive substring match.
type Filterer struct {
	bypass bool
}

func NewFilterer(bypass bool) *Filterer {
	return &Filterer{bypass: bypass}
}

func (f *Filterer) Run(candidates []Candidate, sourceConfig *Config) []Candidate {
	if f.bypass || len(sourceConfig.Filters) == 0 {
		return candidates
	}

	filtered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		isFiltered, filterReason := f.applyFilters(c, sourceConfig.Filters)
		c.IsFiltered = isFiltered
		c.FilterReason = filterReason
		filtered = append(filtered, c)
	}

	return filtered
}

func (f *Filterer) applyFilters(c Candidate, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(c, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	if rest, ok := strings.CutPrefix(pattern, "re:"); ok {
		re, err := regexp.Compile("(?i)" + rest)
		if err != nil {
			return false
		}
		return re.MatchString(value)
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(c Candidate, field string) string {
	switch field {
	case "title":
		return c.Title
	case "summary":
		return c.Summary
	case "link":
		return c.Link
	default:
		// Unscoped filters match over everything the adapter populated.
		// Extracted body text does not exist yet at this stage.
		return c.Title + "\n" + c.Summary
	}
}
