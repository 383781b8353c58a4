// Package citation formats a Document's Wikipedia provenance into the
// citation strings returned alongside retrieved Sources, grounded on
// original_source/wikidex/src/formatter's Cite trait and its three styles.
package citation

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/wikidex/wikidex/internal/document"
)

// Style names a supported citation format.
type Style string

const (
	StyleMLA     Style = "mla"
	StyleAPA     Style = "apa"
	StyleChicago Style = "chicago"
)

// URL returns the canonical Wikipedia article URL for a provenance, with
// spaces in the title replaced by underscores to match MediaWiki's own
// article path convention.
func URL(p document.WikipediaProvenance) string {
	return "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(p.Title, " ", "_")
}

// Format renders a citation string for the given style. Unrecognized
// styles fall back to MLA, the style the retrieval engine defaults to.
func Format(p document.WikipediaProvenance, style Style) string {
	switch style {
	case StyleAPA:
		return formatAPA(p)
	case StyleChicago:
		return formatChicago(p)
	default:
		return formatMLA(p)
	}
}

func formatMLA(p document.WikipediaProvenance) string {
	return fmt.Sprintf(`"%s" Wikipedia, Wikimedia Foundation, %s, %s. Accessed %s.`,
		p.Title, dayMonthYear(p.ModificationDate), URL(p), dayMonthYear(p.AccessDate))
}

func formatChicago(p document.WikipediaProvenance) string {
	return fmt.Sprintf(`"%s" Wikipedia. Last modified %s, Accessed %s, %s.`,
		p.Title, dayMonthYear(p.ModificationDate), dayMonthYear(p.AccessDate), URL(p))
}

func formatAPA(p document.WikipediaProvenance) string {
	return fmt.Sprintf(`%s. %s. In Wikipedia. Retrieved %s, from %s`,
		p.Title, yearCommaMonthDay(p.ModificationDate), monthDayYear(p.AccessDate), URL(p))
}

// dayMonthYear renders "1 October 2023", matching chrono's "%-d %B %Y".
func dayMonthYear(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), t.Month().String(), t.Year())
}

// monthDayYear renders "October 1, 2023", matching chrono's "%B %-d, %Y".
func monthDayYear(t time.Time) string {
	return fmt.Sprintf("%s %d, %d", t.Month().String(), t.Day(), t.Year())
}

// yearCommaMonthDay renders "2023, October 1", matching chrono's "%Y, %B %-d".
func yearCommaMonthDay(t time.Time) string {
	return fmt.Sprintf("%d, %s %d", t.Year(), t.Month().String(), t.Day())
}
