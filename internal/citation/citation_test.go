package citation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gitlab.com/wikidex/wikidex/internal/document"
)

func austrianGerman() document.WikipediaProvenance {
	date := time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)
	return document.WikipediaProvenance{
		Title:            "Austrian German",
		AccessDate:       date,
		ModificationDate: date,
	}
}

func TestFormatMLA(t *testing.T) {
	t.Parallel()
	expected := `"Austrian German" Wikipedia, Wikimedia Foundation, 1 October 2023, https://en.wikipedia.org/wiki/Austrian_German. Accessed 1 October 2023.`
	assert.Equal(t, expected, Format(austrianGerman(), StyleMLA))
}

func TestFormatAPA(t *testing.T) {
	t.Parallel()
	expected := `Austrian German. 2023, October 1. In Wikipedia. Retrieved October 1, 2023, from https://en.wikipedia.org/wiki/Austrian_German`
	assert.Equal(t, expected, Format(austrianGerman(), StyleAPA))
}

func TestFormatChicago(t *testing.T) {
	t.Parallel()
	expected := `"Austrian German" Wikipedia. Last modified 1 October 2023, Accessed 1 October 2023, https://en.wikipedia.org/wiki/Austrian_German.`
	assert.Equal(t, expected, Format(austrianGerman(), StyleChicago))
}

func TestURLReplacesSpaces(t *testing.T) {
	t.Parallel()
	p := document.WikipediaProvenance{Title: "New York City"}
	assert.Equal(t, "https://en.wikipedia.org/wiki/New_York_City", URL(p))
}
