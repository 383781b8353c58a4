package engine

import (
	"strings"
	"time"
)

const placeholderCurrentTime = "$$$CURRENT_TIME$$$"

// renderCurrentTime substitutes the current-time placeholder the system
// template may contain before handing the rest of the template (documents,
// query, citation numbers) to the LLM facade to fill in, per spec.md
// §4.8 step 6's "(documents, user_query, current_time)" rendering context.
func renderCurrentTime(template string, now time.Time) string {
	return strings.ReplaceAll(template, placeholderCurrentTime, now.UTC().Format("2006-01-02 15:04:05 UTC"))
}
