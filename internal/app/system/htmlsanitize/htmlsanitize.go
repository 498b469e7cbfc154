// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the shared sanitizer for rich-text fields (course descriptions,
// article lesson bodies). It extends the UGC policy with the table styling
// and inline formatting the course builder emits.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "sub", "sup", "mark")
	p.AllowAttrs("class", "style").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	return p
}()

// Sanitize strips unsafe HTML (scripts, event handlers, javascript: URLs,
// iframes) from user-authored rich text while preserving formatting, lists,
// tables, links, and images.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return policy.Sanitize(html)
}

// IsPlainText reports whether the string contains no HTML tags. A string
// needs both < and > to count as markup.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
