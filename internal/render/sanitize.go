package render

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// emailPolicy keeps the markup an email body reasonably uses.
	emailPolicy = bluemonday.UGCPolicy()

	htmlTag = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^>]*)?/?>`)
)

func init() {
	emailPolicy.AllowElements("p", "br", "div", "span", "h1", "h2", "h3", "h4")
	emailPolicy.AllowElements("strong", "em", "u", "s", "code", "pre", "blockquote")
	emailPolicy.AllowElements("ul", "ol", "li")
	emailPolicy.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	emailPolicy.AllowAttrs("href").OnElements("a")
	emailPolicy.AllowAttrs("style").OnElements("span", "div", "p")
	emailPolicy.RequireParseableURLs(true)
	emailPolicy.AllowURLSchemes("http", "https", "mailto")
}

// LooksLikeHTML reports whether s contains at least one HTML tag.
func LooksLikeHTML(s string) bool {
	return htmlTag.MatchString(s)
}

// SanitizeHTML strips scripts, event handlers and unsafe URLs from s.
func SanitizeHTML(s string) string {
	return emailPolicy.Sanitize(s)
}

// OutgoingContent prepares a body for sending. HTML is sanitized; plain
// text is passed through untouched so that "&" and "<" survive.
func OutgoingContent(s string) string {
	if !LooksLikeHTML(s) {
		return s
	}
	return SanitizeHTML(s)
}

// ReplySubject prefixes subject with "Re: " unless it already is a reply.
func ReplySubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}
