// Package render turns backend content into terminal text and prepares
// outgoing content for sending.
package render

import (
	"strings"

	"github.com/k3a/html2text"

	"github.com/nhle/crmterm/internal/model"
)

// HTMLToText converts HTML to plain text suitable for a terminal pane.
func HTMLToText(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}
	return cleanupWhitespace(html2text.HTML2Text(htmlContent))
}

// EmailBody returns the readable body of an incoming email, preferring the
// HTML part when present.
func EmailBody(e model.IncomingEmail) string {
	if e.ContentHTML != "" {
		if text := HTMLToText(e.ContentHTML); text != "" {
			return text
		}
	}
	return cleanupWhitespace(e.Content)
}

// Preview returns the first non-blank line of body cut to width runes.
func Preview(body string, width int) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return Truncate(line, width)
	}
	return ""
}

// Truncate cuts s to at most width runes, marking the cut with "…".
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// cleanupWhitespace collapses runs of blank lines to at most two.
func cleanupWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	blankCount := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankCount++
			if blankCount <= 2 {
				result = append(result, "")
			}
			continue
		}
		blankCount = 0
		result = append(result, strings.TrimRight(line, " \t\r"))
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}
