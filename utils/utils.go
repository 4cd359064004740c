package utils

import (
	"regexp"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

var (
	markdownLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	headingRegex      = regexp.MustCompile(`(?m)^#+\s*(.+)$`)
	boldRegex         = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// ConvertMarkdownToSlack rewrites the Markdown handlers tend to produce into Slack mrkdwn.
func ConvertMarkdownToSlack(message string) string {
	// Links first so their brackets don't collide with the other rules
	result := markdownLinkRegex.ReplaceAllString(message, "<$2|$1>")

	result = headingRegex.ReplaceAllStringFunc(result, func(match string) string {
		content := headingRegex.FindStringSubmatch(match)[1]
		return "*" + boldRegex.ReplaceAllString(content, "$1") + "*"
	})

	return boldRegex.ReplaceAllString(result, "*$1*")
}
