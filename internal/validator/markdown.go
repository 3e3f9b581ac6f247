package validator

import (
	"regexp"
	"strings"
)

var (
	fencedCodeBlock  = regexp.MustCompile("(?s)```.*?```")
	headingMarker    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasisMarker   = regexp.MustCompile(`(\*{1,3}|_{1,3})`)
	linkSyntax       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	listMarker       = regexp.MustCompile(`(?m)^\s*([-*+]|\d+\.)\s+`)
	blockQuoteMarker = regexp.MustCompile(`(?m)^>\s?`)
	trailingMetaRule = regexp.MustCompile(`(?s)\n-{3,}\n.*$`)
	titleLine        = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// stripMarkdown recovers plain text from a markdown article and its
// first "# " heading as the title.
func stripMarkdown(article string) (title, plain string) {
	if m := titleLine.FindStringSubmatch(article); m != nil {
		title = strings.TrimSpace(m[1])
	}

	text := trailingMetaRule.ReplaceAllString(article, "")
	text = fencedCodeBlock.ReplaceAllString(text, "")
	text = linkSyntax.ReplaceAllString(text, "$1")
	text = headingMarker.ReplaceAllString(text, "")
	text = blockQuoteMarker.ReplaceAllString(text, "")
	text = listMarker.ReplaceAllString(text, "")
	text = emphasisMarker.ReplaceAllString(text, "")

	return title, strings.TrimSpace(text)
}
