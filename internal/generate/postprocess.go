package generate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// postInfo holds the fields derived from the final text.
type postInfo struct {
	Title     string
	Body      string
	CharCount int
	ReadTime  int
	Headings  []string
}

var (
	postImageRe     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	postLinkRe      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	postCodeFenceRe = regexp.MustCompile("(?s)```.*?```")
	postHeadingRe   = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	postMarkRe      = regexp.MustCompile(`[*_~` + "`" + `]|\s`)
)

// charsPerMinute approximates Korean prose reading speed.
const charsPerMinute = 600

// postprocess parses the final text: leading level-1 heading as the title
// (stripped from the body), character count excluding whitespace and markup,
// estimated reading time, and level-2 headings in order.
func postprocess(text, topic string) postInfo {
	info := postInfo{Body: strings.TrimSpace(text)}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			info.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			info.Body = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
		break
	}
	if info.Title == "" {
		info.Title = cases.Title(language.Und).String(topic)
	}

	stripped := postCodeFenceRe.ReplaceAllString(info.Body, "")
	stripped = postImageRe.ReplaceAllString(stripped, "")
	stripped = postLinkRe.ReplaceAllString(stripped, "$1")
	stripped = postHeadingRe.ReplaceAllString(stripped, "")
	stripped = postMarkRe.ReplaceAllString(stripped, "")
	info.CharCount = utf8.RuneCountInString(stripped)

	info.ReadTime = (info.CharCount + charsPerMinute - 1) / charsPerMinute
	if info.ReadTime < 1 {
		info.ReadTime = 1
	}

	for _, line := range strings.Split(info.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			info.Headings = append(info.Headings, strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")))
		}
	}
	return info
}
