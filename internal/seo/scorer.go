// Package seo scores generated markdown against a fixed rubric. Scoring is
// a pure function of the text and keyword list.
package seo

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Status classifies one rubric finding.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
)

// Item is one rubric finding with its score contribution.
type Item struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Score   int    `json:"score"`
}

// Report is the weighted rubric outcome for one text.
type Report struct {
	Score    int    `json:"score"`
	MaxScore int    `json:"maxScore"`
	Items    []Item `json:"items"`
}

var (
	linkRe      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	imageRe     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	codeFenceRe = regexp.MustCompile("(?s)```.*?```")
	headingRe   = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	emphasisRe  = regexp.MustCompile(`[*_~` + "`" + `]`)
	whitespace  = regexp.MustCompile(`\s+`)
	blankLineRe = regexp.MustCompile(`\n\s*\n`)
)

// Score evaluates text against the rubric. The title is the single leading
// level-1 heading; keywords participate only when the list is non-empty.
func Score(text string, keywords []string) Report {
	text = norm.NFC.String(text)
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(norm.NFC.String(k)); k != "" {
			normalized = append(normalized, k)
		}
	}

	title, body := splitTitle(text)
	stripped := stripMarkup(body)
	compact := whitespace.ReplaceAllString(stripped, "")
	bodyLen := utf8.RuneCountInString(compact)

	report := Report{MaxScore: 100}
	add := func(item Item) {
		report.Items = append(report.Items, item)
		report.Score += item.Score
	}

	add(titleItem(title))
	if len(normalized) > 0 {
		add(titleKeywordItem(title, normalized))
	}
	add(bodyLengthItem(bodyLen))
	add(headingItem(body))
	if len(normalized) > 0 {
		add(densityItem(stripped, bodyLen, normalized))
	}
	add(paragraphItem(body))
	if item, ok := emojiItem(text); ok {
		add(item)
	}
	return report
}

func titleItem(title string) Item {
	if title == "" {
		return Item{Name: "제목", Status: StatusError, Message: "제목(레벨 1 헤딩)이 없습니다", Score: 0}
	}
	n := utf8.RuneCountInString(title)
	if n >= 10 && n <= 60 {
		return Item{Name: "제목", Status: StatusGood, Message: fmt.Sprintf("제목 길이가 적절합니다 (%d자)", n), Score: 10}
	}
	return Item{Name: "제목", Status: StatusWarning, Message: fmt.Sprintf("제목은 10~60자가 좋습니다 (현재 %d자)", n), Score: 5}
}

func titleKeywordItem(title string, keywords []string) Item {
	lower := strings.ToLower(title)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return Item{Name: "제목 키워드", Status: StatusGood, Message: fmt.Sprintf("제목에 키워드 %q 포함", k), Score: 10}
		}
	}
	return Item{Name: "제목 키워드", Status: StatusWarning, Message: "제목에 키워드가 없습니다", Score: 5}
}

func bodyLengthItem(bodyLen int) Item {
	if bodyLen >= 500 {
		return Item{Name: "본문 길이", Status: StatusGood, Message: fmt.Sprintf("본문 분량이 충분합니다 (%d자)", bodyLen), Score: 20}
	}
	return Item{Name: "본문 길이", Status: StatusWarning, Message: fmt.Sprintf("본문이 짧습니다 (%d자, 500자 이상 권장)", bodyLen), Score: 10}
}

func headingItem(body string) Item {
	count := 0
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "## ") {
			count++
		}
	}
	switch {
	case count >= 3:
		return Item{Name: "소제목", Status: StatusGood, Message: fmt.Sprintf("소제목 %d개", count), Score: 15}
	case count >= 1:
		return Item{Name: "소제목", Status: StatusWarning, Message: fmt.Sprintf("소제목이 %d개뿐입니다 (3개 이상 권장)", count), Score: 8}
	default:
		return Item{Name: "소제목", Status: StatusError, Message: "소제목(레벨 2 헤딩)이 없습니다", Score: 0}
	}
}

func densityItem(stripped string, bodyLen int, keywords []string) Item {
	occurrences := 0
	lower := strings.ToLower(stripped)
	for _, k := range keywords {
		occurrences += strings.Count(lower, strings.ToLower(k))
	}
	density := 0.0
	if bodyLen > 0 {
		density = float64(occurrences) * 100 / float64(bodyLen)
	}
	// Round to one decimal before the range check.
	density = float64(int(density*10+0.5)) / 10
	switch {
	case density >= 1.0 && density <= 3.0:
		return Item{Name: "키워드 밀도", Status: StatusGood, Message: fmt.Sprintf("키워드 밀도 %.1f%%", density), Score: 15}
	case density > 0:
		return Item{Name: "키워드 밀도", Status: StatusWarning, Message: fmt.Sprintf("키워드 밀도 %.1f%% (1~3%% 권장)", density), Score: 8}
	default:
		return Item{Name: "키워드 밀도", Status: StatusError, Message: "본문에 키워드가 없습니다", Score: 0}
	}
}

func paragraphItem(body string) Item {
	count := 0
	for _, block := range blankLineRe.Split(strings.TrimSpace(body), -1) {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	if count >= 5 {
		return Item{Name: "문단 구성", Status: StatusGood, Message: fmt.Sprintf("문단 %d개", count), Score: 10}
	}
	return Item{Name: "문단 구성", Status: StatusWarning, Message: fmt.Sprintf("문단이 %d개입니다 (5개 이상 권장)", count), Score: 5}
}

// emojiItem returns no item at all when the text contains no emoji.
func emojiItem(text string) (Item, bool) {
	count := 0
	for _, r := range text {
		if isEmoji(r) {
			count++
		}
	}
	switch {
	case count == 0:
		return Item{}, false
	case count >= 3 && count <= 10:
		return Item{Name: "이모지", Status: StatusGood, Message: fmt.Sprintf("이모지 %d개", count), Score: 10}, true
	default:
		return Item{Name: "이모지", Status: StatusInfo, Message: fmt.Sprintf("이모지 %d개 (3~10개 권장)", count), Score: 5}, true
	}
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r == 0x2B50 || r == 0x2B55:
		return true
	case r >= 0x1F000 && r <= 0x1F2FF:
		return true
	}
	return false
}

// splitTitle separates the single leading level-1 heading from the body.
func splitTitle(text string) (string, string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			title := strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			return title, strings.Join(lines[i+1:], "\n")
		}
		break
	}
	return "", text
}

func stripMarkup(body string) string {
	s := codeFenceRe.ReplaceAllString(body, "")
	s = imageRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")
	s = emphasisRe.ReplaceAllString(s, "")
	return s
}
