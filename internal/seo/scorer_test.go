package seo

import (
	"reflect"
	"strings"
	"testing"
)

func findItem(t *testing.T, r Report, name string) Item {
	t.Helper()
	for _, item := range r.Items {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("item %q not found in %#v", name, r.Items)
	return Item{}
}

func hasItem(r Report, name string) bool {
	for _, item := range r.Items {
		if item.Name == name {
			return true
		}
	}
	return false
}

func TestTitleLengthBoundaries(t *testing.T) {
	body := "\n\n본문입니다.\n"

	// Exactly 10 runes: the good branch.
	r := Score("# 가나다라마바사아자차"+body, nil)
	item := findItem(t, r, "제목")
	if item.Status != StatusGood || item.Score != 10 {
		t.Fatalf("10-rune title: %+v", item)
	}

	// 9 runes: warning.
	r = Score("# 가나다라마바사아자"+body, nil)
	item = findItem(t, r, "제목")
	if item.Status != StatusWarning || item.Score != 5 {
		t.Fatalf("9-rune title: %+v", item)
	}

	// 61 runes: warning.
	r = Score("# "+strings.Repeat("가", 61)+body, nil)
	item = findItem(t, r, "제목")
	if item.Status != StatusWarning || item.Score != 5 {
		t.Fatalf("61-rune title: %+v", item)
	}

	// No heading at all: error, zero points.
	r = Score("제목 없는 글입니다."+body, nil)
	item = findItem(t, r, "제목")
	if item.Status != StatusError || item.Score != 0 {
		t.Fatalf("missing title: %+v", item)
	}
}

func TestKeywordItemsOnlyWithKeywords(t *testing.T) {
	text := "# 서울 카페 추천 리스트\n\n본문"
	r := Score(text, nil)
	if hasItem(r, "제목 키워드") || hasItem(r, "키워드 밀도") {
		t.Fatal("keyword items must not appear without keywords")
	}
	r = Score(text, []string{"카페"})
	if !hasItem(r, "제목 키워드") || !hasItem(r, "키워드 밀도") {
		t.Fatal("keyword items missing")
	}
	if item := findItem(t, r, "제목 키워드"); item.Status != StatusGood || item.Score != 10 {
		t.Fatalf("keyword in title: %+v", item)
	}
}

func TestKeywordDensityBoundaries(t *testing.T) {
	// 980 filler runes + 10 keyword occurrences of 2 runes = 1000-rune body.
	body := strings.Repeat("가", 980) + strings.Repeat("카페", 10)
	r := Score("# 제목길이는십자이상임\n\n"+body, []string{"카페"})
	item := findItem(t, r, "키워드 밀도")
	if item.Status != StatusGood || item.Score != 15 {
		t.Fatalf("density 1.0%%: %+v", item)
	}

	// 938 + 31*2 = 1000 runes, density 3.1% -> warning.
	body = strings.Repeat("가", 938) + strings.Repeat("카페", 31)
	r = Score("# 제목길이는십자이상임\n\n"+body, []string{"카페"})
	item = findItem(t, r, "키워드 밀도")
	if item.Status != StatusWarning || item.Score != 8 {
		t.Fatalf("density 3.1%%: %+v", item)
	}

	// Keyword absent from body entirely -> error.
	r = Score("# 제목길이는십자이상임\n\n"+strings.Repeat("가", 600), []string{"카페"})
	item = findItem(t, r, "키워드 밀도")
	if item.Status != StatusError || item.Score != 0 {
		t.Fatalf("density 0%%: %+v", item)
	}
}

func TestHeadingCounts(t *testing.T) {
	base := "# 제목길이는십자이상임\n\n"
	r := Score(base+"## a\n\nx\n\n## b\n\nx\n\n## c\n\nx", nil)
	if item := findItem(t, r, "소제목"); item.Status != StatusGood || item.Score != 15 {
		t.Fatalf("3 headings: %+v", item)
	}
	r = Score(base+"## a\n\nx", nil)
	if item := findItem(t, r, "소제목"); item.Status != StatusWarning || item.Score != 8 {
		t.Fatalf("1 heading: %+v", item)
	}
	r = Score(base+"본문만 있음", nil)
	if item := findItem(t, r, "소제목"); item.Status != StatusError || item.Score != 0 {
		t.Fatalf("0 headings: %+v", item)
	}
}

func TestEmojiItem(t *testing.T) {
	base := "# 제목길이는십자이상임\n\n본문"
	if r := Score(base, nil); hasItem(r, "이모지") {
		t.Fatal("no emoji must emit no item")
	}
	r := Score(base+" 😀😀😀", nil)
	if item := findItem(t, r, "이모지"); item.Status != StatusGood || item.Score != 10 {
		t.Fatalf("3 emoji: %+v", item)
	}
	r = Score(base+" 😀", nil)
	if item := findItem(t, r, "이모지"); item.Status != StatusInfo || item.Score != 5 {
		t.Fatalf("1 emoji: %+v", item)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	text := "# 서울 카페 추천 리스트\n\n## 분위기\n\n조용한 카페입니다. 😀😀😀\n\n## 메뉴\n\n커피가 맛있습니다.\n\n## 총평\n\n추천합니다."
	keywords := []string{"카페", "서울"}
	first := Score(text, keywords)
	second := Score(text, keywords)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ:\n%#v\n%#v", first, second)
	}
	if first.MaxScore != 100 {
		t.Fatalf("MaxScore = %d", first.MaxScore)
	}
	if first.Score < 0 || first.Score > 100 {
		t.Fatalf("Score = %d out of range", first.Score)
	}
}

func TestMarkupStrippedFromBodyCount(t *testing.T) {
	// Markup characters must not inflate the body character count.
	plain := strings.Repeat("가", 499)
	r := Score("# 제목길이는십자이상임\n\n**"+plain+"**", nil)
	if item := findItem(t, r, "본문 길이"); item.Status != StatusWarning {
		t.Fatalf("499 chars with markup: %+v", item)
	}
	r = Score("# 제목길이는십자이상임\n\n"+strings.Repeat("가", 500), nil)
	if item := findItem(t, r, "본문 길이"); item.Status != StatusGood || item.Score != 20 {
		t.Fatalf("500 chars: %+v", item)
	}
}
