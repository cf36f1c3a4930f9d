package generate

import (
	"strings"
	"testing"

	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
)

func TestSystemPromptAppendsProfile(t *testing.T) {
	base := systemPrompt(domain.StyleCasual, nil)
	if base == "" {
		t.Fatal("empty system prompt")
	}
	withProfile := systemPrompt(domain.StyleCasual, &domain.StyleProfile{Profile: "짧은 문장을 선호하고 반말체를 쓴다."})
	if !strings.HasPrefix(withProfile, base) {
		t.Error("profile block must extend the base instructions, not replace them")
	}
	if !strings.Contains(withProfile, "반말체") {
		t.Error("profile text missing from system prompt")
	}
	// Blank profile text behaves like no profile.
	if got := systemPrompt(domain.StyleCasual, &domain.StyleProfile{Profile: "  "}); got != base {
		t.Error("blank profile must not alter the prompt")
	}
}

func TestSystemPromptUnknownStyleFallsBack(t *testing.T) {
	if systemPrompt(domain.Style("haiku"), nil) != styleInstructions[domain.StyleCasual] {
		t.Error("unknown style must fall back to casual instructions")
	}
}

func TestWritingPromptIncludesInputs(t *testing.T) {
	p := Params{
		Topic:          "성수동 카페 투어",
		Keywords:       []string{"성수동", "카페"},
		Style:          domain.StyleCasual,
		Length:         domain.LengthShort,
		AdditionalInfo: "주말에 방문했음",
	}
	got := writingPrompt(p, "첨부 이미지 정보: ...")
	for _, want := range []string{"성수동 카페 투어", "성수동, 카페", "800자", "주말에 방문했음", "첨부 이미지 정보"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestWritingPromptFoodReviewMandatesSections(t *testing.T) {
	got := writingPrompt(Params{Topic: "을지로 파스타집", Style: domain.StyleFoodReview, Length: domain.LengthMedium}, "")
	for _, want := range []string{"별점", "비용", "영업시간", "주차"} {
		if !strings.Contains(got, want) {
			t.Errorf("food review prompt missing %q", want)
		}
	}
}

func TestRefinementPromptEmbedsDraft(t *testing.T) {
	got := refinementPrompt("# 제목\n\n본문입니다.", []string{"카페"})
	if !strings.Contains(got, "본문입니다.") {
		t.Error("draft not embedded")
	}
	if !strings.Contains(got, "카페") {
		t.Error("keywords not carried into the quality pass")
	}
}

func TestImagePromptRequestTruncatesExcerpt(t *testing.T) {
	long := strings.Repeat("가", 3000)
	got := imagePromptRequest(long)
	if strings.Contains(got, strings.Repeat("가", 1501)) {
		t.Error("excerpt not truncated to 1500 runes")
	}
	if !strings.Contains(got, strings.Repeat("가", 1500)) {
		t.Error("excerpt truncated too aggressively")
	}
}

func TestParseImagePrompts(t *testing.T) {
	out := "Here you go.\nIMAGE1: a cozy cafe interior\nIMAGE2:  latte art, top view \ntrailing text"
	got := parseImagePrompts(out)
	if len(got) != 2 {
		t.Fatalf("got %d prompts, want 2", len(got))
	}
	if got[0] != "a cozy cafe interior" || got[1] != "latte art, top view" {
		t.Errorf("prompts = %q", got)
	}
	if got := parseImagePrompts("no tags at all"); len(got) != 0 {
		t.Errorf("untagged output yielded %q", got)
	}
}
