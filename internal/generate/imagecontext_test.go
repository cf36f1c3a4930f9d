package generate

import (
	"strings"
	"testing"
)

func TestExtractAnalysesFencedOutput(t *testing.T) {
	out := "분석 결과입니다.\n```json\n[{\"index\": 1, \"description\": \"라떼 아트가 보이는 커피잔\"}]\n```\n"
	analyses, ok := extractAnalyses(out)
	if !ok {
		t.Fatal("fenced JSON array not extracted")
	}
	if len(analyses) != 1 || analyses[0].Index != 1 || !strings.Contains(analyses[0].Description, "라떼") {
		t.Errorf("analyses = %+v", analyses)
	}
}

func TestExtractAnalysesRejectsGarbage(t *testing.T) {
	for _, out := range []string{"no json here", "[not valid", "[]", "{\"index\": 1}"} {
		if _, ok := extractAnalyses(out); ok {
			t.Errorf("extractAnalyses(%q) succeeded", out)
		}
	}
}

func TestImageContextBlockMatchesByIndex(t *testing.T) {
	analyses := []imageAnalysis{
		{Index: 2, Description: "두 번째 사진 설명"},
		{Index: 1, Description: "첫 번째 사진 설명"},
	}
	refs := []string{"/uploads/a.jpg", "/uploads/b.jpg"}
	got := imageContextBlock(analyses, refs)
	first := strings.Index(got, "첫 번째 사진 설명")
	second := strings.Index(got, "두 번째 사진 설명")
	if first < 0 || second < 0 || first > second {
		t.Errorf("descriptions not ordered by attachment index:\n%s", got)
	}
	if !strings.Contains(got, "![이미지 1](/uploads/a.jpg)") {
		t.Errorf("markdown reference missing:\n%s", got)
	}
}

func TestFallbackImageContextListsRefs(t *testing.T) {
	got := fallbackImageContext([]string{"/uploads/a.jpg", "/uploads/b.jpg"})
	if !strings.Contains(got, "![이미지 1](/uploads/a.jpg)") || !strings.Contains(got, "![이미지 2](/uploads/b.jpg)") {
		t.Errorf("fallback context = %q", got)
	}
}
