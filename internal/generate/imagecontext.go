package generate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// imageAnalysis is one entry of the vision model's JSON answer.
type imageAnalysis struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
}

// visionPrompt covers all attached images in a single request.
func visionPrompt(count int) string {
	return fmt.Sprintf(`첨부된 이미지 %d장을 각각 분석해 주세요.
각 이미지에 무엇이 보이는지 블로그 글에 활용할 수 있게 한두 문장으로 설명합니다.
다른 설명 없이 아래 JSON 배열 형식으로만 답하세요.

[{"index": 1, "description": "..."}]`, count)
}

// extractAnalyses locates the outermost bracketed array in the model output
// and parses it. The output may be wrapped in a fenced code block or carry
// leading/trailing prose, so this searches rather than parsing directly.
func extractAnalyses(output string) ([]imageAnalysis, bool) {
	start := strings.Index(output, "[")
	end := strings.LastIndex(output, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	var analyses []imageAnalysis
	if err := json.Unmarshal([]byte(output[start:end+1]), &analyses); err != nil {
		return nil, false
	}
	if len(analyses) == 0 {
		return nil, false
	}
	return analyses, true
}

// imageContextBlock weaves per-image descriptions and reference paths into a
// block the writing prompt embeds. refs holds the markdown reference path of
// each image in attachment order.
func imageContextBlock(analyses []imageAnalysis, refs []string) string {
	var b strings.Builder
	b.WriteString("첨부 이미지 정보 (본문의 알맞은 위치에 아래 마크다운 참조를 그대로 넣어 주세요):\n")
	for i, ref := range refs {
		desc := ""
		for _, a := range analyses {
			if a.Index == i+1 {
				desc = strings.TrimSpace(a.Description)
				break
			}
		}
		if desc == "" && i < len(analyses) {
			desc = strings.TrimSpace(analyses[i].Description)
		}
		fmt.Fprintf(&b, "%d. %s\n   참조: ![이미지 %d](%s)\n", i+1, desc, i+1, ref)
	}
	return b.String()
}

// fallbackImageContext simply lists the references for manual placement when
// analysis is unavailable.
func fallbackImageContext(refs []string) string {
	var b strings.Builder
	b.WriteString("첨부 이미지 참조 (본문의 알맞은 위치에 그대로 넣어 주세요):\n")
	for i, ref := range refs {
		fmt.Fprintf(&b, "![이미지 %d](%s)\n", i+1, ref)
	}
	return b.String()
}
