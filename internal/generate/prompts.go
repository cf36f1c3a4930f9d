package generate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
)

var styleInstructions = map[domain.Style]string{
	domain.StyleCasual: `당신은 친근하고 편안한 말투의 블로그 작가입니다.
독자에게 말을 거는 듯한 구어체로 쓰고, 적절한 이모지를 섞어 주세요.
글은 마크다운 형식으로 작성하고, 제목은 반드시 레벨 1 헤딩(#) 하나로 시작합니다.
소제목은 레벨 2 헤딩(##)을 사용합니다.`,
	domain.StyleProfessional: `당신은 전문적이고 신뢰감 있는 블로그 작가입니다.
정확한 정보와 근거를 중심으로 격식 있는 문체로 작성해 주세요.
글은 마크다운 형식으로 작성하고, 제목은 반드시 레벨 1 헤딩(#) 하나로 시작합니다.
소제목은 레벨 2 헤딩(##)을 사용합니다.`,
	domain.StyleFriendly: `당신은 다정하고 따뜻한 말투의 블로그 작가입니다.
독자를 배려하는 부드러운 문장으로 작성하고, 과하지 않게 이모지를 사용해 주세요.
글은 마크다운 형식으로 작성하고, 제목은 반드시 레벨 1 헤딩(#) 하나로 시작합니다.
소제목은 레벨 2 헤딩(##)을 사용합니다.`,
	domain.StyleFoodReview: `당신은 맛집 리뷰 전문 블로그 작가입니다.
실제 방문 후기처럼 생생하게 쓰고, 메뉴·맛·분위기를 구체적으로 묘사해 주세요.
글은 마크다운 형식으로 작성하고, 제목은 반드시 레벨 1 헤딩(#) 하나로 시작합니다.
소제목은 레벨 2 헤딩(##)을 사용합니다.`,
}

var lengthTargets = map[domain.Length]string{
	domain.LengthShort:  "공백 제외 800자 내외",
	domain.LengthMedium: "공백 제외 1500자 내외",
	domain.LengthLong:   "공백 제외 2500자 내외",
}

// systemPrompt selects the style instruction template and appends the style
// profile block when one is attached.
func systemPrompt(style domain.Style, profile *domain.StyleProfile) string {
	base, ok := styleInstructions[style]
	if !ok {
		base = styleInstructions[domain.StyleCasual]
	}
	if profile == nil || strings.TrimSpace(profile.Profile) == "" {
		return base
	}
	return base + "\n\n아래는 이 블로그의 기존 글에서 학습한 문체 프로필입니다. 이 문체를 따라 주세요.\n\n" + profile.Profile
}

// writingPrompt builds the user-facing draft prompt. The food-review style
// mandates extra structured sections, so it gets its own builder.
func writingPrompt(p Params, imageContext string) string {
	if p.Style == domain.StyleFoodReview {
		return foodReviewPrompt(p, imageContext)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "다음 주제로 블로그 글을 작성해 주세요.\n\n주제: %s\n", p.Topic)
	if len(p.Keywords) > 0 {
		fmt.Fprintf(&b, "SEO 키워드 (본문에 자연스럽게 포함): %s\n", strings.Join(p.Keywords, ", "))
	}
	fmt.Fprintf(&b, "분량: %s\n", lengthTargets[p.Length])
	if p.AdditionalInfo != "" {
		fmt.Fprintf(&b, "\n추가 정보:\n%s\n", p.AdditionalInfo)
	}
	if imageContext != "" {
		fmt.Fprintf(&b, "\n%s\n", imageContext)
	}
	return b.String()
}

func foodReviewPrompt(p Params, imageContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "다음 가게에 대한 맛집 리뷰 글을 작성해 주세요.\n\n가게/주제: %s\n", p.Topic)
	if len(p.Keywords) > 0 {
		fmt.Fprintf(&b, "SEO 키워드 (본문에 자연스럽게 포함): %s\n", strings.Join(p.Keywords, ", "))
	}
	fmt.Fprintf(&b, "분량: %s\n", lengthTargets[p.Length])
	b.WriteString(`
리뷰에는 아래 항목을 반드시 포함해 주세요.
- 별점 (5점 만점, 맛/분위기/가성비 각각)
- 1인 기준 비용
- 영업시간
- 주차 정보
`)
	if p.AdditionalInfo != "" {
		fmt.Fprintf(&b, "\n추가 정보:\n%s\n", p.AdditionalInfo)
	}
	if imageContext != "" {
		fmt.Fprintf(&b, "\n%s\n", imageContext)
	}
	return b.String()
}

// refinementPrompt embeds the full draft for the quality pass.
func refinementPrompt(draft string, keywords []string) string {
	var b strings.Builder
	b.WriteString("아래 블로그 초안을 다듬어 주세요. 문장 흐름을 자연스럽게 고치고, 중복을 정리하고, 소제목 구성을 개선해 주세요.\n")
	b.WriteString("마크다운 형식과 레벨 1 헤딩 제목은 유지합니다. 수정된 전체 글만 출력하세요.\n")
	if len(keywords) > 0 {
		fmt.Fprintf(&b, "SEO 키워드는 유지해 주세요: %s\n", strings.Join(keywords, ", "))
	}
	b.WriteString("\n--- 초안 ---\n\n")
	b.WriteString(draft)
	return b.String()
}

// imagePromptRequest asks for exactly two English prompts in the fixed
// tagged format parseImagePrompts expects.
func imagePromptRequest(text string) string {
	excerpt := text
	if runes := []rune(excerpt); len(runes) > 1500 {
		excerpt = string(runes[:1500])
	}
	return `아래 블로그 글에 어울리는 일러스트 이미지 생성 프롬프트 2개를 영어로 작성해 주세요.
다른 설명 없이 정확히 아래 형식으로만 답하세요.

IMAGE1: <english prompt>
IMAGE2: <english prompt>

--- 글 ---

` + excerpt
}

var imagePromptTagRe = regexp.MustCompile(`(?m)^IMAGE[12]\s*:\s*(.+)$`)

// parseImagePrompts extracts up to two tagged prompts from the model output.
func parseImagePrompts(output string) []string {
	matches := imagePromptTagRe.FindAllStringSubmatch(output, 2)
	prompts := make([]string, 0, 2)
	for _, m := range matches {
		if p := strings.TrimSpace(m[1]); p != "" {
			prompts = append(prompts, p)
		}
	}
	return prompts
}
