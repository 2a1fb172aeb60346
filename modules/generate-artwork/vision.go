package generateartwork

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"travel-art-forge-server/modules/common/model"
)

// DescribeImage - 단일 이미지의 진단용 1문장 설명.
// 실패해도 파이프라인을 멈추지 않는다: 어떤 오류든 플레이스홀더 문자열로 수렴.
func DescribeImage(ctx context.Context, client *openai.Client, aiModel, dataURL string) string {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: aiModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Describe this image in one sentence. What do you see?",
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("⚠️ 이미지 검증 호출 실패 (진단 전용, 계속 진행): %v", err)
		return NoValidationAvailable
	}

	if len(resp.Choices) == 0 {
		return NoValidationAvailable
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return NoDescription
	}
	return content
}

// AnalyzePhotos - 전체 사진 묶음의 구조화된 인벤토리 분석.
// 이쪽은 치명적 단계: 분석이 비면 이후 프롬프트 조립이 무의미하므로 오류를 돌려준다.
func AnalyzePhotos(ctx context.Context, client *openai.Client, aiModel string, images []*FetchedImage, styleDescription string) (string, error) {
	if len(images) == 0 {
		return "", fmt.Errorf("%w: no photos to analyze", ErrAnalysis)
	}

	var instruction strings.Builder
	fmt.Fprintf(&instruction,
		"You are preparing a complete visual inventory of %d travel photo(s) so an artist can recreate them as %s.\n\n",
		len(images), styleDescription)
	instruction.WriteString("For EACH photo, numbered Photo 1")
	if len(images) > 1 {
		fmt.Fprintf(&instruction, " through Photo %d", len(images))
	}
	instruction.WriteString(", list exhaustively:\n")
	instruction.WriteString("- PEOPLE: how many, their appearance, clothing, pose, and position in the frame\n")
	instruction.WriteString("- ENVIRONMENT: location type, buildings, landmarks, terrain, weather, time of day\n")
	instruction.WriteString("- OBJECTS: every distinct object, vehicle, sign, or animal visible\n")
	instruction.WriteString("- COMPOSITION: camera angle, what is foreground and what is background\n\n")
	instruction.WriteString("Be literal and complete. Do not skip small details. Do not interpret mood - only describe what is physically visible.")

	parts := make([]openai.ChatMessagePart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    img.DataURL,
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: instruction.String(),
	})

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: aiModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysis, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrAnalysis)
	}

	analysis := strings.TrimSpace(resp.Choices[0].Message.Content)
	if analysis == "" {
		return "", fmt.Errorf("%w: model returned no analysis text", ErrAnalysis)
	}

	log.Printf("🔍 사진 분석 완료: %d자", len(analysis))
	return analysis, nil
}

// AnalysisStatsFor - 분석 텍스트에서 간단한 키워드 카운트 산출 (로그/레코드용)
func AnalysisStatsFor(analysis string) model.AnalysisStats {
	lower := strings.ToLower(analysis)
	return model.AnalysisStats{
		Length:           len(analysis),
		PhotoMentions:    strings.Count(lower, "photo"),
		PeopleMentions:   strings.Count(lower, "person") + strings.Count(lower, "people"),
		BuildingMentions: strings.Count(lower, "building"),
	}
}
