package gemini

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"

	"travel-art-forge-server/modules/common/retry"
)

// Service - Gemini 이미지 생성 백엔드 (ARTWORK_PROVIDER=gemini일 때만 사용)
type Service struct {
	client *genai.Client
	model  string
}

func NewService(ctx context.Context, apiKey, model string) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	log.Printf("[Gemini] 클라이언트 초기화 완료 (model: %s)", model)
	return &Service{client: client, model: model}, nil
}

// Generate - 참조 사진들과 프롬프트로 이미지를 생성하고 첫 번째 인라인 이미지 바이트를 반환
func (s *Service) Generate(ctx context.Context, images []InputImage, prompt string) ([]byte, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: img.MimeType,
				Data:     img.Data,
			},
		})
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	content := &genai.Content{
		Role:  genai.RoleUser,
		Parts: parts,
	}

	log.Printf("[Gemini] 이미지 생성 요청 (참조 사진 %d장)", len(images))

	var resp *genai.GenerateContentResponse
	err := retry.Do(ctx, 3, 2*time.Second, func() error {
		var genErr error
		resp, genErr = s.client.Models.GenerateContent(ctx, s.model, []*genai.Content{content}, &genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		})
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				log.Printf("[Gemini] 이미지 수신: %d bytes", len(part.InlineData.Data))
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, fmt.Errorf("gemini returned no image data")
}
