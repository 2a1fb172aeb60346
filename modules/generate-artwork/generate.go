package generateartwork

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"travel-art-forge-server/modules/common/retry"
)

// AI 게이트웨이의 이미지 생성 응답은 배포 버전에 따라 형태가 다르다.
// modalities 확장과 message.images 필드는 go-openai 타입으로 표현할 수 없어
// 이 호출만 직접 HTTP로 처리한다.
type gatewayMessage struct {
	Content string `json:"content"`
	Images  []struct {
		URL      string `json:"url"`
		ImageURL struct {
			URL string `json:"url"`
		} `json:"image_url"`
	} `json:"images"`
}

type gatewayResponse struct {
	Choices []struct {
		Message gatewayMessage `json:"message"`
	} `json:"choices"`
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

var dataURLPattern = regexp.MustCompile(`data:image/[a-zA-Z0-9.+-]+;base64,[A-Za-z0-9+/=]+`)

// extractArtworkRef - 알려진 응답 형태를 순서대로 시도한다.
// 반환값은 data: URL 또는 https URL이며, 못 찾으면 빈 문자열.
func extractArtworkRef(resp *gatewayResponse, rawBody []byte) string {
	// 1. choices[0].message.images[0].image_url.url (현행 게이트웨이)
	if len(resp.Choices) > 0 {
		msg := resp.Choices[0].Message
		if len(msg.Images) > 0 {
			if u := msg.Images[0].ImageURL.URL; u != "" {
				return u
			}
			// 2. images[0].url (구버전 필드)
			if u := msg.Images[0].URL; u != "" {
				return u
			}
		}
	}

	// 3. 최상위 data[] (images API 호환 형태)
	if len(resp.Data) > 0 {
		if u := resp.Data[0].URL; u != "" {
			return u
		}
		if b64 := resp.Data[0].B64JSON; b64 != "" {
			return "data:image/png;base64," + b64
		}
	}

	// 4. content 텍스트 안에 인라인된 data URL
	if len(resp.Choices) > 0 {
		if m := dataURLPattern.FindString(resp.Choices[0].Message.Content); m != "" {
			return m
		}
	}
	if m := dataURLPattern.Find(rawBody); m != nil {
		return string(m)
	}

	return ""
}

// GenerateArtwork - 게이트웨이에 이미지 생성을 요청하고 아트워크 참조를 돌려준다.
// 응답에서 이미지를 못 찾으면 축약 프롬프트로 정확히 1회 재시도한다.
func GenerateArtwork(ctx context.Context, client *http.Client, baseURL, apiKey, aiModel string, images []*FetchedImage, prompt, styleKey string) (string, error) {
	ref, err := callGateway(ctx, client, baseURL, apiKey, aiModel, images, prompt)
	if err != nil {
		return "", err
	}
	if ref != "" {
		return ref, nil
	}

	log.Printf("⚠️ 생성 응답에 이미지 없음, 축약 프롬프트로 1회 재시도")
	simplified := ComposeSimplifiedPrompt(styleKey, len(images))
	ref, err = callGateway(ctx, client, baseURL, apiKey, aiModel, images, simplified)
	if err != nil {
		return "", err
	}
	if ref == "" {
		return "", fmt.Errorf("%w: gateway returned no image in any known response shape", ErrNoImage)
	}
	return ref, nil
}

func callGateway(ctx context.Context, client *http.Client, baseURL, apiKey, aiModel string, images []*FetchedImage, prompt string) (string, error) {
	content := make([]map[string]interface{}, 0, len(images)+2)
	content = append(content, map[string]interface{}{
		"type": "text",
		"text": "Here are the original photos I want you to reference:",
	})
	for _, img := range images {
		content = append(content, map[string]interface{}{
			"type":      "image_url",
			"image_url": map[string]interface{}{"url": img.DataURL},
		})
	}
	content = append(content, map[string]interface{}{
		"type": "text",
		"text": prompt,
	})

	payload := map[string]interface{}{
		"model": aiModel,
		"messages": []map[string]interface{}{
			{"role": "user", "content": content},
		},
		"modalities": []string{"image", "text"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrGeneration, err)
	}

	url := strings.TrimRight(baseURL, "/") + "/chat/completions"

	var respBody []byte
	err = retry.Do(ctx, 3, 2*time.Second, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if reqErr != nil {
			return fmt.Errorf("%w: %v", ErrGeneration, reqErr)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := client.Do(req)
		if doErr != nil {
			return fmt.Errorf("%w: %v", ErrGeneration, doErr)
		}
		defer resp.Body.Close()

		respBody, doErr = io.ReadAll(resp.Body)
		if doErr != nil {
			return fmt.Errorf("%w: read response: %v", ErrGeneration, doErr)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: gateway status %d: %s", ErrGeneration, resp.StatusCode, truncateForLog(respBody))
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	var parsed gatewayResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGeneration, err)
	}

	return extractArtworkRef(&parsed, respBody), nil
}

// DecodeArtworkRef - 아트워크 참조를 실제 바이트로 변환한다.
// data: URL이면 base64 디코드, 아니면 HTTP로 다운로드.
func DecodeArtworkRef(ctx context.Context, client *http.Client, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		idx := strings.Index(ref, ";base64,")
		if idx < 0 {
			return nil, fmt.Errorf("%w: malformed data URL", ErrNoImage)
		}
		data, err := base64.StdEncoding.DecodeString(ref[idx+len(";base64,"):])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 payload: %v", ErrNoImage, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download generated image: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: image download status %d", ErrGeneration, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read generated image: %v", ErrGeneration, err)
	}
	return data, nil
}

func truncateForLog(b []byte) string {
	const max = 300
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
