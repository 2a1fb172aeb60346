package generateartwork

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"travel-art-forge-server/modules/common/utils"
)

// 원본 사진 다운로드 시 보내는 클라이언트 식별자
const fetchUserAgent = "Mozilla/5.0 (compatible; TravelArtForge/1.0)"

// FetchAndEncode - 사진 1장을 HTTP GET으로 받아 base64 data URL로 변환.
// 크기 상/하한은 정책 상수(설정값)이며 프로토콜 제약이 아니다.
// 부수 효과는 outbound fetch뿐이라 재시도에 안전하다 (기본은 재시도 안 함).
func FetchAndEncode(ctx context.Context, client *http.Client, photoURL string, minBytes, maxBytes int) (*FetchedImage, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", photoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, photoURL, err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, photoURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d %s", ErrFetch, photoURL, resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg" // 헤더가 없으면 JPEG로 간주
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading body: %v", ErrFetch, photoURL, err)
	}

	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s: content type %q", ErrFormat, photoURL, contentType)
	}

	byteSize := len(body)
	if byteSize < minBytes {
		return nil, fmt.Errorf("%w: %s: %d bytes (< %d)", ErrTooSmall, photoURL, byteSize, minBytes)
	}
	if byteSize > maxBytes {
		return nil, fmt.Errorf("%w: %s: %d bytes (> %d)", ErrTooLarge, photoURL, byteSize, maxBytes)
	}

	base64Payload := utils.ConvertImageToBase64(body)

	log.Printf("📥 Photo fetched: %s (%s, %d bytes)", photoURL, contentType, byteSize)

	return &FetchedImage{
		SourceURL:   photoURL,
		ContentType: contentType,
		ByteSize:    byteSize,
		Base64:      base64Payload,
		DataURL:     utils.DataURL(contentType, base64Payload),
	}, nil
}
