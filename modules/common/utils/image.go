package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"log"

	_ "github.com/kolesa-team/go-webp/decoder" // WebP 디코더 등록
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// ConvertImageToBase64 - 이미지 바이너리를 base64로 변환
func ConvertImageToBase64(imageData []byte) string {
	return base64.StdEncoding.EncodeToString(imageData)
}

// DataURL - base64 페이로드를 data URL로 래핑
func DataURL(contentType, base64Payload string) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64Payload)
}

// ConvertPNGToWebP - PNG 바이너리를 WebP로 변환
func ConvertPNGToWebP(pngData []byte, quality float32) ([]byte, error) {
	// PNG 디코딩
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}

	// WebP 인코딩
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()

	log.Printf("✅ PNG converted to WebP: %d bytes → %d bytes", len(pngData), len(webpData))

	return webpData, nil
}
