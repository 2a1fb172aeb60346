package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"travel-art-forge-server/modules/common/config"
	"travel-art-forge-server/modules/common/utils"
)

type Client struct {
	httpClient *http.Client
}

// NewClient - Storage 클라이언트 생성
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// GenerateFileName - 타임스탬프 기반 파일명 생성 (충돌 방지용 난수 포함)
func GenerateFileName() string {
	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	randomID := rand.Intn(999999)
	return fmt.Sprintf("artwork_%d_%d.png", timestamp, randomID)
}

// UploadArtwork - 생성된 PNG를 Supabase Storage에 업로드 (덮어쓰기 금지)
func (c *Client) UploadArtwork(ctx context.Context, fileName string, imageData []byte) error {
	cfg := config.GetConfig()

	log.Printf("📤 Uploading artwork to storage: %s/%s (%d bytes)", cfg.StorageBucket, fileName, len(imageData))

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", cfg.SupabaseURL, cfg.StorageBucket, fileName)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("x-upsert", "false")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("✅ Artwork uploaded successfully: %s", fileName)
	return nil
}

// UploadWebPPreview - PNG를 WebP로 변환해 프리뷰로 업로드 (best-effort, 실패해도 파이프라인 계속)
func (c *Client) UploadWebPPreview(ctx context.Context, pngFileName string, pngData []byte) string {
	cfg := config.GetConfig()

	webpData, err := utils.ConvertPNGToWebP(pngData, cfg.WebPQuality)
	if err != nil {
		log.Printf("⚠️  WebP preview conversion failed: %v", err)
		return ""
	}

	previewName := pngFileName[:len(pngFileName)-len(".png")] + ".webp"
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", cfg.SupabaseURL, cfg.StorageBucket, previewName)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(webpData))
	if err != nil {
		log.Printf("⚠️  Failed to create preview upload request: %v", err)
		return ""
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", "image/webp")
	req.Header.Set("x-upsert", "false")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("⚠️  Preview upload failed: %v", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("⚠️  Preview upload failed with status %d: %s", resp.StatusCode, string(body))
		return ""
	}

	log.Printf("✅ WebP preview uploaded: %s (%d bytes)", previewName, len(webpData))
	return c.PublicURL(previewName)
}

// PublicURL - 업로드된 오브젝트의 공개 URL 생성
func (c *Client) PublicURL(fileName string) string {
	cfg := config.GetConfig()
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", cfg.SupabaseURL, cfg.StorageBucket, fileName)
}

// RemoveObject - 업로드된 오브젝트 삭제 (DB insert 실패 시 고아 오브젝트 정리용)
func (c *Client) RemoveObject(ctx context.Context, fileName string) error {
	cfg := config.GetConfig()

	log.Printf("🗑️  Removing storage object: %s/%s", cfg.StorageBucket, fileName)

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", cfg.SupabaseURL, cfg.StorageBucket, fileName)

	req, err := http.NewRequestWithContext(ctx, "DELETE", deleteURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed with status %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("✅ Storage object removed: %s", fileName)
	return nil
}
