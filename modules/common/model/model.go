package model

import (
	"encoding/json"
	"time"
)

// GeneratedArtwork - generated_artworks 테이블 구조
type GeneratedArtwork struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	CollectionID  string          `json:"collection_id"`
	ArtworkURL    string          `json:"artwork_url"`
	Title         string          `json:"title"`
	StyleSettings json.RawMessage `json:"style_settings"`
	PromptUsed    string          `json:"prompt_used"`
	IsFavorite    bool            `json:"is_favorite"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StyleSettings - style_settings JSONB 구조
type StyleSettings struct {
	Prompt            string            `json:"prompt"`
	ArtStyle          string            `json:"artStyle"`
	PhotoCount        int               `json:"photoCount"`
	ValidationSummary ValidationSummary `json:"validationSummary"`
	PreviewURL        string            `json:"previewUrl,omitempty"`
}

// ValidationSummary - 파이프라인 진단 정보 (운영자 디버깅용, 제어 흐름에는 미사용)
type ValidationSummary struct {
	ImageValidation []ImageValidation `json:"imageValidation"`
	AnalysisStats   AnalysisStats     `json:"analysisStats"`
}

// ImageValidation - 사진별 검증 진단
type ImageValidation struct {
	Index         int    `json:"index"`
	SourceURL     string `json:"sourceUrl"`
	ByteSize      int    `json:"byteSize"`
	ContentType   string `json:"contentType"`
	EncodedSizeKB int    `json:"encodedSizeKB"`
	AIDescription string `json:"aiDescription"`
}

// AnalysisStats - 분석 텍스트 파생 카운터
type AnalysisStats struct {
	Length           int `json:"length"`
	PhotoMentions    int `json:"photoMentions"`
	PeopleMentions   int `json:"peopleMentions"`
	BuildingMentions int `json:"buildingMentions"`
}

// ArtworkJob - artwork_jobs 테이블 구조 (비동기 생성 큐)
type ArtworkJob struct {
	JobID        string          `json:"job_id"`
	UserID       string          `json:"user_id"`
	JobStatus    string          `json:"job_status"`
	JobInput     json.RawMessage `json:"job_input"`
	ArtworkID    *string         `json:"artwork_id"`
	ErrorMessage *string         `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	StartedAt    *time.Time      `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

const (
	StatusQueued        = "queued"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusUserCancelled = "user_cancelled"
)
