package generateartwork

import (
	"errors"

	"travel-art-forge-server/modules/common/model"
)

// GenerateRequest - 아트워크 생성 요청 바디
type GenerateRequest struct {
	Prompt       string   `json:"prompt,omitempty"`
	Title        string   `json:"title"`
	PhotoURLs    []string `json:"photoUrls"`
	ArtStyle     string   `json:"artStyle"`
	UserID       string   `json:"userId"`
	CollectionID string   `json:"collectionId"`
}

// GenerateResponse - 성공 응답 (HTTP 200)
type GenerateResponse struct {
	Artwork    *model.GeneratedArtwork `json:"artwork"`
	ArtworkURL string                  `json:"artwork_url"`
}

// ErrorResponse - 실패 응답 (HTTP 500)
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// FetchedImage - 원본 사진 1장의 다운로드/인코딩 결과
type FetchedImage struct {
	SourceURL   string
	ContentType string
	ByteSize    int
	Base64      string
	DataURL     string
}

// PhotoAnalysis - 분석 텍스트와 진단용 파생 카운터
type PhotoAnalysis struct {
	Text  string
	Stats model.AnalysisStats
}

// 파이프라인 오류 분류. 각 단계는 해당 sentinel을 %w로 감싸 실패하고
// 상위 핸들러는 errors.Is로 종류를 구분한다.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrFetch          = errors.New("photo fetch failed")
	ErrFormat         = errors.New("unsupported photo format")
	ErrTooSmall       = errors.New("photo too small")
	ErrTooLarge       = errors.New("photo too large")
	ErrAnalysis       = errors.New("photo analysis failed")
	ErrGeneration     = errors.New("artwork generation failed")
	ErrNoImage        = errors.New("no image in generation response")
	ErrUpload         = errors.New("artwork upload failed")
	ErrDatabase       = errors.New("database insert failed")
)

// 진단 전용(컨텐츠 검증) 단계가 설명을 얻지 못했을 때의 대체 문자열.
// 이 단계는 절대 파이프라인을 중단시키지 않는다.
const (
	NoValidationAvailable = "No validation available"
	NoDescription         = "AI could not describe image"
)

// 파이프라인 진행 단계 (progress hub로 발행)
const (
	StageValidated = "validated"
	StageFetched   = "fetched"
	StageAnalyzed  = "analyzed"
	StageComposed  = "composed"
	StageGenerated = "generated"
	StageUploaded  = "uploaded"
	StageRecorded  = "recorded"
	StageDone      = "done"
	StageFailed    = "failed"
)
