package generateartwork

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"travel-art-forge-server/modules/common/config"
	"travel-art-forge-server/modules/common/database"
	"travel-art-forge-server/modules/common/model"
	"travel-art-forge-server/modules/common/storage"
	"travel-art-forge-server/modules/submodule/gemini"
)

// 사진 다운로드 동시 실행 상한
const fetchConcurrency = 3

type Service struct {
	ai         *openai.Client
	httpClient *http.Client
	db         *database.Client
	store      *storage.Client
	gemini     *gemini.Service
}

// NewService - 파이프라인 서비스 생성. ARTWORK_PROVIDER=gemini일 때만 Gemini 백엔드를 붙인다.
func NewService() (*Service, error) {
	cfg := config.GetConfig()

	clientConfig := openai.DefaultConfig(cfg.AIGatewayKey)
	clientConfig.BaseURL = cfg.GatewayBaseURL()

	s := &Service{
		ai:         openai.NewClientWithConfig(clientConfig),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		db:         database.NewClient(),
		store:      storage.NewClient(),
	}
	if s.db == nil {
		return nil, fmt.Errorf("failed to initialize database client")
	}

	if cfg.ArtworkProvider == "gemini" {
		g, err := gemini.NewService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		s.gemini = g
	}

	return s, nil
}

// Run - 생성 파이프라인 전체 실행.
// report는 단계 전이마다 호출된다 (nil 허용). 성공 시 생성된 레코드와 공개 URL 반환.
func (s *Service) Run(ctx context.Context, req *GenerateRequest, report func(stage string)) (*model.GeneratedArtwork, string, error) {
	cfg := config.GetConfig()
	notify := func(stage string) {
		if report != nil {
			report(stage)
		}
	}

	// 1. 입력 검증
	if err := ValidateInput(req, cfg.MaxPhotos); err != nil {
		return nil, "", err
	}
	notify(StageValidated)
	log.Printf("🎨 파이프라인 시작: %d장, 스타일=%s, user=%s", len(req.PhotoURLs), req.ArtStyle, req.UserID)

	// 2. 사진 다운로드 + 인코딩 + 진단 설명 (동시 실행, 순서 보존)
	images, descriptions, err := s.fetchAll(ctx, req.PhotoURLs)
	if err != nil {
		return nil, "", err
	}
	notify(StageFetched)

	validations := make([]model.ImageValidation, len(images))
	for i, img := range images {
		validations[i] = model.ImageValidation{
			Index:         i + 1,
			SourceURL:     img.SourceURL,
			ByteSize:      img.ByteSize,
			ContentType:   img.ContentType,
			EncodedSizeKB: len(img.Base64) / 1024,
			AIDescription: descriptions[i],
		}
		log.Printf("✅ 사진 %d/%d: %d bytes (%s) - %s", i+1, len(images), img.ByteSize, img.ContentType, descriptions[i])
	}

	// 3. 사진 묶음 분석
	style := StyleFor(req.ArtStyle)
	analysis, err := AnalyzePhotos(ctx, s.ai, cfg.AIModel, images, style.Description)
	if err != nil {
		return nil, "", err
	}
	stats := AnalysisStatsFor(analysis)
	notify(StageAnalyzed)

	// 4. 프롬프트 조립
	prompt := ComposePrompt(analysis, req.ArtStyle, req.Prompt, len(images))
	notify(StageComposed)

	// 5. 아트워크 생성
	artworkData, err := s.generate(ctx, cfg, images, prompt, req.ArtStyle)
	if err != nil {
		return nil, "", err
	}
	notify(StageGenerated)
	log.Printf("🎨 아트워크 생성 완료: %d bytes", len(artworkData))

	// 6. 스토리지 업로드
	fileName := storage.GenerateFileName()
	if err := s.store.UploadArtwork(ctx, fileName, artworkData); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	artworkURL := s.store.PublicURL(fileName)
	notify(StageUploaded)

	previewURL := ""
	if cfg.WebPPreview {
		previewURL = s.store.UploadWebPPreview(ctx, fileName, artworkData)
	}

	// 7. DB 레코드 생성
	styleSettings := model.StyleSettings{
		Prompt:     req.Prompt,
		ArtStyle:   req.ArtStyle,
		PhotoCount: len(images),
		ValidationSummary: model.ValidationSummary{
			ImageValidation: validations,
			AnalysisStats:   stats,
		},
		PreviewURL: previewURL,
	}
	settingsJSON, err := json.Marshal(styleSettings)
	if err != nil {
		return nil, "", fmt.Errorf("%w: marshal style settings: %v", ErrDatabase, err)
	}

	row := map[string]interface{}{
		"user_id":        req.UserID,
		"collection_id":  req.CollectionID,
		"artwork_url":    artworkURL,
		"title":          req.Title,
		"style_settings": json.RawMessage(settingsJSON),
		"prompt_used":    analysis,
	}

	artwork, err := s.db.InsertArtwork(ctx, row)
	if err != nil {
		// 레코드 없는 고아 오브젝트 정리 (best-effort)
		if rmErr := s.store.RemoveObject(ctx, fileName); rmErr != nil {
			log.Printf("⚠️ 고아 오브젝트 정리 실패: %v", rmErr)
		}
		if previewURL != "" {
			previewName := fileName[:len(fileName)-len(".png")] + ".webp"
			if rmErr := s.store.RemoveObject(ctx, previewName); rmErr != nil {
				log.Printf("⚠️ 프리뷰 오브젝트 정리 실패: %v", rmErr)
			}
		}
		return nil, "", fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	notify(StageRecorded)

	log.Printf("🏁 파이프라인 완료: artwork=%s", artwork.ID)
	return artwork, artworkURL, nil
}

// fetchAll - 사진 URL들을 동시 다운로드한다. 슬롯 인덱스로 입력 순서를 보존하고,
// 첫 오류가 기록되면 아직 시작 안 한 작업은 건너뛴다.
func (s *Service) fetchAll(ctx context.Context, photoURLs []string) ([]*FetchedImage, []string, error) {
	cfg := config.GetConfig()

	images := make([]*FetchedImage, len(photoURLs))
	descriptions := make([]string, len(photoURLs))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, fetchConcurrency)

	for i, photoURL := range photoURLs {
		wg.Add(1)
		go func(idx int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			mu.Lock()
			skip := firstErr != nil
			mu.Unlock()
			if skip {
				return
			}

			log.Printf("📥 사진 %d/%d 다운로드: %s", idx+1, len(photoURLs), url)
			img, err := FetchAndEncode(ctx, s.httpClient, url, cfg.MinImageBytes, cfg.MaxImageBytes)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			images[idx] = img
			descriptions[idx] = DescribeImage(ctx, s.ai, cfg.AIModel, img.DataURL)
		}(i, photoURL)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}
	return images, descriptions, nil
}

// generate - 설정된 백엔드로 아트워크 바이트를 얻는다
func (s *Service) generate(ctx context.Context, cfg *config.Config, images []*FetchedImage, prompt, styleKey string) ([]byte, error) {
	if s.gemini != nil {
		inputs := make([]gemini.InputImage, 0, len(images))
		for _, img := range images {
			raw, err := base64.StdEncoding.DecodeString(img.Base64)
			if err != nil {
				return nil, fmt.Errorf("%w: decode reference photo: %v", ErrGeneration, err)
			}
			inputs = append(inputs, gemini.InputImage{Data: raw, MimeType: img.ContentType})
		}
		data, err := s.gemini.Generate(ctx, inputs, prompt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
		}
		return data, nil
	}

	ref, err := GenerateArtwork(ctx, s.httpClient, cfg.GatewayBaseURL(), cfg.AIGatewayKey, cfg.AIModel, images, prompt, styleKey)
	if err != nil {
		return nil, err
	}
	return DecodeArtworkRef(ctx, s.httpClient, ref)
}
