package generateartwork

import (
	"fmt"
	"strings"
)

// ValidateInput - 생성 요청 검증. 어떤 외부 호출보다도 먼저 실행되어야 한다.
// maxPhotos는 UI가 암묵적으로 보장하던 상한을 명시적으로 강제한다 (0이면 무제한).
func ValidateInput(req *GenerateRequest, maxPhotos int) error {
	if req == nil {
		return fmt.Errorf("%w: empty request body", ErrInvalidRequest)
	}
	if len(req.PhotoURLs) < 1 {
		return fmt.Errorf("%w: at least 1 photo URL is required", ErrInvalidRequest)
	}
	if maxPhotos > 0 && len(req.PhotoURLs) > maxPhotos {
		return fmt.Errorf("%w: too many photos (%d > %d)", ErrInvalidRequest, len(req.PhotoURLs), maxPhotos)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.CollectionID) == "" {
		return fmt.Errorf("%w: collectionId is required", ErrInvalidRequest)
	}
	for i, photoURL := range req.PhotoURLs {
		if strings.TrimSpace(photoURL) == "" {
			return fmt.Errorf("%w: invalid photo URL at index %d", ErrInvalidRequest, i)
		}
	}
	return nil
}
