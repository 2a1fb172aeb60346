package gemini

// InputImage - Gemini에 인라인으로 전달할 참조 사진
type InputImage struct {
	Data     []byte
	MimeType string
}
