package generateartwork

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleGenerateOptionsCORS(t *testing.T) {
	handler := NewHandler(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-artwork", nil)
	rec := httptest.NewRecorder()
	handler.HandleGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("OPTIONS status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "authorization, x-client-info, apikey, content-type" {
		t.Errorf("Allow-Headers = %q", got)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("OPTIONS body should be empty, got %q", rec.Body.String())
	}
}

func TestHandleGenerateSuccess(t *testing.T) {
	stubs := newPipelineStubs(t)
	handler := NewHandler(stubs.newService(t))

	body := `{
		"title": "Venice Weekend",
		"photoUrls": ["` + stubs.photos.URL + `/1.jpg"],
		"artStyle": "watercolor",
		"userId": "user-1",
		"collectionId": "col-1"
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/generate-artwork", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Artwork == nil || resp.Artwork.ID != "art-123" {
		t.Errorf("artwork = %+v", resp.Artwork)
	}
	if resp.ArtworkURL == "" {
		t.Error("artwork_url missing")
	}
}

func TestHandleGenerateFailureEnvelope(t *testing.T) {
	stubs := newPipelineStubs(t)
	handler := NewHandler(stubs.newService(t))

	// 사진 없음 - 검증 실패지만 응답은 동일한 500 포맷
	req := httptest.NewRequest(http.MethodPost, "/api/generate-artwork",
		strings.NewReader(`{"userId":"u","collectionId":"c","photoUrls":[]}`))
	rec := httptest.NewRecorder()
	handler.HandleGenerate(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error != "Artwork generation failed" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.Details == "" {
		t.Error("details missing")
	}
}

func TestHandleGenerateMalformedJSON(t *testing.T) {
	stubs := newPipelineStubs(t)
	handler := NewHandler(stubs.newService(t))

	req := httptest.NewRequest(http.MethodPost, "/api/generate-artwork", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	handler.HandleGenerate(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if !strings.Contains(resp.Details, "invalid JSON body") {
		t.Errorf("details = %q", resp.Details)
	}
}
