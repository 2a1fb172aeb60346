package generateartwork

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// chatStub - OpenAI 호환 chat/completions 응답을 돌려주는 테스트 서버
func chatStub(t *testing.T, status int, content string) (*httptest.Server, *openai.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"message": "boom"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return srv, openai.NewClientWithConfig(cfg)
}

func testImage(url string) *FetchedImage {
	return &FetchedImage{
		SourceURL:   url,
		ContentType: "image/jpeg",
		ByteSize:    2048,
		Base64:      "aGVsbG8=",
		DataURL:     "data:image/jpeg;base64,aGVsbG8=",
	}
}

func TestDescribeImage(t *testing.T) {
	srv, client := chatStub(t, http.StatusOK, "A person standing on a beach at sunset.")
	defer srv.Close()

	got := DescribeImage(context.Background(), client, "test-model", "data:image/jpeg;base64,aGVsbG8=")
	if got != "A person standing on a beach at sunset." {
		t.Errorf("description = %q", got)
	}
}

func TestDescribeImageNeverFails(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv, client := chatStub(t, http.StatusInternalServerError, "")
		defer srv.Close()

		got := DescribeImage(context.Background(), client, "test-model", "data:image/jpeg;base64,aGVsbG8=")
		if got != NoValidationAvailable {
			t.Errorf("got %q, want placeholder %q", got, NoValidationAvailable)
		}
	})

	t.Run("empty content", func(t *testing.T) {
		srv, client := chatStub(t, http.StatusOK, "   ")
		defer srv.Close()

		got := DescribeImage(context.Background(), client, "test-model", "data:image/jpeg;base64,aGVsbG8=")
		if got != NoDescription {
			t.Errorf("got %q, want placeholder %q", got, NoDescription)
		}
	})
}

func TestAnalyzePhotos(t *testing.T) {
	analysis := "Photo 1: one person in front of a stone building.\nPhoto 2: empty beach with two boats."
	srv, client := chatStub(t, http.StatusOK, analysis)
	defer srv.Close()

	images := []*FetchedImage{testImage("https://example.com/a.jpg"), testImage("https://example.com/b.jpg")}

	got, err := AnalyzePhotos(context.Background(), client, "test-model", images, "a watercolor painting")
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if got != analysis {
		t.Errorf("analysis = %q", got)
	}
}

func TestAnalyzePhotosFailures(t *testing.T) {
	t.Run("no photos", func(t *testing.T) {
		srv, client := chatStub(t, http.StatusOK, "unused")
		defer srv.Close()

		_, err := AnalyzePhotos(context.Background(), client, "test-model", nil, "a watercolor painting")
		if !errors.Is(err, ErrAnalysis) {
			t.Errorf("error = %v, want ErrAnalysis", err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv, client := chatStub(t, http.StatusInternalServerError, "")
		defer srv.Close()

		_, err := AnalyzePhotos(context.Background(), client, "test-model", []*FetchedImage{testImage("u")}, "a watercolor painting")
		if !errors.Is(err, ErrAnalysis) {
			t.Errorf("error = %v, want ErrAnalysis", err)
		}
	})

	t.Run("empty content", func(t *testing.T) {
		srv, client := chatStub(t, http.StatusOK, "")
		defer srv.Close()

		_, err := AnalyzePhotos(context.Background(), client, "test-model", []*FetchedImage{testImage("u")}, "a watercolor painting")
		if !errors.Is(err, ErrAnalysis) {
			t.Errorf("error = %v, want ErrAnalysis", err)
		}
	})
}

func TestAnalyzePhotosInstructionMentionsEachPhoto(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	client := openai.NewClientWithConfig(cfg)

	images := []*FetchedImage{testImage("a"), testImage("b"), testImage("c")}
	if _, err := AnalyzePhotos(context.Background(), client, "test-model", images, "an abstract interpretation"); err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	if !strings.Contains(gotBody, "Photo 3") {
		t.Error("instruction should number photos through Photo 3")
	}
	if !strings.Contains(gotBody, "PEOPLE") || !strings.Contains(gotBody, "ENVIRONMENT") {
		t.Error("instruction should demand the structured inventory sections")
	}
}

func TestAnalysisStatsFor(t *testing.T) {
	analysis := "Photo 1: a person near a building. Photo 2: three people and another building."
	stats := AnalysisStatsFor(analysis)

	if stats.Length != len(analysis) {
		t.Errorf("length = %d, want %d", stats.Length, len(analysis))
	}
	if stats.PhotoMentions != 2 {
		t.Errorf("photo mentions = %d, want 2", stats.PhotoMentions)
	}
	if stats.PeopleMentions != 2 {
		t.Errorf("people mentions = %d, want 2", stats.PeopleMentions)
	}
	if stats.BuildingMentions != 2 {
		t.Errorf("building mentions = %d, want 2", stats.BuildingMentions)
	}
}
