package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/supabase-community/supabase-go"
	"travel-art-forge-server/modules/common/config"
	"travel-art-forge-server/modules/common/model"
)

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성
func NewClient() *Client {
	cfg := config.GetConfig()

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// InsertArtwork - generated_artworks 테이블에 레코드 생성
func (c *Client) InsertArtwork(ctx context.Context, row map[string]interface{}) (*model.GeneratedArtwork, error) {
	log.Printf("💾 Inserting artwork record for user: %v", row["user_id"])

	data, _, err := c.supabase.From("generated_artworks").
		Insert(row, false, "", "", "").
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to insert artwork record: %w", err)
	}

	var artworks []model.GeneratedArtwork
	if err := json.Unmarshal(data, &artworks); err != nil {
		return nil, fmt.Errorf("failed to parse artwork response: %w", err)
	}

	if len(artworks) == 0 {
		return nil, fmt.Errorf("no artwork record returned")
	}

	artwork := &artworks[0]
	log.Printf("✅ Artwork record created: ID=%s", artwork.ID)

	return artwork, nil
}

// ListArtworks - 유저/컬렉션별 아트워크 조회 (최신순)
func (c *Client) ListArtworks(userID, collectionID string) ([]model.GeneratedArtwork, error) {
	log.Printf("🔍 Fetching artworks: user=%s, collection=%s", userID, collectionID)

	query := c.supabase.From("generated_artworks").
		Select("*", "exact", false).
		Eq("user_id", userID)

	if collectionID != "" {
		query = query.Eq("collection_id", collectionID)
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to query generated_artworks: %w", err)
	}

	var artworks []model.GeneratedArtwork
	if err := json.Unmarshal(data, &artworks); err != nil {
		return nil, fmt.Errorf("failed to parse artworks response: %w", err)
	}

	// 최신순 정렬
	sort.Slice(artworks, func(i, j int) bool {
		return artworks[i].CreatedAt.After(artworks[j].CreatedAt)
	})

	log.Printf("✅ Fetched %d artworks", len(artworks))
	return artworks, nil
}

// SetFavorite - 즐겨찾기 토글
func (c *Client) SetFavorite(ctx context.Context, artworkID string, favorite bool) error {
	log.Printf("📝 Updating artwork %s favorite to: %v", artworkID, favorite)

	_, _, err := c.supabase.From("generated_artworks").
		Update(map[string]interface{}{"is_favorite": favorite}, "", "").
		Eq("id", artworkID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}

	return nil
}

// DeleteArtwork - 아트워크 레코드 삭제
func (c *Client) DeleteArtwork(ctx context.Context, artworkID string) error {
	log.Printf("🗑️  Deleting artwork record: %s", artworkID)

	_, _, err := c.supabase.From("generated_artworks").
		Delete("", "").
		Eq("id", artworkID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to delete artwork: %w", err)
	}

	return nil
}

// CreateJob - artwork_jobs 테이블에 Job 레코드 생성
func (c *Client) CreateJob(ctx context.Context, row map[string]interface{}) (*model.ArtworkJob, error) {
	log.Printf("💾 Creating artwork job: %v", row["job_id"])

	data, _, err := c.supabase.From("artwork_jobs").
		Insert(row, false, "", "", "").
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to insert job record: %w", err)
	}

	var jobs []model.ArtworkJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse job response: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("no job record returned")
	}

	return &jobs[0], nil
}

// FetchJob - artwork_jobs 테이블에서 Job 조회
func (c *Client) FetchJob(jobID string) (*model.ArtworkJob, error) {
	log.Printf("🔍 Fetching job from Supabase: %s", jobID)

	var jobs []model.ArtworkJob

	data, _, err := c.supabase.From("artwork_jobs").
		Select("*", "exact", false).
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query artwork_jobs: %w", err)
	}

	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse job response: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	job := &jobs[0]
	log.Printf("✅ Job fetched successfully: %s (status: %s)", job.JobID, job.JobStatus)

	return job, nil
}

// UpdateJobStatus - Job 상태 업데이트
func (c *Client) UpdateJobStatus(ctx context.Context, jobID string, status string, extra map[string]interface{}) error {
	log.Printf("📝 Updating job %s status to: %s", jobID, status)

	updateData := map[string]interface{}{
		"job_status": status,
		"updated_at": "now()",
	}

	if status == model.StatusProcessing {
		updateData["started_at"] = "now()"
	} else if status == model.StatusCompleted || status == model.StatusFailed {
		updateData["completed_at"] = "now()"
	}

	for k, v := range extra {
		updateData[k] = v
	}

	_, _, err := c.supabase.From("artwork_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	log.Printf("✅ Job %s status updated to: %s", jobID, status)
	return nil
}
