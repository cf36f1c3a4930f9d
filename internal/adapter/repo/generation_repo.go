package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
)

// GenerationRepositoryPG implements domain.GenerationRepository.
type GenerationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository creates a generation repository backed by PostgreSQL.
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{pool: pool}
}

// Create inserts a new generation record in the running state.
func (r *GenerationRepositoryPG) Create(ctx context.Context, job *domain.GenerationJob) error {
	query := `
INSERT INTO generations (id, topic, keywords, style, length, mode, style_profile_id, additional_info, status, image_urls)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Topic,
		job.Keywords,
		job.Style,
		job.Length,
		job.Mode,
		job.StyleProfileID,
		job.AdditionalInfo,
		job.Status,
		job.ImageURLs,
	)
	return err
}

// Complete marks the record completed and writes every output field at once.
func (r *GenerationRepositoryPG) Complete(ctx context.Context, id string, fields domain.CompletionFields) error {
	query := `
UPDATE generations
SET status = 'completed',
    title = $2,
    content = $3,
    char_count = $4,
    read_time = $5,
    headings = $6,
    seo_score = $7,
    image_urls = $8,
    input_tokens = $9,
    output_tokens = $10,
    cost_usd = $11,
    duration_sec = $12,
    completed_at = NOW()
WHERE id = $1 AND status = 'running';
`
	_, err := r.pool.Exec(ctx, query,
		id,
		fields.Title,
		fields.Content,
		fields.CharCount,
		fields.ReadTime,
		fields.Headings,
		fields.SEOScore,
		fields.ImageURLs,
		fields.InputTokens,
		fields.OutputTokens,
		fields.CostUSD,
		fields.DurationSec,
	)
	return err
}

// Fail marks the record failed with its diagnostic and partial accounting.
// Content stays null on this path.
func (r *GenerationRepositoryPG) Fail(ctx context.Context, id string, fields domain.FailureFields) error {
	query := `
UPDATE generations
SET status = 'failed',
    error = $2,
    input_tokens = $3,
    output_tokens = $4,
    cost_usd = $5,
    duration_sec = $6,
    completed_at = NOW()
WHERE id = $1 AND status = 'running';
`
	_, err := r.pool.Exec(ctx, query,
		id,
		fields.Error,
		fields.InputTokens,
		fields.OutputTokens,
		fields.CostUSD,
		fields.DurationSec,
	)
	return err
}

const generationColumns = `
id, topic, keywords, style, length, mode, style_profile_id, additional_info,
title, content, char_count, read_time, headings, seo_score, image_urls,
input_tokens, output_tokens, cost_usd, duration_sec,
status, error, created_at, completed_at`

// GetByID fetches a generation by its identifier.
func (r *GenerationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.GenerationJob, error) {
	query := `SELECT ` + generationColumns + ` FROM generations WHERE id = $1;`
	job, err := scanGeneration(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListRecent returns the newest records first.
func (r *GenerationRepositoryPG) ListRecent(ctx context.Context, limit int) ([]*domain.GenerationJob, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + generationColumns + ` FROM generations ORDER BY created_at DESC LIMIT $1;`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var jobs []*domain.GenerationJob
	for rows.Next() {
		job, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanGeneration(row pgx.Row) (*domain.GenerationJob, error) {
	var job domain.GenerationJob
	var title *string
	if err := row.Scan(
		&job.ID,
		&job.Topic,
		&job.Keywords,
		&job.Style,
		&job.Length,
		&job.Mode,
		&job.StyleProfileID,
		&job.AdditionalInfo,
		&title,
		&job.Content,
		&job.CharCount,
		&job.ReadTime,
		&job.Headings,
		&job.SEOScore,
		&job.ImageURLs,
		&job.InputTokens,
		&job.OutputTokens,
		&job.CostUSD,
		&job.DurationSec,
		&job.Status,
		&job.Error,
		&job.CreatedAt,
		&job.CompletedAt,
	); err != nil {
		return nil, err
	}
	if title != nil {
		job.Title = *title
	}
	return &job, nil
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)
