package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
)

// StyleProfileRepositoryPG implements domain.StyleProfileRepository.
type StyleProfileRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewStyleProfileRepository creates a style profile repository backed by PostgreSQL.
func NewStyleProfileRepository(pool *pgxpool.Pool) *StyleProfileRepositoryPG {
	return &StyleProfileRepositoryPG{pool: pool}
}

// Create inserts a new profile.
func (r *StyleProfileRepositoryPG) Create(ctx context.Context, profile *domain.StyleProfile) error {
	query := `
INSERT INTO style_profiles (id, name, description, profile, sample_count)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Name,
		profile.Description,
		profile.Profile,
		profile.SampleCount,
	)
	return err
}

// GetByID fetches a profile by its identifier.
func (r *StyleProfileRepositoryPG) GetByID(ctx context.Context, id string) (*domain.StyleProfile, error) {
	query := `
SELECT id, name, description, profile, sample_count, created_at, updated_at
FROM style_profiles
WHERE id = $1;
`
	var p domain.StyleProfile
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Profile,
		&p.SampleCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns all profiles, newest first.
func (r *StyleProfileRepositoryPG) List(ctx context.Context) ([]*domain.StyleProfile, error) {
	query := `
SELECT id, name, description, profile, sample_count, created_at, updated_at
FROM style_profiles
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var profiles []*domain.StyleProfile
	for rows.Next() {
		var p domain.StyleProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Profile, &p.SampleCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

var _ domain.StyleProfileRepository = (*StyleProfileRepositoryPG)(nil)
