package domain

import "context"

// GenerationRepository is the persistence gateway for generation records.
type GenerationRepository interface {
	Create(ctx context.Context, job *GenerationJob) error
	Complete(ctx context.Context, id string, fields CompletionFields) error
	Fail(ctx context.Context, id string, fields FailureFields) error
	GetByID(ctx context.Context, id string) (*GenerationJob, error)
	ListRecent(ctx context.Context, limit int) ([]*GenerationJob, error)
}

// StyleProfileRepository stores reusable writing-voice profiles.
type StyleProfileRepository interface {
	Create(ctx context.Context, profile *StyleProfile) error
	GetByID(ctx context.Context, id string) (*StyleProfile, error)
	List(ctx context.Context) ([]*StyleProfile, error)
}
