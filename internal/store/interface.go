package store

import (
	"context"
	"errors"

	"posts-api/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrInvalidID = errors.New("invalid post id")
)

// Store is the persistence collaborator behind the posts API.
type Store interface {
	FindAll(ctx context.Context) ([]model.Post, error)
	FindByID(ctx context.Context, id string) (*model.Post, error)
	Create(ctx context.Context, post *model.Post) (*model.Post, error)
	UpdateByID(ctx context.Context, id uuid.UUID, fields map[string]any) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// ImportQueue holds URLs waiting to be turned into posts.
type ImportQueue interface {
	Enqueue(ctx context.Context, url string) error
	PopQueue(ctx context.Context) (string, error)
}
