package repository

import (
	"context"

	"zabibufresh/internal/domain/entity"
)

type FileMetadataRepository interface {
	Create(ctx context.Context, metadata *entity.FileMetadata) error
	GetByID(ctx context.Context, id string) (*entity.FileMetadata, error)
	GetByURL(ctx context.Context, url string) (*entity.FileMetadata, error)
	Delete(ctx context.Context, id string) error
}
