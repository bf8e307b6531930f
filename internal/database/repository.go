package database

import (
	"context"

	"github.com/uu4k/promotimg-back/internal/entity"
)

type CaptionRepository interface {
	Save(ctx context.Context, record *entity.CaptionRecord) error
	FindByID(ctx context.Context, id string) (*entity.CaptionRecord, error)
}

// URLCache maps a request fingerprint to the URL of an already published caption.
type URLCache interface {
	GetURL(ctx context.Context, key string) (string, bool, error)
	SetURL(ctx context.Context, key, url string) error
}
