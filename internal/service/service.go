package service

import (
	"context"

	"github.com/uu4k/promotimg-back/internal/database"
	"github.com/uu4k/promotimg-back/internal/entity"
	"github.com/uu4k/promotimg-back/internal/pkg/kafka"
	"github.com/uu4k/promotimg-back/internal/pkg/pipeline"
	"github.com/uu4k/promotimg-back/internal/pkg/storage"
)

type CaptionService interface {
	CreateCaption(ctx context.Context, req entity.CaptionRequest) (*entity.CaptionResponse, error)
	GetCaption(ctx context.Context, id string) (*entity.CaptionRecord, error)
}

// Runner is satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, req entity.CaptionRequest, consume pipeline.ConsumeFunc) error
}

type captionService struct {
	pipeline Runner
	uploader storage.Uploader
	repo     database.CaptionRepository
	cache    database.URLCache
	producer kafka.Producer
	newID    func() string
}

func NewCaptionService(pipeline Runner, uploader storage.Uploader, repo database.CaptionRepository, cache database.URLCache, producer kafka.Producer) CaptionService {
	return &captionService{
		pipeline: pipeline,
		uploader: uploader,
		repo:     repo,
		cache:    cache,
		producer: producer,
		newID:    newCaptionID,
	}
}
