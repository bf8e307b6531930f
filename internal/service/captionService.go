package service

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uu4k/promotimg-back/internal/entity"
)

func newCaptionID() string {
	return uuid.New().String()
}

func (s *captionService) CreateCaption(ctx context.Context, req entity.CaptionRequest) (*entity.CaptionResponse, error) {
	key := cacheKey(req)
	log := logrus.WithFields(logrus.Fields{"position": req.Position, "cache_key": key[:12]})

	if url, ok, err := s.cache.GetURL(ctx, key); err != nil {
		log.WithError(err).Warn("caption cache lookup failed")
	} else if ok {
		log.Debug("caption served from cache")
		return &entity.CaptionResponse{URL: url}, nil
	}

	id := s.newID()
	log = log.WithField("caption_id", id)

	var url string
	err := s.pipeline.Run(ctx, req, func(ctx context.Context, result entity.CompositeResult) error {
		objectName := id + result.Ext
		uploaded, err := s.uploader.Upload(ctx, result.Path, objectName)
		if err != nil {
			return &entity.StorageFailure{Object: objectName, Err: err}
		}
		url = uploaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithField("url", url).Info("caption image published")

	now := time.Now().UTC()
	record := &entity.CaptionRecord{
		ID:         id,
		URL:        url,
		Position:   req.Position,
		TextSizePx: req.TextSizePx,
		Ext:        req.BaseImageExt,
		CreatedAt:  now,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		log.WithError(err).Error("failed to save caption record")
	}

	if err := s.cache.SetURL(ctx, key, url); err != nil {
		log.WithError(err).Warn("failed to cache caption url")
	}

	event := entity.CaptionCreatedEvent{ID: id, URL: url, Position: req.Position, CreatedAt: now}
	if err := s.producer.SendMessage(ctx, id, event); err != nil {
		log.WithError(err).Error("failed to publish caption event")
	}

	return &entity.CaptionResponse{URL: url}, nil
}

func (s *captionService) GetCaption(ctx context.Context, id string) (*entity.CaptionRecord, error) {
	return s.repo.FindByID(ctx, id)
}

// cacheKey fingerprints every input that affects the composite.
func cacheKey(req entity.CaptionRequest) string {
	h := sha256.New()
	for _, field := range []string{req.Text, string(req.Position), req.TextColor, req.BgColor, req.BaseImageExt} {
		writeField(h, []byte(field))
	}
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], math.Float64bits(req.TextSizePx))
	writeField(h, size[:])
	writeField(h, req.BaseImage)
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	h.Write(n[:])
	h.Write(b)
}
