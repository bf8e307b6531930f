package database

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/uu4k/promotimg-back/internal/entity"
	"github.com/uu4k/promotimg-back/internal/pkg/storage"
)

type fileCaptionRepository struct {
	storage storage.FileStorage
}

// NewFileCaptionRepository keeps caption records as JSON files next to the
// local uploads.
func NewFileCaptionRepository(storage storage.FileStorage) CaptionRepository {
	return &fileCaptionRepository{storage: storage}
}

func (r *fileCaptionRepository) Save(_ context.Context, record *entity.CaptionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return r.storage.Save(r.getMetadataPath(record.ID), bytes.NewReader(data))
}

func (r *fileCaptionRepository) FindByID(_ context.Context, id string) (*entity.CaptionRecord, error) {
	reader, err := r.storage.Get(r.getMetadataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entity.ErrCaptionNotFound
		}
		return nil, err
	}
	defer reader.Close()

	var record entity.CaptionRecord
	if err := json.NewDecoder(reader).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *fileCaptionRepository) getMetadataPath(id string) string {
	return filepath.Join("metadata", filepath.Base(id)+".json")
}
