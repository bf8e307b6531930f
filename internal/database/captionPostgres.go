package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uu4k/promotimg-back/internal/entity"

	_ "github.com/lib/pq"
)

type captionPostgres struct {
	db *sql.DB
}

func NewCaptionPostgres(db *sql.DB) CaptionRepository {
	return &captionPostgres{db: db}
}

func (r *captionPostgres) Save(ctx context.Context, record *entity.CaptionRecord) error {
	query := `INSERT INTO captions (id, url, text_position, text_size, ext, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, record.ID, record.URL, string(record.Position), record.TextSizePx, record.Ext, record.CreatedAt)
	return err
}

func (r *captionPostgres) FindByID(ctx context.Context, id string) (*entity.CaptionRecord, error) {
	var record entity.CaptionRecord
	var position string
	query := `SELECT id, url, text_position, text_size, ext, created_at FROM captions WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&record.ID, &record.URL, &position, &record.TextSizePx, &record.Ext, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrCaptionNotFound
		}
		return nil, err
	}
	record.Position = entity.Position(position)
	return &record, nil
}
