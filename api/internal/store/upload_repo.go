package store

import (
	"context"
	"database/sql"
	"time"
)

type UploadRepo struct{ DB *sql.DB }

func NewUploadRepo(db *sql.DB) *UploadRepo { return &UploadRepo{DB: db} }

func (r *UploadRepo) Insert(ctx context.Context, chatID int64, imageHash, engine, model string) (Upload, error) {
	const q = `
insert into uploads (chat_id, image_hash, engine, model)
values ($1, $2, $3, $4)
returning id, created_at, chat_id, image_hash, engine, model, processed, match_id, coalesce(notes,'')`
	var u Upload
	err := r.DB.QueryRowContext(ctx, q, chatID, imageHash, engine, model).Scan(
		&u.ID, &u.CreatedAt, &u.ChatID, &u.ImageHash, &u.Engine, &u.Model,
		&u.Processed, &u.MatchID, &u.Notes)
	return u, err
}

func (r *UploadRepo) MarkProcessed(ctx context.Context, uploadID, matchID int64) error {
	const q = `update uploads set processed = true, match_id = $2 where id = $1`
	_, err := r.DB.ExecContext(ctx, q, uploadID, matchID)
	return err
}

func (r *UploadRepo) SetNotes(ctx context.Context, uploadID int64, notes string) error {
	const q = `update uploads set notes = $2 where id = $1`
	_, err := r.DB.ExecContext(ctx, q, uploadID, notes)
	return err
}

// FindByHash returns the latest processed upload for an image hash within
// maxAge, for screenshot dedup. maxAge <= 0 disables the age check.
func (r *UploadRepo) FindByHash(ctx context.Context, imageHash string, maxAge time.Duration) (*Upload, error) {
	const q = `
select id, created_at, chat_id, image_hash, engine, model, processed, match_id, coalesce(notes,'')
from uploads
where image_hash = $1 and processed = true
order by created_at desc
limit 1`
	var u Upload
	err := r.DB.QueryRowContext(ctx, q, imageHash).Scan(
		&u.ID, &u.CreatedAt, &u.ChatID, &u.ImageHash, &u.Engine, &u.Model,
		&u.Processed, &u.MatchID, &u.Notes)
	if err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(u.CreatedAt) > maxAge {
		return nil, ErrNotFound
	}
	return &u, nil
}
