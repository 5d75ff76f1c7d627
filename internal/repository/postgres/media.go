package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/repository"
)

type mediaRepository struct {
	BaseRepository
}

func NewMediaRepository(db *sqlx.DB) repository.MediaRepository {
	return &mediaRepository{NewBaseRepository(db)}
}

func (r *mediaRepository) Create(ctx context.Context, file *model.MediaFile) error {
	query := `
		INSERT INTO media_files (
			id, uploaded_by, patient_id, file_name, stored_name, mime_type,
			size_bytes, is_archived, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.UploadedBy,
		file.PatientID,
		file.FileName,
		file.StoredName,
		file.MimeType,
		file.SizeBytes,
		file.CreatedAt,
		file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create media file: %w", err)
	}
	return nil
}

func (r *mediaRepository) Get(ctx context.Context, id uuid.UUID) (*model.MediaFile, error) {
	var file model.MediaFile
	err := r.db.GetContext(ctx, &file, `SELECT * FROM media_files WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media file: %w", err)
	}
	return &file, nil
}

func (r *mediaRepository) Archive(ctx context.Context, id uuid.UUID) (*model.MediaFile, error) {
	query := `
		UPDATE media_files
		SET is_archived = TRUE, archived_at = $1, updated_at = $1
		WHERE id = $2 AND is_archived = FALSE
		RETURNING *
	`
	var file model.MediaFile
	err := r.db.GetContext(ctx, &file, query, time.Now(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to archive media file: %w", err)
	}
	return &file, nil
}

func (r *mediaRepository) List(ctx context.Context, filter *model.MediaFilter) ([]*model.MediaFile, int64, error) {
	where := "WHERE 1=1"
	var args []interface{}

	if !filter.IncludeArchived {
		where += " AND is_archived = FALSE"
	}
	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM media_files "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count media files: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(
		"SELECT * FROM media_files %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	var files []*model.MediaFile
	if err := r.db.SelectContext(ctx, &files, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list media files: %w", err)
	}
	return files, total, nil
}
