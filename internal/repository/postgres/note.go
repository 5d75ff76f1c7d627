package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/repository"
)

type noteRepository struct {
	BaseRepository
}

func NewNoteRepository(db *sqlx.DB) repository.NoteRepository {
	return &noteRepository{NewBaseRepository(db)}
}

func (r *noteRepository) Create(ctx context.Context, note *model.PrivateNote) error {
	query := `
		INSERT INTO private_notes (
			id, creator_id, creator_role, patient_id, title, content,
			transcription, is_archived, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		note.ID,
		note.CreatorID,
		note.CreatorRole,
		note.PatientID,
		note.Title,
		note.Content,
		note.Transcription,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// scopeClause appends ownership conditions to a query. The same clause
// guards reads and writes, so rows outside the scope behave exactly like
// rows that do not exist.
func scopeClause(where string, args []interface{}, scope repository.NoteScope) (string, []interface{}) {
	if scope.CreatorID != nil {
		args = append(args, *scope.CreatorID)
		where += fmt.Sprintf(" AND creator_id = $%d", len(args))
	}
	if len(scope.CreatorRoles) > 0 {
		roles := make([]string, len(scope.CreatorRoles))
		for i, role := range scope.CreatorRoles {
			roles[i] = string(role)
		}
		args = append(args, pq.Array(roles))
		where += fmt.Sprintf(" AND creator_role = ANY($%d)", len(args))
	}
	if scope.PatientID != nil {
		args = append(args, *scope.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	return where, args
}

func (r *noteRepository) Get(ctx context.Context, id uuid.UUID, scope repository.NoteScope) (*model.PrivateNote, error) {
	args := []interface{}{id}
	where := "WHERE id = $1"
	where, args = scopeClause(where, args, scope)

	var note model.PrivateNote
	err := r.db.GetContext(ctx, &note, "SELECT * FROM private_notes "+where, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &note, nil
}

func (r *noteRepository) Update(ctx context.Context, note *model.PrivateNote, scope repository.NoteScope) error {
	args := []interface{}{note.Title, note.Content, note.Transcription, time.Now(), note.ID}
	query := `
		UPDATE private_notes
		SET title = $1, content = $2, transcription = $3, updated_at = $4
		WHERE id = $5 AND is_archived = FALSE
	`
	query, args = scopeClause(query, args, scope)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *noteRepository) Archive(ctx context.Context, id uuid.UUID, scope repository.NoteScope) (*model.PrivateNote, error) {
	args := []interface{}{time.Now(), id}
	query := `
		UPDATE private_notes
		SET is_archived = TRUE, archived_at = $1, updated_at = $1
		WHERE id = $2 AND is_archived = FALSE
	`
	query, args = scopeClause(query, args, scope)
	query += " RETURNING *"

	var note model.PrivateNote
	err := r.db.GetContext(ctx, &note, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to archive note: %w", err)
	}
	return &note, nil
}

func (r *noteRepository) List(ctx context.Context, scope repository.NoteScope, filter *model.NoteFilter) ([]*model.PrivateNote, int64, error) {
	where := "WHERE 1=1"
	var args []interface{}

	if !filter.IncludeArchived {
		where += " AND is_archived = FALSE"
	}
	where, args = scopeClause(where, args, scope)

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM private_notes "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(
		"SELECT * FROM private_notes %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	var notes []*model.PrivateNote
	if err := r.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, total, nil
}

func (r *noteRepository) Search(ctx context.Context, query string, caseInsensitive bool, scope repository.NoteScope, limit int) ([]*model.PrivateNote, error) {
	if limit <= 0 || limit > repository.SearchLimit {
		limit = repository.SearchLimit
	}

	op := "LIKE"
	if caseInsensitive {
		op = "ILIKE"
	}

	args := []interface{}{"%" + query + "%"}
	where := fmt.Sprintf(
		"WHERE is_archived = FALSE AND (title %s $1 OR content %s $1 OR transcription %s $1)",
		op, op, op,
	)
	where, args = scopeClause(where, args, scope)

	args = append(args, limit)
	sqlQuery := fmt.Sprintf(
		"SELECT * FROM private_notes %s ORDER BY created_at DESC LIMIT $%d",
		where, len(args),
	)

	var notes []*model.PrivateNote
	if err := r.db.SelectContext(ctx, &notes, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	return notes, nil
}
