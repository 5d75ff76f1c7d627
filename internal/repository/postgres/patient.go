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

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, created_by, user_id, first_name, last_name, email, phone,
			date_of_birth, history, is_archived, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.CreatedBy,
		patient.UserID,
		patient.FirstName,
		patient.LastName,
		patient.Email,
		patient.Phone,
		patient.DateOfBirth,
		patient.History,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, `SELECT * FROM patients WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

// Update is a conditional write: when ownedBy is set the row must match the
// owner as well as the id, so a non-owner sees the same zero-row outcome as
// a nonexistent record.
func (r *patientRepository) Update(ctx context.Context, patient *model.Patient, ownedBy *uuid.UUID) error {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
		    date_of_birth = $5, history = $6, updated_at = $7
		WHERE id = $8 AND is_archived = FALSE
	`
	args := []interface{}{
		patient.FirstName,
		patient.LastName,
		patient.Email,
		patient.Phone,
		patient.DateOfBirth,
		patient.History,
		time.Now(),
		patient.ID,
	}
	if ownedBy != nil {
		query += " AND created_by = $9"
		args = append(args, *ownedBy)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
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

func (r *patientRepository) Archive(ctx context.Context, id uuid.UUID, ownedBy *uuid.UUID) (*model.Patient, error) {
	query := `
		UPDATE patients
		SET is_archived = TRUE, archived_at = $1, updated_at = $1
		WHERE id = $2 AND is_archived = FALSE
	`
	args := []interface{}{time.Now(), id}
	if ownedBy != nil {
		query += " AND created_by = $3"
		args = append(args, *ownedBy)
	}
	query += " RETURNING *"

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to archive patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int64, error) {
	where := "WHERE 1=1"
	var args []interface{}

	if !filter.IncludeArchived {
		where += " AND is_archived = FALSE"
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args), len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM patients "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(
		"SELECT * FROM patients %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) Search(ctx context.Context, query string, limit int) ([]*model.Patient, error) {
	if limit <= 0 || limit > repository.SearchLimit {
		limit = repository.SearchLimit
	}
	sqlQuery := `
		SELECT * FROM patients
		WHERE is_archived = FALSE
		  AND (first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1 OR history ILIKE $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, sqlQuery, "%"+query+"%", limit); err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}
