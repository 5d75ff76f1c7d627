package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{NewBaseRepository(db)}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, actor_id, actor_role, action, entity_type, entity_id,
			success, detail, ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.ActorRole,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Success,
		entry.Detail,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func auditWhere(filter *model.AuditFilter) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}

	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		where += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		where += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.EntityID != nil {
		args = append(args, *filter.EntityID)
		where += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (detail ILIKE $%d OR entity_type ILIKE $%d)", len(args), len(args))
	}
	return where, args
}

func (r *auditRepository) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, int64, error) {
	where, args := auditWhere(filter)

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM audit_logs "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(
		"SELECT * FROM audit_logs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	var logs []*model.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

func (r *auditRepository) Stats(ctx context.Context, filter *model.AuditFilter) (*model.AuditStats, error) {
	where, args := auditWhere(filter)

	stats := &model.AuditStats{
		ActionCounts: make(map[string]int64),
		EntityCounts: make(map[string]int64),
	}

	if err := r.db.GetContext(ctx, &stats.TotalEntries, "SELECT COUNT(*) FROM audit_logs "+where, args...); err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	failWhere := where + " AND success = FALSE"
	if err := r.db.GetContext(ctx, &stats.FailureCount, "SELECT COUNT(*) FROM audit_logs "+failWhere, args...); err != nil {
		return nil, fmt.Errorf("failed to count failures: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT action, COUNT(*) FROM audit_logs "+where+" GROUP BY action", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var count int64
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		stats.ActionCounts[action] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, "SELECT entity_type, COUNT(*) FROM audit_logs "+where+" GROUP BY entity_type", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate entities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var entity string
		var count int64
		if err := rows.Scan(&entity, &count); err != nil {
			return nil, err
		}
		stats.EntityCounts[entity] = count
	}
	return stats, rows.Err()
}

// Export returns the full filtered set without pagination, newest first.
func (r *auditRepository) Export(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error) {
	where, args := auditWhere(filter)

	var logs []*model.AuditLog
	query := "SELECT * FROM audit_logs " + where + " ORDER BY created_at DESC"
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to export audit logs: %w", err)
	}
	return logs, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
		if err != nil {
			return fmt.Errorf("failed to delete audit logs: %w", err)
		}
		count, err = result.RowsAffected()
		return err
	})
	return count, err
}
