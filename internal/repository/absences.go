package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

func (r *Repository) CreateAbsence(ctx context.Context, absence *domain.AbsenceReference) error {
	query := `
		INSERT INTO absences (kind, employee_id, employee_name, employee_role, window_start, window_end, required_hours, required_skill_level, allow_cross_role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		absence.Kind,
		absence.EmployeeID,
		absence.EmployeeName,
		absence.EmployeeRole,
		absence.Window.Start,
		absence.Window.End,
		absence.RequiredHours,
		absence.RequiredSkillLevel,
		absence.AllowCrossRole,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&absence.ID, &absence.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAbsenceByID(ctx context.Context, id int64) (*domain.AbsenceReference, error) {
	query := `
		SELECT kind, employee_id, employee_name, employee_role, window_start, window_end, required_hours, required_skill_level, allow_cross_role, created_at
		FROM absences WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	absence := &domain.AbsenceReference{
		ID: id,
	}

	dst := []any{
		&absence.Kind,
		&absence.EmployeeID,
		&absence.EmployeeName,
		&absence.EmployeeRole,
		&absence.Window.Start,
		&absence.Window.End,
		&absence.RequiredHours,
		&absence.RequiredSkillLevel,
		&absence.AllowCrossRole,
		&absence.CreatedAt,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return absence, nil
}

func (r *Repository) GetAllAbsences(ctx context.Context) ([]*domain.AbsenceReference, error) {
	query := `
		SELECT id, kind, employee_id, employee_name, employee_role, window_start, window_end, required_hours, required_skill_level, allow_cross_role, created_at
		FROM absences
		ORDER BY window_start DESC, id DESC
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	absences := make([]*domain.AbsenceReference, 0)
	for rows.Next() {
		absence := &domain.AbsenceReference{}
		dst := []any{
			&absence.ID,
			&absence.Kind,
			&absence.EmployeeID,
			&absence.EmployeeName,
			&absence.EmployeeRole,
			&absence.Window.Start,
			&absence.Window.End,
			&absence.RequiredHours,
			&absence.RequiredSkillLevel,
			&absence.AllowCrossRole,
			&absence.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		absences = append(absences, absence)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return absences, nil
}
