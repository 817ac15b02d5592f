package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

func (r *Repository) CreateEmployee(ctx context.Context, employee *domain.Employee) error {
	query := `
		INSERT INTO employees (username, full_name, email, role, skill_level, recent_backfill_hours, monthly_cap_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at, version
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		employee.Username,
		employee.FullName,
		employee.Email,
		employee.Role,
		employee.SkillLevel,
		employee.RecentBackfillHours,
		employee.MonthlyCapHours,
	}
	dst := []any{&employee.ID, &employee.IsActive, &employee.CreatedAt, &employee.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `
		SELECT username, full_name, email, role, skill_level, recent_backfill_hours, monthly_cap_hours, is_active, created_at, version
		FROM employees WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	employee := &domain.Employee{
		ID: id,
	}

	dst := []any{
		&employee.Username,
		&employee.FullName,
		&employee.Email,
		&employee.Role,
		&employee.SkillLevel,
		&employee.RecentBackfillHours,
		&employee.MonthlyCapHours,
		&employee.IsActive,
		&employee.CreatedAt,
		&employee.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return employee, nil
}

func (r *Repository) GetEmployeeByUsername(ctx context.Context, username string) (*domain.Employee, error) {
	query := `
		SELECT id, full_name, email, role, skill_level, recent_backfill_hours, monthly_cap_hours, is_active, created_at, version
		FROM employees WHERE username = $1
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	employee := &domain.Employee{
		Username: username,
	}

	dst := []any{
		&employee.ID,
		&employee.FullName,
		&employee.Email,
		&employee.Role,
		&employee.SkillLevel,
		&employee.RecentBackfillHours,
		&employee.MonthlyCapHours,
		&employee.IsActive,
		&employee.CreatedAt,
		&employee.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}

	return employee, nil
}

func (r *Repository) GetAllEmployees(ctx context.Context) ([]*domain.Employee, error) {
	query := `
		SELECT id, username, full_name, email, role, skill_level, recent_backfill_hours, monthly_cap_hours, is_active, created_at, version
		FROM employees
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		employee := &domain.Employee{}
		dst := []any{
			&employee.ID,
			&employee.Username,
			&employee.FullName,
			&employee.Email,
			&employee.Role,
			&employee.SkillLevel,
			&employee.RecentBackfillHours,
			&employee.MonthlyCapHours,
			&employee.IsActive,
			&employee.CreatedAt,
			&employee.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// ListActiveEmployees 是候选人排序使用的目录视图，按 ID 升序保证输出确定
func (r *Repository) ListActiveEmployees(ctx context.Context) ([]*domain.Employee, error) {
	query := `
		SELECT id, username, full_name, email, role, skill_level, recent_backfill_hours, monthly_cap_hours, is_active, created_at, version
		FROM employees
		WHERE is_active = TRUE
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		employee := &domain.Employee{}
		dst := []any{
			&employee.ID,
			&employee.Username,
			&employee.FullName,
			&employee.Email,
			&employee.Role,
			&employee.SkillLevel,
			&employee.RecentBackfillHours,
			&employee.MonthlyCapHours,
			&employee.IsActive,
			&employee.CreatedAt,
			&employee.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func (r *Repository) UpdateEmployee(ctx context.Context, employee *domain.Employee) error {
	query := `
		UPDATE employees
		SET
			full_name = $1,
			email = $2,
			role = $3,
			skill_level = $4,
			recent_backfill_hours = $5,
			monthly_cap_hours = $6,
			is_active = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		employee.FullName,
		employee.Email,
		employee.Role,
		employee.SkillLevel,
		employee.RecentBackfillHours,
		employee.MonthlyCapHours,
		employee.IsActive,
		employee.ID,
		employee.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&employee.Version); err != nil {
		return err
	}

	return nil
}
