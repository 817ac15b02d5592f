package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/backfill"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

const assignmentColumns = `
	id,
	absence_id,
	absent_employee_name,
	absent_employee_role,
	employee_id,
	employee_name,
	employee_role,
	window_start,
	window_end,
	estimated_hours,
	actual_hours,
	premium_type,
	status,
	rejection_reason,
	over_capacity,
	assigner_id,
	confirmer_id,
	created_at,
	updated_at,
	version
`

func scanAssignment(row interface{ Scan(...any) error }) (*domain.BackfillAssignment, error) {
	a := &domain.BackfillAssignment{}
	var actualHours sql.NullInt32
	var rejectionReason sql.NullString
	var confirmerID sql.NullInt64

	dst := []any{
		&a.ID,
		&a.AbsenceID,
		&a.AbsentEmployeeName,
		&a.AbsentEmployeeRole,
		&a.EmployeeID,
		&a.EmployeeName,
		&a.EmployeeRole,
		&a.Window.Start,
		&a.Window.End,
		&a.EstimatedHours,
		&actualHours,
		&a.PremiumType,
		&a.Status,
		&rejectionReason,
		&a.OverCapacity,
		&a.AssignerID,
		&confirmerID,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if actualHours.Valid {
		a.ActualHours = &actualHours.Int32
	}
	if rejectionReason.Valid {
		a.RejectionReason = &rejectionReason.String
	}
	if confirmerID.Valid {
		a.ConfirmerID = &confirmerID.Int64
	}

	return a, nil
}

// CreateAssignment 在一个事务内完成冲突检查、容量检查和插入。
// 先锁住员工行，把同一员工的并发创建串行化到员工粒度，
// 不相关员工之间的创建互不阻塞
func (r *Repository) CreateAssignment(ctx context.Context, a *domain.BackfillAssignment, capHours int32, override bool) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var lockedID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM employees WHERE id = $1 FOR UPDATE`, a.EmployeeID).Scan(&lockedID); err != nil {
		return err
	}

	// 门禁检查只需要现有安排的状态、时间段和小时数
	query := `
		SELECT id, status, window_start, window_end, estimated_hours
		FROM backfill_assignments
		WHERE employee_id = $1
	`
	rows, err := tx.QueryContext(ctx, query, a.EmployeeID)
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := make([]*domain.BackfillAssignment, 0)
	for rows.Next() {
		e := &domain.BackfillAssignment{EmployeeID: a.EmployeeID}
		if err := rows.Scan(&e.ID, &e.Status, &e.Window.Start, &e.Window.End, &e.EstimatedHours); err != nil {
			return err
		}
		existing = append(existing, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := backfill.CheckCreate(existing, a, capHours, override); err != nil {
		return err
	}

	query = `
		INSERT INTO backfill_assignments (
			absence_id,
			absent_employee_name,
			absent_employee_role,
			employee_id,
			employee_name,
			employee_role,
			window_start,
			window_end,
			estimated_hours,
			premium_type,
			status,
			over_capacity,
			assigner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at, version
	`

	args := []any{
		a.AbsenceID,
		a.AbsentEmployeeName,
		a.AbsentEmployeeRole,
		a.EmployeeID,
		a.EmployeeName,
		a.EmployeeRole,
		a.Window.Start,
		a.Window.End,
		a.EstimatedHours,
		a.PremiumType,
		a.Status,
		a.OverCapacity,
		a.AssignerID,
	}
	dst := []any{&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAssignmentByID(ctx context.Context, id int64) (*domain.BackfillAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM backfill_assignments WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanAssignment(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) ListAssignmentsByEmployee(ctx context.Context, employeeID int64) ([]*domain.BackfillAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM backfill_assignments WHERE employee_id = $1 ORDER BY id`

	return r.listAssignments(ctx, query, employeeID)
}

func (r *Repository) ListAssignmentsByAbsence(ctx context.Context, absenceID int64) ([]*domain.BackfillAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM backfill_assignments WHERE absence_id = $1 ORDER BY id`

	return r.listAssignments(ctx, query, absenceID)
}

func (r *Repository) listAssignments(ctx context.Context, query string, arg any) ([]*domain.BackfillAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.BackfillAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// UpdateAssignment 用版本号做条件更新实现乐观并发控制，
// 没有命中任何行说明版本已过期，返回并发错误让调用方重读后重试
func (r *Repository) UpdateAssignment(ctx context.Context, a *domain.BackfillAssignment) error {
	query := `
		UPDATE backfill_assignments
		SET
			status = $1,
			actual_hours = $2,
			rejection_reason = $3,
			confirmer_id = $4,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING updated_at, version
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var actualHours sql.NullInt32
	if a.ActualHours != nil {
		actualHours = sql.NullInt32{Int32: *a.ActualHours, Valid: true}
	}
	var rejectionReason sql.NullString
	if a.RejectionReason != nil {
		rejectionReason = sql.NullString{String: *a.RejectionReason, Valid: true}
	}
	var confirmerID sql.NullInt64
	if a.ConfirmerID != nil {
		confirmerID = sql.NullInt64{Int64: *a.ConfirmerID, Valid: true}
	}

	args := []any{a.Status, actualHours, rejectionReason, confirmerID, a.ID, a.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&a.UpdatedAt, &a.Version); err != nil {
		if err == sql.ErrNoRows {
			return &backfill.ConcurrencyError{
				AssignmentID:    a.ID,
				ExpectedVersion: a.Version,
			}
		}
		return err
	}

	return nil
}
