package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

const assignmentColumns = `
	id,
	staff_id,
	work_shift_id,
	counter_id,
	work_date,
	shift_type,
	status,
	created_at,
	deleted_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (domain.ShiftAssignment, error) {
	var (
		a         domain.ShiftAssignment
		deletedAt sql.NullTime
	)
	dst := []any{
		&a.ID,
		&a.StaffID,
		&a.WorkShiftID,
		&a.CounterID,
		&a.WorkDate,
		&a.ShiftType,
		&a.Status,
		&a.CreatedAt,
		&deletedAt,
	}
	if err := row.Scan(dst...); err != nil {
		return domain.ShiftAssignment{}, err
	}
	if deletedAt.Valid {
		a.DeletedAt = &deletedAt.Time
	}
	return a, nil
}

func (q *queries) ListAssignments(ctx context.Context, staffID string) ([]domain.ShiftAssignment, error) {
	query := `SELECT` + assignmentColumns + `
		FROM shift_assignments
		WHERE staff_id = $1 AND status <> 'deleted'
		ORDER BY work_date, created_at
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	rows, err := q.db.QueryContext(ctx, query, staffID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	assignments := []domain.ShiftAssignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return assignments, nil
}

func (q *queries) ListAssignmentsByStaff(ctx context.Context, staffIDs []string) (map[string][]domain.ShiftAssignment, error) {
	query := `SELECT` + assignmentColumns + `
		FROM shift_assignments
		WHERE staff_id = ANY($1) AND status <> 'deleted'
		ORDER BY staff_id, work_date, created_at
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	result := make(map[string][]domain.ShiftAssignment, len(staffIDs))
	for _, id := range staffIDs {
		result[id] = []domain.ShiftAssignment{}
	}
	if len(staffIDs) == 0 {
		return result, nil
	}

	rows, err := q.db.QueryContext(ctx, query, staffIDs)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result[a.StaffID] = append(result[a.StaffID], a)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return result, nil
}

// GetAssignment 会返回已删除的排班
func (q *queries) GetAssignment(ctx context.Context, id string) (*domain.ShiftAssignment, error) {
	query := `SELECT` + assignmentColumns + `FROM shift_assignments WHERE id = $1`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	a, err := scanAssignment(q.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify(err)
	}

	return &a, nil
}

func (q *queries) InsertAssignment(ctx context.Context, a *domain.ShiftAssignment) (string, error) {
	query := `
		INSERT INTO shift_assignments (
			id,
			staff_id,
			work_shift_id,
			counter_id,
			work_date,
			shift_type,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	params := []any{
		a.ID,
		a.StaffID,
		a.WorkShiftID,
		a.CounterID,
		a.WorkDate,
		a.ShiftType,
		a.Status,
	}

	if err := q.db.QueryRowContext(ctx, query, params...).Scan(&a.ID, &a.CreatedAt); err != nil {
		return "", classify(err)
	}

	return a.ID, nil
}

func (q *queries) SoftDeleteAssignment(ctx context.Context, id string) error {
	query := `
		UPDATE shift_assignments
		SET status = 'deleted', deleted_at = NOW()
		WHERE id = $1 AND status <> 'deleted'
		RETURNING id
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	var updated string
	err := q.db.QueryRowContext(ctx, query, id).Scan(&updated)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return classify(err)
	}

	// 没有更新任何行：要么不存在，要么已经删除
	var status domain.AssignmentStatus
	if err := q.db.QueryRowContext(ctx, `SELECT status FROM shift_assignments WHERE id = $1`, id).Scan(&status); err != nil {
		return classify(err)
	}

	return unchangedDeleteError(status)
}

// unchangedDeleteError 判断 UPDATE 没有命中但记录存在时的原因
func unchangedDeleteError(status domain.AssignmentStatus) error {
	if status == domain.StatusDeleted {
		return domain.ErrAlreadyDeleted
	}
	// 记录仍然有效却没有被更新，说明期间被其他事务修改过
	return fmt.Errorf("排班状态为 %s，删除未生效: %w", status, domain.ErrConflict)
}
