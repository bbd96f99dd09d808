package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

func (q *queries) GetStaff(ctx context.Context, id string) (*domain.Staff, error) {
	query := `
		SELECT username, full_name, is_active, created_at
		FROM staff WHERE id = $1
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	staff := &domain.Staff{
		ID: id,
	}

	dst := []any{&staff.Username, &staff.FullName, &staff.IsActive, &staff.CreatedAt}
	if err := q.db.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, classify(err)
	}

	return staff, nil
}

func (q *queries) ListStaff(ctx context.Context) ([]*domain.Staff, error) {
	query := `
		SELECT id, username, full_name, is_active, created_at
		FROM staff
		WHERE is_active
		ORDER BY username
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	staff := []*domain.Staff{}
	for rows.Next() {
		var s domain.Staff
		if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		staff = append(staff, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return staff, nil
}

func (q *queries) CreateStaff(ctx context.Context, staff *domain.Staff) error {
	query := `
		INSERT INTO staff (id, username, full_name, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	params := []any{staff.ID, staff.Username, staff.FullName, staff.IsActive}
	if err := q.db.QueryRowContext(ctx, query, params...).Scan(&staff.CreatedAt); err != nil {
		return classify(err)
	}

	return nil
}

func (q *queries) GetCounter(ctx context.Context, id string) (*domain.Counter, error) {
	query := `SELECT name, is_active FROM counters WHERE id = $1`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	counter := &domain.Counter{
		ID: id,
	}

	if err := q.db.QueryRowContext(ctx, query, id).Scan(&counter.Name, &counter.IsActive); err != nil {
		return nil, classify(err)
	}

	return counter, nil
}

func (q *queries) CreateCounter(ctx context.Context, counter *domain.Counter) error {
	query := `INSERT INTO counters (id, name, is_active) VALUES ($1, $2, $3)`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	if _, err := q.db.ExecContext(ctx, query, counter.ID, counter.Name, counter.IsActive); err != nil {
		return classify(err)
	}

	return nil
}

func (q *queries) GetWorkShift(ctx context.Context, id string) (*domain.WorkShiftTemplate, error) {
	query := `
		SELECT shift_type, start_time, end_time, calendar_date
		FROM work_shifts WHERE id = $1
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	ws := &domain.WorkShiftTemplate{
		ID: id,
	}

	dst := []any{&ws.ShiftType, &ws.StartTime, &ws.EndTime, &ws.CalendarDate}
	if err := q.db.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, classify(err)
	}

	return ws, nil
}

// CreateWorkShift 在同一天已经存在同类型班次时什么也不做，返回 false
func (q *queries) CreateWorkShift(ctx context.Context, ws *domain.WorkShiftTemplate) (bool, error) {
	query := `
		INSERT INTO work_shifts (id, shift_type, start_time, end_time, calendar_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (calendar_date, shift_type) DO NOTHING
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	params := []any{ws.ID, ws.ShiftType, ws.StartTime, ws.EndTime, ws.CalendarDate}
	result, err := q.db.ExecContext(ctx, query, params...)
	if err != nil {
		return false, classify(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}
