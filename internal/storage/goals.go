package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

const goalColumns = "id, user_id, kind, period, category_id, limit_cents, start_date, end_date, label"

func goalConflict(g core.Goal) error {
	return &core.IntegrityError{Entity: "goal", Name: string(g.Kind), Reason: "already exists for this period"}
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g          core.Goal
		kind       string
		period     string
		categoryID sql.NullInt64
		limit      int64
		start, end sql.NullString
	)
	if err := row.Scan(&g.ID, &g.UserID, &kind, &period, &categoryID, &limit, &start, &end, &g.Label); err != nil {
		return core.Goal{}, err
	}
	g.Kind = core.GoalKind(kind)
	g.Period = core.PeriodType(period)
	g.CategoryID = categoryID.Int64
	g.Limit = core.Cents(limit)

	var err error
	if g.Start, err = parseDate(start); err != nil {
		return core.Goal{}, fmt.Errorf("goal %d start: %w", g.ID, err)
	}
	if g.End, err = parseDate(end); err != nil {
		return core.Goal{}, fmt.Errorf("goal %d end: %w", g.ID, err)
	}
	return g, nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (user_id, kind, period, category_id, limit_cents, start_date, end_date, label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, string(g.Kind), string(g.Period), nullID(g.CategoryID), g.Limit.Cents,
		dateArg(g.Start), dateArg(g.End), g.Label)
	if isUniqueError(err) {
		return core.Goal{}, goalConflict(g)
	}
	if isForeignKeyError(err) {
		return core.Goal{}, &core.NotFoundError{Entity: "category", ID: g.CategoryID}
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return core.Goal{}, fmt.Errorf("last insert id: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id int64) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = ? AND user_id = ?", id, userID)
	g, err := scanGoal(row)
	if err != nil {
		return core.Goal{}, notFound(err, "goal", id)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+goalColumns+" FROM goals WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET kind = ?, period = ?, category_id = ?, limit_cents = ?, start_date = ?, end_date = ?, label = ?
		WHERE id = ? AND user_id = ?`,
		string(g.Kind), string(g.Period), nullID(g.CategoryID), g.Limit.Cents,
		dateArg(g.Start), dateArg(g.End), g.Label, g.ID, g.UserID)
	if isUniqueError(err) {
		return goalConflict(g)
	}
	if isForeignKeyError(err) {
		return &core.NotFoundError{Entity: "category", ID: g.CategoryID}
	}
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return affectedOrNotFound(res, "goal", g.ID)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM goals WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return affectedOrNotFound(res, "goal", id)
}
