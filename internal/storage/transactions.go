package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

const transactionColumns = `t.id, t.user_id, t.category_id, t.kind, t.description, t.amount_cents,
	t.date, t.cost_type, t.note, t.paid, t.paid_on`

func transactionFilter(q core.TransactionQuery) *where {
	w := &where{}
	w.add("t.user_id = ?", q.UserID)
	w.window("t.date", q.Window)
	if q.Kind != "" {
		w.add("t.kind = ?", string(q.Kind))
	}
	if q.CostType != "" {
		w.add("t.cost_type = ?", string(q.CostType))
	}
	if q.CategoryID != 0 {
		w.add("t.category_id = ?", q.CategoryID)
	}
	return w
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		categoryID sql.NullInt64
		kind       string
		costType   string
		amount     int64
		date       string
		paidOn     sql.NullString
	)
	if err := row.Scan(&t.ID, &t.UserID, &categoryID, &kind, &t.Description, &amount,
		&date, &costType, &t.Note, &t.Paid, &paidOn); err != nil {
		return core.Transaction{}, err
	}
	t.CategoryID = categoryID.Int64
	t.Kind = core.CategoryKind(kind)
	t.CostType = core.CostType(costType)
	t.Amount = core.Cents(amount)

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d date: %w", t.ID, err)
	}
	t.Date = d
	if t.PaidOn, err = parseDate(paidOn); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d paid_on: %w", t.ID, err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, q core.TransactionQuery) ([]core.Transaction, error) {
	w := transactionFilter(q)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions t"+w.String()+" ORDER BY t.date, t.id", w.args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SumTransactions(ctx context.Context, q core.TransactionQuery) (core.Money, error) {
	w := transactionFilter(q)
	var total int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(t.amount_cents), 0) FROM transactions t"+w.String(), w.args...).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum transactions: %w", err)
	}
	return core.Cents(total), nil
}

func (r *SQLiteRepository) SumTransactionsByCategory(ctx context.Context, q core.TransactionQuery) ([]core.CategoryTotal, error) {
	w := transactionFilter(q)
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(t.category_id, 0), COALESCE(c.name, ''), SUM(t.amount_cents)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id`+w.String()+`
		GROUP BY t.category_id
		ORDER BY 2, 1`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("sum transactions by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var (
			ct    core.CategoryTotal
			total int64
		)
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		ct.Total = core.Cents(total)
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) TransactionExists(ctx context.Context, m core.TransactionMatch) (bool, error) {
	w := &where{}
	w.add("t.user_id = ?", m.UserID)
	w.window("t.date", m.Window)
	w.add("t.kind = ?", string(m.Kind))
	w.add("t.description = ?", m.Description)
	w.add("t.amount_cents = ?", m.Amount.Cents)

	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM transactions t"+w.String()+")", w.args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check transaction exists: %w", err)
	}
	return exists, nil
}

func (r *SQLiteRepository) CreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(txs))
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions (user_id, category_id, kind, description, amount_cents, date, cost_type, note, paid, paid_on)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert transaction: %w", err)
		}
		defer stmt.Close()

		for i, t := range txs {
			res, err := stmt.ExecContext(ctx, t.UserID, nullID(t.CategoryID), string(t.Kind), t.Description,
				t.Amount.Cents, t.Date.String(), string(t.CostType), t.Note, t.Paid, dateArg(t.PaidOn))
			if isForeignKeyError(err) {
				return &core.NotFoundError{Entity: "category", ID: t.CategoryID}
			}
			if err != nil {
				return fmt.Errorf("insert transaction: %w", err)
			}
			if t.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("last insert id: %w", err)
			}
			out[i] = t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions t WHERE t.id = ? AND t.user_id = ?", id, userID)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction", id)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET category_id = ?, kind = ?, description = ?, amount_cents = ?, date = ?,
		    cost_type = ?, note = ?, paid = ?, paid_on = ?
		WHERE id = ? AND user_id = ?`,
		nullID(t.CategoryID), string(t.Kind), t.Description, t.Amount.Cents, t.Date.String(),
		string(t.CostType), t.Note, t.Paid, dateArg(t.PaidOn), t.ID, t.UserID)
	if isForeignKeyError(err) {
		return &core.NotFoundError{Entity: "category", ID: t.CategoryID}
	}
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return affectedOrNotFound(res, "transaction", t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return affectedOrNotFound(res, "transaction", id)
}

func (r *SQLiteRepository) SetTransactionsPaid(ctx context.Context, q core.TransactionQuery, paid bool, paidOn core.Date) (int64, error) {
	w := transactionFilter(q)
	args := append([]any{paid, dateArg(paidOn)}, w.args...)
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET paid = ?, paid_on = ? WHERE id IN (SELECT t.id FROM transactions t"+w.String()+")", args...)
	if err != nil {
		return 0, fmt.Errorf("set transactions paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
