package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

const purchaseColumns = `p.id, p.card_id, p.description, p.amount_cents, p.date, p.is_installment,
	p.installment_count, p.is_third_party, p.third_party_id, p.paid`

// purchaseFilter scopes to cards owned by q.UserID; queries join credit_cards as cc.
func purchaseFilter(q core.PurchaseQuery) *where {
	w := &where{}
	w.add("cc.user_id = ?", q.UserID)
	w.window("p.date", q.Window)
	if q.CardID != 0 {
		w.add("p.card_id = ?", q.CardID)
	}
	if q.ThirdPartyID != 0 {
		w.add("p.third_party_id = ?", q.ThirdPartyID)
	}
	switch q.Scope {
	case core.ScopeThirdParty:
		w.add("p.is_third_party = 1")
	case core.ScopeOwn:
		w.add("p.is_third_party = 0")
	}
	return w
}

const purchaseFrom = " FROM card_purchases p JOIN credit_cards cc ON cc.id = p.card_id"

func scanPurchase(row rowScanner) (core.CardPurchase, error) {
	var (
		p            core.CardPurchase
		amount       int64
		date         string
		thirdPartyID sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.CardID, &p.Description, &amount, &date, &p.IsInstallment,
		&p.InstallmentCount, &p.IsThirdParty, &thirdPartyID, &p.Paid); err != nil {
		return core.CardPurchase{}, err
	}
	p.Amount = core.Cents(amount)
	p.ThirdPartyID = thirdPartyID.Int64
	d, err := core.ParseDate(date)
	if err != nil {
		return core.CardPurchase{}, fmt.Errorf("purchase %d date: %w", p.ID, err)
	}
	p.Date = d
	return p, nil
}

func (r *SQLiteRepository) ListPurchases(ctx context.Context, q core.PurchaseQuery) ([]core.CardPurchase, error) {
	w := purchaseFilter(q)
	order := " ORDER BY p.date, p.id"
	if q.NewestFirst {
		order = " ORDER BY p.date DESC, p.id"
	}
	rows, err := r.db.QueryContext(ctx, "SELECT "+purchaseColumns+purchaseFrom+w.String()+order, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []core.CardPurchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SumPurchases(ctx context.Context, q core.PurchaseQuery) (core.Money, error) {
	w := purchaseFilter(q)
	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(p.amount_cents), 0)"+purchaseFrom+w.String(), w.args...).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum purchases: %w", err)
	}
	return core.Cents(total), nil
}

func (r *SQLiteRepository) SumPurchasesByCard(ctx context.Context, q core.PurchaseQuery) ([]core.CardTotal, error) {
	w := purchaseFilter(q)
	rows, err := r.db.QueryContext(ctx, `
		SELECT cc.id, cc.user_id, cc.name, cc.last_digits, cc.due_day, cc.color,
		       SUM(p.amount_cents), SUM(CASE WHEN p.paid = 0 THEN 1 ELSE 0 END)`+
		purchaseFrom+w.String()+`
		GROUP BY cc.id
		ORDER BY cc.name, cc.id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("sum purchases by card: %w", err)
	}
	defer rows.Close()

	var out []core.CardTotal
	for rows.Next() {
		var (
			ct    core.CardTotal
			color string
			total int64
		)
		if err := rows.Scan(&ct.Card.ID, &ct.Card.UserID, &ct.Card.Name, &ct.Card.LastDigits,
			&ct.Card.DueDay, &color, &total, &ct.Unpaid); err != nil {
			return nil, fmt.Errorf("scan card total: %w", err)
		}
		ct.Card.Color = core.CardColor(color)
		ct.Total = core.Cents(total)
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SumPurchasesByThirdParty(ctx context.Context, q core.PurchaseQuery) ([]core.ThirdPartyTotal, error) {
	w := purchaseFilter(q)
	w.add("p.is_third_party = 1")
	rows, err := r.db.QueryContext(ctx, `
		SELECT tp.id, tp.user_id, tp.name, tp.relationship, SUM(p.amount_cents)`+
		purchaseFrom+` JOIN third_parties tp ON tp.id = p.third_party_id`+w.String()+`
		GROUP BY tp.id
		ORDER BY tp.name, tp.id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("sum purchases by third party: %w", err)
	}
	defer rows.Close()

	var out []core.ThirdPartyTotal
	for rows.Next() {
		var (
			pt    core.ThirdPartyTotal
			total int64
		)
		if err := rows.Scan(&pt.ThirdParty.ID, &pt.ThirdParty.UserID, &pt.ThirdParty.Name,
			&pt.ThirdParty.Relationship, &total); err != nil {
			return nil, fmt.Errorf("scan third party total: %w", err)
		}
		pt.Total = core.Cents(total)
		out = append(out, pt)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreatePurchases(ctx context.Context, ps []core.CardPurchase) ([]core.CardPurchase, error) {
	out := make([]core.CardPurchase, len(ps))
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO card_purchases (card_id, description, amount_cents, date, is_installment,
				installment_count, is_third_party, third_party_id, paid)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert purchase: %w", err)
		}
		defer stmt.Close()

		for i, p := range ps {
			res, err := stmt.ExecContext(ctx, p.CardID, p.Description, p.Amount.Cents, p.Date.String(),
				p.IsInstallment, p.InstallmentCount, p.IsThirdParty, nullID(p.ThirdPartyID), p.Paid)
			if isForeignKeyError(err) {
				return purchaseRefError(p)
			}
			if err != nil {
				return fmt.Errorf("insert purchase: %w", err)
			}
			if p.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("last insert id: %w", err)
			}
			out[i] = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// purchaseRefError names the reference a failed foreign key points at. SQLite
// does not say which key failed, so the third party is blamed when one is set.
func purchaseRefError(p core.CardPurchase) error {
	if p.ThirdPartyID != 0 {
		return &core.NotFoundError{Entity: "third party", ID: p.ThirdPartyID}
	}
	return &core.NotFoundError{Entity: "card", ID: p.CardID}
}

func (r *SQLiteRepository) GetPurchase(ctx context.Context, userID, id int64) (core.CardPurchase, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+purchaseColumns+purchaseFrom+" WHERE p.id = ? AND cc.user_id = ?", id, userID)
	p, err := scanPurchase(row)
	if err != nil {
		return core.CardPurchase{}, notFound(err, "purchase", id)
	}
	return p, nil
}

func (r *SQLiteRepository) UpdatePurchase(ctx context.Context, userID int64, p core.CardPurchase) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var owned bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM credit_cards WHERE id = ? AND user_id = ?)", p.CardID, userID).Scan(&owned)
		if err != nil {
			return fmt.Errorf("check card owner: %w", err)
		}
		if !owned {
			return &core.NotFoundError{Entity: "card", ID: p.CardID}
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE card_purchases
			SET card_id = ?, description = ?, amount_cents = ?, date = ?, is_installment = ?,
			    installment_count = ?, is_third_party = ?, third_party_id = ?, paid = ?
			WHERE id = ? AND card_id IN (SELECT id FROM credit_cards WHERE user_id = ?)`,
			p.CardID, p.Description, p.Amount.Cents, p.Date.String(), p.IsInstallment,
			p.InstallmentCount, p.IsThirdParty, nullID(p.ThirdPartyID), p.Paid, p.ID, userID)
		if isForeignKeyError(err) {
			return purchaseRefError(p)
		}
		if err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}
		return affectedOrNotFound(res, "purchase", p.ID)
	})
}

func (r *SQLiteRepository) DeletePurchase(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM card_purchases
		WHERE id = ? AND card_id IN (SELECT id FROM credit_cards WHERE user_id = ?)`, id, userID)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return affectedOrNotFound(res, "purchase", id)
}

func (r *SQLiteRepository) SetPurchasesPaid(ctx context.Context, q core.PurchaseQuery, paid bool) (int64, error) {
	w := purchaseFilter(q)
	args := append([]any{paid}, w.args...)
	res, err := r.db.ExecContext(ctx,
		"UPDATE card_purchases SET paid = ? WHERE id IN (SELECT p.id"+purchaseFrom+w.String()+")", args...)
	if err != nil {
		return 0, fmt.Errorf("set purchases paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
