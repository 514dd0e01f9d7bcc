package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// Categories

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO categories (user_id, name, kind) VALUES (?, ?, ?)",
		nullID(c.UserID), c.Name, string(c.Kind))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Category{}, fmt.Errorf("last insert id: %w", err)
	}
	return c, nil
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c      core.Category
		userID sql.NullInt64
		kind   string
	)
	if err := row.Scan(&c.ID, &userID, &c.Name, &kind); err != nil {
		return core.Category{}, err
	}
	c.UserID = userID.Int64
	c.Kind = core.CategoryKind(kind)
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, kind FROM categories
		WHERE id = ? AND (user_id IS NULL OR user_id = ?)`, id, userID)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, notFound(err, "category", id)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64, kind core.CategoryKind) ([]core.Category, error) {
	w := &where{}
	w.add("(user_id IS NULL OR user_id = ?)", userID)
	if kind != "" {
		w.add("kind = ?", string(kind))
	}
	rows, err := r.db.QueryContext(ctx, "SELECT id, user_id, name, kind FROM categories"+w.String()+" ORDER BY name, id", w.args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx, "UPDATE categories SET name = ?, kind = ? WHERE id = ? AND user_id = ?",
		c.Name, string(c.Kind), c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return affectedOrNotFound(res, "category", c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var name string
		err := tx.QueryRowContext(ctx, "SELECT name FROM categories WHERE id = ? AND user_id = ?", id, userID).Scan(&name)
		if err != nil {
			return notFound(err, "category", id)
		}
		reason, err := referenced(ctx, tx, id,
			reference{"SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = ?)", "has transactions"},
			reference{"SELECT EXISTS (SELECT 1 FROM goals WHERE category_id = ?)", "is used by a goal"},
		)
		if err != nil {
			return err
		}
		if reason != "" {
			return &core.IntegrityError{Entity: "category", Name: name, Reason: reason}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

type reference struct {
	query  string
	reason string
}

// referenced returns the reason of the first reference that holds for id.
func referenced(ctx context.Context, tx *sql.Tx, id int64, refs ...reference) (string, error) {
	for _, ref := range refs {
		var exists bool
		if err := tx.QueryRowContext(ctx, ref.query, id).Scan(&exists); err != nil {
			return "", fmt.Errorf("check references: %w", err)
		}
		if exists {
			return ref.reason, nil
		}
	}
	return "", nil
}

// Credit cards

func (r *SQLiteRepository) CreateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO credit_cards (user_id, name, last_digits, due_day, color) VALUES (?, ?, ?, ?, ?)",
		c.UserID, c.Name, c.LastDigits, c.DueDay, string(c.Color))
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("insert card: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.CreditCard{}, fmt.Errorf("last insert id: %w", err)
	}
	return c, nil
}

func scanCard(row rowScanner) (core.CreditCard, error) {
	var (
		c     core.CreditCard
		color string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.LastDigits, &c.DueDay, &color); err != nil {
		return core.CreditCard{}, err
	}
	c.Color = core.CardColor(color)
	return c, nil
}

func (r *SQLiteRepository) GetCard(ctx context.Context, userID, id int64) (core.CreditCard, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, last_digits, due_day, color FROM credit_cards WHERE id = ? AND user_id = ?", id, userID)
	c, err := scanCard(row)
	if err != nil {
		return core.CreditCard{}, notFound(err, "card", id)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context, userID int64) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, last_digits, due_day, color FROM credit_cards WHERE user_id = ? ORDER BY name, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []core.CreditCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCard(ctx context.Context, c core.CreditCard) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE credit_cards SET name = ?, last_digits = ?, due_day = ?, color = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, c.LastDigits, c.DueDay, string(c.Color), c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return affectedOrNotFound(res, "card", c.ID)
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, userID, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var name string
		err := tx.QueryRowContext(ctx, "SELECT name FROM credit_cards WHERE id = ? AND user_id = ?", id, userID).Scan(&name)
		if err != nil {
			return notFound(err, "card", id)
		}
		reason, err := referenced(ctx, tx, id,
			reference{"SELECT EXISTS (SELECT 1 FROM card_purchases WHERE card_id = ?)", "has purchases"})
		if err != nil {
			return err
		}
		if reason != "" {
			return &core.IntegrityError{Entity: "card", Name: name, Reason: reason}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM credit_cards WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete card: %w", err)
		}
		return nil
	})
}

// Third parties

func (r *SQLiteRepository) CreateThirdParty(ctx context.Context, p core.ThirdParty) (core.ThirdParty, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO third_parties (user_id, name, relationship) VALUES (?, ?, ?)",
		p.UserID, p.Name, p.Relationship)
	if err != nil {
		return core.ThirdParty{}, fmt.Errorf("insert third party: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return core.ThirdParty{}, fmt.Errorf("last insert id: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) GetThirdParty(ctx context.Context, userID, id int64) (core.ThirdParty, error) {
	var p core.ThirdParty
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, relationship FROM third_parties WHERE id = ? AND user_id = ?", id, userID).
		Scan(&p.ID, &p.UserID, &p.Name, &p.Relationship)
	if err != nil {
		return core.ThirdParty{}, notFound(err, "third party", id)
	}
	return p, nil
}

func (r *SQLiteRepository) ListThirdParties(ctx context.Context, userID int64) ([]core.ThirdParty, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, relationship FROM third_parties WHERE user_id = ? ORDER BY name, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list third parties: %w", err)
	}
	defer rows.Close()

	var out []core.ThirdParty
	for rows.Next() {
		var p core.ThirdParty
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Relationship); err != nil {
			return nil, fmt.Errorf("scan third party: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateThirdParty(ctx context.Context, p core.ThirdParty) error {
	res, err := r.db.ExecContext(ctx, "UPDATE third_parties SET name = ?, relationship = ? WHERE id = ? AND user_id = ?",
		p.Name, p.Relationship, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update third party: %w", err)
	}
	return affectedOrNotFound(res, "third party", p.ID)
}

func (r *SQLiteRepository) DeleteThirdParty(ctx context.Context, userID, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var name string
		err := tx.QueryRowContext(ctx, "SELECT name FROM third_parties WHERE id = ? AND user_id = ?", id, userID).Scan(&name)
		if err != nil {
			return notFound(err, "third party", id)
		}
		reason, err := referenced(ctx, tx, id,
			reference{"SELECT EXISTS (SELECT 1 FROM card_purchases WHERE third_party_id = ?)", "has purchases"})
		if err != nil {
			return err
		}
		if reason != "" {
			return &core.IntegrityError{Entity: "third party", Name: name, Reason: reason}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM third_parties WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete third party: %w", err)
		}
		return nil
	})
}
