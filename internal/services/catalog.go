package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
)

// EntityKind tags the catalog records that share the edit/delete flow.
type EntityKind string

const (
	EntityCategory   EntityKind = "category"
	EntityCard       EntityKind = "card"
	EntityThirdParty EntityKind = "third_party"
)

// ParseEntityKind accepts the kind tags used by the CLI.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := entityHandlers[k]; !ok {
		return "", &core.ValidationError{Field: "entity", Err: fmt.Errorf("%w: %q", core.ErrInvalidKind, s)}
	}
	return k, nil
}

// Entity is the kind-independent view of a catalog record.
type Entity struct {
	Kind  EntityKind
	Noun  string
	ID    int64
	Name  string
	Label string
}

type entityHandler struct {
	lookup func(ctx context.Context, s Store, userID, id int64) (Entity, error)

	// validate trims and checks a pointer to a record of this kind.
	validate func(rec any) error

	// inUse returns a non-empty reason when other records depend on the entity.
	inUse  func(ctx context.Context, s Store, userID, id int64) (string, error)
	remove func(ctx context.Context, s Store, userID, id int64) error

	// noun names the kind in messages, e.g. "third party".
	noun string
}

var entityHandlers = map[EntityKind]entityHandler{
	EntityCategory: {
		lookup: func(ctx context.Context, s Store, userID, id int64) (Entity, error) {
			c, err := s.GetCategory(ctx, userID, id)
			if err != nil {
				return Entity{}, err
			}
			// global categories are readable but not editable
			if c.IsGlobal() {
				return Entity{}, &core.NotFoundError{Entity: "category", ID: id}
			}
			return Entity{Kind: EntityCategory, ID: c.ID, Name: c.Name, Label: fmt.Sprintf("%s (%s)", c.Name, c.Kind)}, nil
		},
		validate: func(rec any) error {
			c, ok := rec.(*core.Category)
			if !ok {
				return wrongRecord(EntityCategory, rec)
			}
			c.Name = strings.TrimSpace(c.Name)
			return c.Validate()
		},
		inUse:  categoryInUse,
		remove: func(ctx context.Context, s Store, userID, id int64) error { return s.DeleteCategory(ctx, userID, id) },
		noun:   "category",
	},
	EntityCard: {
		lookup: func(ctx context.Context, s Store, userID, id int64) (Entity, error) {
			c, err := s.GetCard(ctx, userID, id)
			if err != nil {
				return Entity{}, err
			}
			return Entity{Kind: EntityCard, ID: c.ID, Name: c.Name, Label: c.Label()}, nil
		},
		validate: func(rec any) error {
			c, ok := rec.(*core.CreditCard)
			if !ok {
				return wrongRecord(EntityCard, rec)
			}
			c.Name = strings.TrimSpace(c.Name)
			c.LastDigits = strings.TrimSpace(c.LastDigits)
			if c.Color == "" {
				c.Color = core.DefaultCardColor
			}
			return c.Validate()
		},
		inUse: func(ctx context.Context, s Store, userID, id int64) (string, error) {
			ps, err := s.ListPurchases(ctx, core.PurchaseQuery{UserID: userID, CardID: id})
			if err != nil || len(ps) == 0 {
				return "", err
			}
			return "has purchases", nil
		},
		remove: func(ctx context.Context, s Store, userID, id int64) error { return s.DeleteCard(ctx, userID, id) },
		noun:   "card",
	},
	EntityThirdParty: {
		lookup: func(ctx context.Context, s Store, userID, id int64) (Entity, error) {
			p, err := s.GetThirdParty(ctx, userID, id)
			if err != nil {
				return Entity{}, err
			}
			return Entity{Kind: EntityThirdParty, ID: p.ID, Name: p.Name, Label: p.Label()}, nil
		},
		validate: func(rec any) error {
			p, ok := rec.(*core.ThirdParty)
			if !ok {
				return wrongRecord(EntityThirdParty, rec)
			}
			p.Name = strings.TrimSpace(p.Name)
			p.Relationship = strings.TrimSpace(p.Relationship)
			return p.Validate()
		},
		inUse: func(ctx context.Context, s Store, userID, id int64) (string, error) {
			ps, err := s.ListPurchases(ctx, core.PurchaseQuery{UserID: userID, ThirdPartyID: id})
			if err != nil || len(ps) == 0 {
				return "", err
			}
			return "has purchases", nil
		},
		remove: func(ctx context.Context, s Store, userID, id int64) error { return s.DeleteThirdParty(ctx, userID, id) },
		noun:   "third party",
	},
}

func wrongRecord(kind EntityKind, rec any) error {
	return fmt.Errorf("%s validator got %T", kind, rec)
}

func categoryInUse(ctx context.Context, s Store, userID, id int64) (string, error) {
	txs, err := s.ListTransactions(ctx, core.TransactionQuery{UserID: userID, CategoryID: id})
	if err != nil {
		return "", err
	}
	if len(txs) > 0 {
		return "has transactions", nil
	}
	goals, err := s.ListGoals(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, g := range goals {
		if g.CategoryID == id {
			return "is used by a goal", nil
		}
	}
	return "", nil
}

// Catalog manages categories, cards and third parties.
type Catalog struct {
	store Store
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store}
}

// Lookup returns an entity owned by the user.
func (c *Catalog) Lookup(ctx context.Context, kind EntityKind, userID, id int64) (Entity, error) {
	h, ok := entityHandlers[kind]
	if !ok {
		return Entity{}, &core.ValidationError{Field: "entity", Err: core.ErrInvalidKind}
	}
	ent, err := h.lookup(ctx, c.store, userID, id)
	if err != nil {
		return Entity{}, err
	}
	ent.Noun = h.noun
	return ent, nil
}

// Validate normalizes rec in place and checks it with the rules of kind.
// rec must be a pointer to the record type of kind.
func (c *Catalog) Validate(kind EntityKind, rec any) error {
	h, ok := entityHandlers[kind]
	if !ok {
		return &core.ValidationError{Field: "entity", Err: core.ErrInvalidKind}
	}
	return h.validate(rec)
}

// Delete removes an entity unless other records depend on it, in which case
// nothing changes and a core.IntegrityError is returned.
func (c *Catalog) Delete(ctx context.Context, kind EntityKind, userID, id int64) error {
	h, ok := entityHandlers[kind]
	if !ok {
		return &core.ValidationError{Field: "entity", Err: core.ErrInvalidKind}
	}
	ent, err := h.lookup(ctx, c.store, userID, id)
	if err != nil {
		return err
	}
	reason, err := h.inUse(ctx, c.store, userID, id)
	if err != nil {
		return fmt.Errorf("check %s references: %w", kind, err)
	}
	if reason != "" {
		slog.WarnContext(ctx, "Delete refused", "user_id", userID, "entity", kind, "id", id, "reason", reason)
		return &core.IntegrityError{Entity: h.noun, Name: ent.Name, Reason: reason}
	}
	if err := h.remove(ctx, c.store, userID, id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	slog.InfoContext(ctx, "Entity deleted", "user_id", userID, "entity", kind, "id", id)
	return nil
}

func (c *Catalog) CreateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	if err := c.Validate(EntityCategory, &cat); err != nil {
		return core.Category{}, err
	}
	return c.store.CreateCategory(ctx, cat)
}

// UpdateCategory renames a category. Its kind can only change while nothing
// references it.
func (c *Catalog) UpdateCategory(ctx context.Context, cat core.Category) error {
	old, err := c.store.GetCategory(ctx, cat.UserID, cat.ID)
	if err != nil {
		return err
	}
	if old.IsGlobal() {
		return &core.NotFoundError{Entity: "category", ID: cat.ID}
	}
	if err := c.Validate(EntityCategory, &cat); err != nil {
		return err
	}
	if cat.Kind != old.Kind {
		reason, err := categoryInUse(ctx, c.store, cat.UserID, cat.ID)
		if err != nil {
			return fmt.Errorf("check category references: %w", err)
		}
		if reason != "" {
			return &core.IntegrityError{Entity: entityHandlers[EntityCategory].noun, Name: old.Name, Reason: "kind cannot change: " + reason}
		}
	}
	return c.store.UpdateCategory(ctx, cat)
}

func (c *Catalog) Categories(ctx context.Context, userID int64, kind core.CategoryKind) ([]core.Category, error) {
	return c.store.ListCategories(ctx, userID, kind)
}

func (c *Catalog) CreateCard(ctx context.Context, card core.CreditCard) (core.CreditCard, error) {
	if err := c.Validate(EntityCard, &card); err != nil {
		return core.CreditCard{}, err
	}
	return c.store.CreateCard(ctx, card)
}

func (c *Catalog) UpdateCard(ctx context.Context, card core.CreditCard) error {
	if _, err := c.store.GetCard(ctx, card.UserID, card.ID); err != nil {
		return err
	}
	if err := c.Validate(EntityCard, &card); err != nil {
		return err
	}
	return c.store.UpdateCard(ctx, card)
}

func (c *Catalog) Cards(ctx context.Context, userID int64) ([]core.CreditCard, error) {
	return c.store.ListCards(ctx, userID)
}

func (c *Catalog) CreateThirdParty(ctx context.Context, p core.ThirdParty) (core.ThirdParty, error) {
	if err := c.Validate(EntityThirdParty, &p); err != nil {
		return core.ThirdParty{}, err
	}
	return c.store.CreateThirdParty(ctx, p)
}

func (c *Catalog) UpdateThirdParty(ctx context.Context, p core.ThirdParty) error {
	if _, err := c.store.GetThirdParty(ctx, p.UserID, p.ID); err != nil {
		return err
	}
	if err := c.Validate(EntityThirdParty, &p); err != nil {
		return err
	}
	return c.store.UpdateThirdParty(ctx, p)
}

func (c *Catalog) ThirdParties(ctx context.Context, userID int64) ([]core.ThirdParty, error) {
	return c.store.ListThirdParties(ctx, userID)
}
