package services

import (
	"context"

	"fintrack/internal/core"
)

// TransactionStore persists bank-level entries. Lookups by id only return
// records owned by the given user and report core.NotFoundError otherwise.
type TransactionStore interface {
	ListTransactions(ctx context.Context, q core.TransactionQuery) ([]core.Transaction, error)
	SumTransactions(ctx context.Context, q core.TransactionQuery) (core.Money, error)
	// SumTransactionsByCategory groups by category, ordered by category name.
	SumTransactionsByCategory(ctx context.Context, q core.TransactionQuery) ([]core.CategoryTotal, error)
	TransactionExists(ctx context.Context, m core.TransactionMatch) (bool, error)
	// CreateTransactions inserts all rows or none.
	CreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id int64) error
	// SetTransactionsPaid updates every matching row in one statement.
	SetTransactionsPaid(ctx context.Context, q core.TransactionQuery, paid bool, paidOn core.Date) (int64, error)
}

// PurchaseStore persists card purchases. Queries only see purchases on cards
// owned by q.UserID.
type PurchaseStore interface {
	ListPurchases(ctx context.Context, q core.PurchaseQuery) ([]core.CardPurchase, error)
	SumPurchases(ctx context.Context, q core.PurchaseQuery) (core.Money, error)
	// SumPurchasesByCard returns one row per card with purchases, ordered by card name.
	SumPurchasesByCard(ctx context.Context, q core.PurchaseQuery) ([]core.CardTotal, error)
	// SumPurchasesByThirdParty skips purchases without a third party.
	SumPurchasesByThirdParty(ctx context.Context, q core.PurchaseQuery) ([]core.ThirdPartyTotal, error)
	// CreatePurchases inserts all rows or none.
	CreatePurchases(ctx context.Context, ps []core.CardPurchase) ([]core.CardPurchase, error)
	GetPurchase(ctx context.Context, userID, id int64) (core.CardPurchase, error)
	UpdatePurchase(ctx context.Context, userID int64, p core.CardPurchase) error
	DeletePurchase(ctx context.Context, userID, id int64) error
	SetPurchasesPaid(ctx context.Context, q core.PurchaseQuery, paid bool) (int64, error)
}

// CatalogStore persists categories, cards and third parties.
type CatalogStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	// GetCategory returns owned and global categories.
	GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
	ListCategories(ctx context.Context, userID int64, kind core.CategoryKind) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, userID, id int64) error

	CreateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error)
	GetCard(ctx context.Context, userID, id int64) (core.CreditCard, error)
	ListCards(ctx context.Context, userID int64) ([]core.CreditCard, error)
	UpdateCard(ctx context.Context, c core.CreditCard) error
	DeleteCard(ctx context.Context, userID, id int64) error

	CreateThirdParty(ctx context.Context, p core.ThirdParty) (core.ThirdParty, error)
	GetThirdParty(ctx context.Context, userID, id int64) (core.ThirdParty, error)
	ListThirdParties(ctx context.Context, userID int64) ([]core.ThirdParty, error)
	UpdateThirdParty(ctx context.Context, p core.ThirdParty) error
	DeleteThirdParty(ctx context.Context, userID, id int64) error

	// ListUsers returns every user id owning at least one record.
	ListUsers(ctx context.Context) ([]int64, error)
}

// GoalStore persists goals. Creating a second non-custom goal for the same
// (user, kind, category, period) reports core.IntegrityError.
type GoalStore interface {
	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	GetGoal(ctx context.Context, userID, id int64) (core.Goal, error)
	ListGoals(ctx context.Context, userID int64) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, userID, id int64) error
}

// Store is the full data store the engines run against.
type Store interface {
	TransactionStore
	PurchaseStore
	CatalogStore
	GoalStore
	Close() error
}

// EventPublisher announces ledger changes. A nil publisher is allowed by
// every service.
type EventPublisher interface {
	PublishLedgerChange(ctx context.Context, userID int64, reason string, month core.Date) error
}
