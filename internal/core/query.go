package core

// TransactionQuery selects transactions of one user. Zero-valued fields do
// not filter.
type TransactionQuery struct {
	UserID     int64
	Window     Window
	Kind       CategoryKind
	CostType   CostType
	CategoryID int64
}

// Matches reports whether t satisfies every set predicate.
func (q TransactionQuery) Matches(t Transaction) bool {
	if t.UserID != q.UserID {
		return false
	}
	if !q.Window.Contains(t.Date) {
		return false
	}
	if q.Kind != "" && t.Kind != q.Kind {
		return false
	}
	if q.CostType != "" && t.CostType != q.CostType {
		return false
	}
	if q.CategoryID != 0 && t.CategoryID != q.CategoryID {
		return false
	}
	return true
}

// TransactionMatch identifies a transaction for duplicate detection.
type TransactionMatch struct {
	UserID      int64
	Window      Window
	Kind        CategoryKind
	Description string
	Amount      Money
}

// Matches reports whether t is a duplicate under m.
func (m TransactionMatch) Matches(t Transaction) bool {
	return t.UserID == m.UserID &&
		m.Window.Contains(t.Date) &&
		t.Kind == m.Kind &&
		t.Description == m.Description &&
		t.Amount == m.Amount
}

// PurchaseScope narrows card purchases by who they were made for.
type PurchaseScope int

const (
	ScopeAll PurchaseScope = iota
	ScopeThirdParty
	ScopeOwn
)

// PurchaseQuery selects card purchases on the cards of one user. Zero-valued
// fields do not filter.
type PurchaseQuery struct {
	UserID       int64
	Window       Window
	CardID       int64
	ThirdPartyID int64
	Scope        PurchaseScope
	NewestFirst  bool
}

// Matches reports whether p satisfies the purchase-level predicates. Card
// ownership is checked by the store.
func (q PurchaseQuery) Matches(p CardPurchase) bool {
	if !q.Window.Contains(p.Date) {
		return false
	}
	if q.CardID != 0 && p.CardID != q.CardID {
		return false
	}
	if q.ThirdPartyID != 0 && p.ThirdPartyID != q.ThirdPartyID {
		return false
	}
	switch q.Scope {
	case ScopeThirdParty:
		return p.IsThirdParty
	case ScopeOwn:
		return !p.IsThirdParty
	}
	return true
}
