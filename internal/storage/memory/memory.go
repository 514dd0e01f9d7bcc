// Package memory is an in-process data store for tests and the memory backend.
// Every method holds one mutex for its full duration, so batch writes and
// bulk updates are observed all-or-nothing.
package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"fintrack/internal/core"
)

type Store struct {
	mu     sync.Mutex
	nextID int64

	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	cards        map[int64]core.CreditCard
	parties      map[int64]core.ThirdParty
	purchases    map[int64]core.CardPurchase
	goals        map[int64]core.Goal
}

// New returns an empty store seeded with the given global categories.
func New(seed ...core.Category) *Store {
	s := &Store{
		categories:   map[int64]core.Category{},
		transactions: map[int64]core.Transaction{},
		cards:        map[int64]core.CreditCard{},
		parties:      map[int64]core.ThirdParty{},
		purchases:    map[int64]core.CardPurchase{},
		goals:        map[int64]core.Goal{},
	}
	for _, c := range seed {
		c.ID = s.id()
		c.UserID = 0
		s.categories[c.ID] = c
	}
	return s
}

// NewFromFiles seeds global categories from seed_income_categories.txt and
// seed_expense_categories.txt under base, with defaults when files are missing.
func NewFromFiles(base string) *Store {
	income := readLines(filepath.Join(base, "seed_income_categories.txt"))
	expense := readLines(filepath.Join(base, "seed_expense_categories.txt"))
	if len(income) == 0 {
		income = []string{"Salary", "Other income"}
	}
	if len(expense) == 0 {
		expense = []string{"Housing", "Groceries", "Transport"}
	}
	var seed []core.Category
	for _, n := range income {
		seed = append(seed, core.Category{Name: n, Kind: core.Income})
	}
	for _, n := range expense {
		seed = append(seed, core.Category{Name: n, Kind: core.Expense})
	}
	return New(seed...)
}

func (s *Store) Close() error { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Transactions

func (s *Store) ListTransactions(_ context.Context, q core.TransactionQuery) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchTransactions(q), nil
}

func (s *Store) SumTransactions(_ context.Context, q core.TransactionQuery) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum core.Money
	for _, t := range s.matchTransactions(q) {
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

func (s *Store) SumTransactionsByCategory(_ context.Context, q core.TransactionQuery) ([]core.CategoryTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := map[int64]int{}
	var out []core.CategoryTotal
	for _, t := range s.matchTransactions(q) {
		i, ok := index[t.CategoryID]
		if !ok {
			i = len(out)
			index[t.CategoryID] = i
			out = append(out, core.CategoryTotal{CategoryID: t.CategoryID, Name: s.categories[t.CategoryID].Name})
		}
		out[i].Total = out[i].Total.Add(t.Amount)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) TransactionExists(_ context.Context, m core.TransactionMatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if m.Matches(t) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateTransactions(_ context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range txs {
		if t.CategoryID != 0 {
			if _, ok := s.categories[t.CategoryID]; !ok {
				return nil, &core.NotFoundError{Entity: "category", ID: t.CategoryID}
			}
		}
	}
	out := make([]core.Transaction, len(txs))
	for i, t := range txs {
		t.ID = s.id()
		s.transactions[t.ID] = t
		out[i] = t
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, &core.NotFoundError{Entity: "transaction", ID: id}
	}
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.transactions[t.ID]
	if !ok || old.UserID != t.UserID {
		return &core.NotFoundError{Entity: "transaction", ID: t.ID}
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return &core.NotFoundError{Entity: "transaction", ID: id}
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) SetTransactionsPaid(_ context.Context, q core.TransactionQuery, paid bool, paidOn core.Date) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.matchTransactions(q) {
		t.Paid = paid
		t.PaidOn = paidOn
		s.transactions[t.ID] = t
		n++
	}
	return n, nil
}

func (s *Store) matchTransactions(q core.TransactionQuery) []core.Transaction {
	var out []core.Transaction
	for _, t := range s.transactions {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Card purchases

func (s *Store) ListPurchases(_ context.Context, q core.PurchaseQuery) ([]core.CardPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchPurchases(q), nil
}

func (s *Store) SumPurchases(_ context.Context, q core.PurchaseQuery) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum core.Money
	for _, p := range s.matchPurchases(q) {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}

func (s *Store) SumPurchasesByCard(_ context.Context, q core.PurchaseQuery) ([]core.CardTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := map[int64]int{}
	var out []core.CardTotal
	for _, p := range s.matchPurchases(q) {
		i, ok := index[p.CardID]
		if !ok {
			i = len(out)
			index[p.CardID] = i
			out = append(out, core.CardTotal{Card: s.cards[p.CardID]})
		}
		out[i].Total = out[i].Total.Add(p.Amount)
		if !p.Paid {
			out[i].Unpaid++
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Card.Name < out[j].Card.Name })
	return out, nil
}

func (s *Store) SumPurchasesByThirdParty(_ context.Context, q core.PurchaseQuery) ([]core.ThirdPartyTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := map[int64]int{}
	var out []core.ThirdPartyTotal
	for _, p := range s.matchPurchases(q) {
		if !p.IsThirdParty || p.ThirdPartyID == 0 {
			continue
		}
		i, ok := index[p.ThirdPartyID]
		if !ok {
			i = len(out)
			index[p.ThirdPartyID] = i
			out = append(out, core.ThirdPartyTotal{ThirdParty: s.parties[p.ThirdPartyID]})
		}
		out[i].Total = out[i].Total.Add(p.Amount)
	}
	return out, nil
}

func (s *Store) CreatePurchases(_ context.Context, ps []core.CardPurchase) ([]core.CardPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		if _, ok := s.cards[p.CardID]; !ok {
			return nil, &core.NotFoundError{Entity: "card", ID: p.CardID}
		}
		if p.ThirdPartyID != 0 {
			if _, ok := s.parties[p.ThirdPartyID]; !ok {
				return nil, &core.NotFoundError{Entity: "third party", ID: p.ThirdPartyID}
			}
		}
	}
	out := make([]core.CardPurchase, len(ps))
	for i, p := range ps {
		p.ID = s.id()
		s.purchases[p.ID] = p
		out[i] = p
	}
	return out, nil
}

func (s *Store) GetPurchase(_ context.Context, userID, id int64) (core.CardPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok || s.cards[p.CardID].UserID != userID {
		return core.CardPurchase{}, &core.NotFoundError{Entity: "purchase", ID: id}
	}
	return p, nil
}

func (s *Store) UpdatePurchase(_ context.Context, userID int64, p core.CardPurchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.purchases[p.ID]
	if !ok || s.cards[old.CardID].UserID != userID {
		return &core.NotFoundError{Entity: "purchase", ID: p.ID}
	}
	if c, ok := s.cards[p.CardID]; !ok || c.UserID != userID {
		return &core.NotFoundError{Entity: "card", ID: p.CardID}
	}
	s.purchases[p.ID] = p
	return nil
}

func (s *Store) DeletePurchase(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok || s.cards[p.CardID].UserID != userID {
		return &core.NotFoundError{Entity: "purchase", ID: id}
	}
	delete(s.purchases, id)
	return nil
}

func (s *Store) SetPurchasesPaid(_ context.Context, q core.PurchaseQuery, paid bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.matchPurchases(q) {
		p.Paid = paid
		s.purchases[p.ID] = p
		n++
	}
	return n, nil
}

func (s *Store) matchPurchases(q core.PurchaseQuery) []core.CardPurchase {
	var out []core.CardPurchase
	for _, p := range s.purchases {
		if s.cards[p.CardID].UserID != q.UserID {
			continue
		}
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			if q.NewestFirst {
				return out[i].Date.After(out[j].Date)
			}
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Catalog

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(_ context.Context, userID, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || !c.VisibleTo(userID) {
		return core.Category{}, &core.NotFoundError{Entity: "category", ID: id}
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, userID int64, kind core.CategoryKind) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.VisibleTo(userID) && (kind == "" || c.Kind == kind) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.categories[c.ID]
	if !ok || old.IsGlobal() || old.UserID != c.UserID {
		return &core.NotFoundError{Entity: "category", ID: c.ID}
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.IsGlobal() || c.UserID != userID {
		return &core.NotFoundError{Entity: "category", ID: id}
	}
	for _, t := range s.transactions {
		if t.CategoryID == id {
			return &core.IntegrityError{Entity: "category", Name: c.Name, Reason: "has transactions"}
		}
	}
	for _, g := range s.goals {
		if g.CategoryID == id {
			return &core.IntegrityError{Entity: "category", Name: c.Name, Reason: "is used by a goal"}
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateCard(_ context.Context, c core.CreditCard) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.cards[c.ID] = c
	return c, nil
}

func (s *Store) GetCard(_ context.Context, userID, id int64) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok || c.UserID != userID {
		return core.CreditCard{}, &core.NotFoundError{Entity: "card", ID: id}
	}
	return c, nil
}

func (s *Store) ListCards(_ context.Context, userID int64) ([]core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.CreditCard
	for _, c := range s.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateCard(_ context.Context, c core.CreditCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.cards[c.ID]
	if !ok || old.UserID != c.UserID {
		return &core.NotFoundError{Entity: "card", ID: c.ID}
	}
	s.cards[c.ID] = c
	return nil
}

func (s *Store) DeleteCard(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok || c.UserID != userID {
		return &core.NotFoundError{Entity: "card", ID: id}
	}
	for _, p := range s.purchases {
		if p.CardID == id {
			return &core.IntegrityError{Entity: "card", Name: c.Name, Reason: "has purchases"}
		}
	}
	delete(s.cards, id)
	return nil
}

func (s *Store) CreateThirdParty(_ context.Context, p core.ThirdParty) (core.ThirdParty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.parties[p.ID] = p
	return p, nil
}

func (s *Store) GetThirdParty(_ context.Context, userID, id int64) (core.ThirdParty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parties[id]
	if !ok || p.UserID != userID {
		return core.ThirdParty{}, &core.NotFoundError{Entity: "third party", ID: id}
	}
	return p, nil
}

func (s *Store) ListThirdParties(_ context.Context, userID int64) ([]core.ThirdParty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ThirdParty
	for _, p := range s.parties {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateThirdParty(_ context.Context, p core.ThirdParty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.parties[p.ID]
	if !ok || old.UserID != p.UserID {
		return &core.NotFoundError{Entity: "third party", ID: p.ID}
	}
	s.parties[p.ID] = p
	return nil
}

func (s *Store) DeleteThirdParty(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tp, ok := s.parties[id]
	if !ok || tp.UserID != userID {
		return &core.NotFoundError{Entity: "third party", ID: id}
	}
	for _, p := range s.purchases {
		if p.ThirdPartyID == id {
			return &core.IntegrityError{Entity: "third party", Name: tp.Name, Reason: "has purchases"}
		}
	}
	delete(s.parties, id)
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[int64]struct{}{}
	add := func(id int64) {
		if id != 0 {
			seen[id] = struct{}{}
		}
	}
	for _, c := range s.categories {
		add(c.UserID)
	}
	for _, t := range s.transactions {
		add(t.UserID)
	}
	for _, c := range s.cards {
		add(c.UserID)
	}
	for _, p := range s.parties {
		add(p.UserID)
	}
	for _, g := range s.goals {
		add(g.UserID)
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Goals

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkGoalUnique(g); err != nil {
		return core.Goal{}, err
	}
	g.ID = s.id()
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) GetGoal(_ context.Context, userID, id int64) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return core.Goal{}, &core.NotFoundError{Entity: "goal", ID: id}
	}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, userID int64) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Goal
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.goals[g.ID]
	if !ok || old.UserID != g.UserID {
		return &core.NotFoundError{Entity: "goal", ID: g.ID}
	}
	if err := s.checkGoalUnique(g); err != nil {
		return err
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return &core.NotFoundError{Entity: "goal", ID: id}
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) checkGoalUnique(g core.Goal) error {
	if g.Period == core.Custom {
		return nil
	}
	for _, o := range s.goals {
		if o.ID == g.ID {
			continue
		}
		if o.UserID == g.UserID && o.Kind == g.Kind && o.CategoryID == g.CategoryID && o.Period == g.Period {
			return &core.IntegrityError{Entity: "goal", Name: string(g.Kind), Reason: "already exists for this period"}
		}
	}
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
