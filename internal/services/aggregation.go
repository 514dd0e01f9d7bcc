package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// Aggregator computes report totals for one user and window. Every call
// reads fresh data from the store.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Summary returns the balances and breakdowns of the window.
func (a *Aggregator) Summary(ctx context.Context, userID int64, w core.Window) (core.Summary, error) {
	in := core.SummaryInput{Window: w}
	var err error

	incomeQ := core.TransactionQuery{UserID: userID, Window: w, Kind: core.Income}
	expenseQ := core.TransactionQuery{UserID: userID, Window: w, Kind: core.Expense}
	cardsQ := core.PurchaseQuery{UserID: userID, Window: w}
	thirdQ := core.PurchaseQuery{UserID: userID, Window: w, Scope: core.ScopeThirdParty}

	if in.Income, err = a.store.SumTransactions(ctx, incomeQ); err != nil {
		return core.Summary{}, fmt.Errorf("sum income: %w", err)
	}
	if in.AccountExpense, err = a.store.SumTransactions(ctx, expenseQ); err != nil {
		return core.Summary{}, fmt.Errorf("sum expenses: %w", err)
	}
	if in.CardTotal, err = a.store.SumPurchases(ctx, cardsQ); err != nil {
		return core.Summary{}, fmt.Errorf("sum card purchases: %w", err)
	}
	if in.ThirdPartyTotal, err = a.store.SumPurchases(ctx, thirdQ); err != nil {
		return core.Summary{}, fmt.Errorf("sum third-party purchases: %w", err)
	}
	if in.IncomeGroups, err = a.store.SumTransactionsByCategory(ctx, incomeQ); err != nil {
		return core.Summary{}, fmt.Errorf("group income: %w", err)
	}
	if in.ExpenseGroups, err = a.store.SumTransactionsByCategory(ctx, expenseQ); err != nil {
		return core.Summary{}, fmt.Errorf("group expenses: %w", err)
	}
	if in.Cards, err = a.store.SumPurchasesByCard(ctx, cardsQ); err != nil {
		return core.Summary{}, fmt.Errorf("group cards: %w", err)
	}
	if in.ThirdParties, err = a.store.SumPurchasesByThirdParty(ctx, thirdQ); err != nil {
		return core.Summary{}, fmt.Errorf("group third parties: %w", err)
	}
	return core.NewSummary(in), nil
}

// MonthSummary is Summary over one calendar month.
func (a *Aggregator) MonthSummary(ctx context.Context, userID int64, year, month int) (core.Summary, error) {
	if month < 1 || month > 12 {
		return core.Summary{}, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	return a.Summary(ctx, userID, core.MonthWindow(year, month))
}

// CardBill is the purchase list behind one card total.
type CardBill struct {
	core.CardTotal
	Window    core.Window
	Purchases []core.CardPurchase
}

// CardBill lists the purchases of one card in the window, oldest first.
func (a *Aggregator) CardBill(ctx context.Context, userID, cardID int64, w core.Window) (CardBill, error) {
	card, err := a.store.GetCard(ctx, userID, cardID)
	if err != nil {
		return CardBill{}, err
	}
	ps, err := a.store.ListPurchases(ctx, core.PurchaseQuery{UserID: userID, Window: w, CardID: cardID})
	if err != nil {
		return CardBill{}, fmt.Errorf("list card purchases: %w", err)
	}
	bill := CardBill{CardTotal: core.CardTotal{Card: card}, Window: w, Purchases: ps}
	for _, p := range ps {
		bill.Total = bill.Total.Add(p.Amount)
		if !p.Paid {
			bill.Unpaid++
		}
	}
	return bill, nil
}

// ThirdPartyStatement is what one person owes.
type ThirdPartyStatement struct {
	ThirdParty  core.ThirdParty
	Window      core.Window
	Purchases   []core.CardPurchase
	WindowTotal core.Money
	AllTime     core.Money
}

// ThirdPartyStatement lists the person's purchases in the window, newest
// first, with the window total and the total across all time.
func (a *Aggregator) ThirdPartyStatement(ctx context.Context, userID, thirdPartyID int64, w core.Window) (ThirdPartyStatement, error) {
	tp, err := a.store.GetThirdParty(ctx, userID, thirdPartyID)
	if err != nil {
		return ThirdPartyStatement{}, err
	}
	q := core.PurchaseQuery{UserID: userID, Window: w, ThirdPartyID: thirdPartyID, Scope: core.ScopeThirdParty, NewestFirst: true}
	ps, err := a.store.ListPurchases(ctx, q)
	if err != nil {
		return ThirdPartyStatement{}, fmt.Errorf("list third-party purchases: %w", err)
	}
	st := ThirdPartyStatement{ThirdParty: tp, Window: w, Purchases: ps}
	for _, p := range ps {
		st.WindowTotal = st.WindowTotal.Add(p.Amount)
	}
	q.Window = core.Window{}
	if st.AllTime, err = a.store.SumPurchases(ctx, q); err != nil {
		return ThirdPartyStatement{}, fmt.Errorf("sum third-party purchases: %w", err)
	}
	return st, nil
}

// PersonalExpenses are account expenses plus card purchases the user made
// for themselves.
type PersonalExpenses struct {
	Window       core.Window
	Transactions []core.Transaction
	Purchases    []core.CardPurchase
	AccountTotal core.Money
	CardTotal    core.Money
	Total        core.Money
}

func (a *Aggregator) PersonalExpenses(ctx context.Context, userID int64, w core.Window) (PersonalExpenses, error) {
	txs, err := a.store.ListTransactions(ctx, core.TransactionQuery{UserID: userID, Window: w, Kind: core.Expense})
	if err != nil {
		return PersonalExpenses{}, fmt.Errorf("list expenses: %w", err)
	}
	ps, err := a.store.ListPurchases(ctx, core.PurchaseQuery{UserID: userID, Window: w, Scope: core.ScopeOwn})
	if err != nil {
		return PersonalExpenses{}, fmt.Errorf("list own purchases: %w", err)
	}
	out := PersonalExpenses{Window: w, Transactions: txs, Purchases: ps}
	for _, t := range txs {
		out.AccountTotal = out.AccountTotal.Add(t.Amount)
	}
	for _, p := range ps {
		out.CardTotal = out.CardTotal.Add(p.Amount)
	}
	out.Total = out.AccountTotal.Add(out.CardTotal)
	return out, nil
}

// CategoryDetail is the entry list behind one category row.
type CategoryDetail struct {
	Category     core.Category
	Window       core.Window
	Transactions []core.Transaction
	Total        core.Money
	Unpaid       int
}

func (a *Aggregator) CategoryDetail(ctx context.Context, userID, categoryID int64, w core.Window) (CategoryDetail, error) {
	cat, err := a.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return CategoryDetail{}, err
	}
	txs, err := a.store.ListTransactions(ctx, core.TransactionQuery{UserID: userID, Window: w, CategoryID: categoryID})
	if err != nil {
		return CategoryDetail{}, fmt.Errorf("list category entries: %w", err)
	}
	d := CategoryDetail{Category: cat, Window: w, Transactions: txs}
	for _, t := range txs {
		d.Total = d.Total.Add(t.Amount)
		if !t.Paid {
			d.Unpaid++
		}
	}
	return d, nil
}
