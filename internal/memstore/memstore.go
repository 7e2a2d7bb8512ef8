// Package memstore is an in-memory store.Store used by tests and previews.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/store"
)

type state struct {
	accounts     map[string]model.Account
	accountOrder []string
	txs          map[string]model.Transaction
	txOrder      []string
	rates        map[string][]model.InterestRate
	loanPayments map[string][]model.LoanEMIPayment
	emis         map[string]model.EMITransaction
	emiOrder     []string
	advances     []model.AdvanceEvent
}

func newState() *state {
	return &state{
		accounts:     make(map[string]model.Account),
		txs:          make(map[string]model.Transaction),
		rates:        make(map[string][]model.InterestRate),
		loanPayments: make(map[string][]model.LoanEMIPayment),
		emis:         make(map[string]model.EMITransaction),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for k, v := range st.txs {
		c.txs[k] = v
	}
	for k, v := range st.rates {
		c.rates[k] = append([]model.InterestRate(nil), v...)
	}
	for k, v := range st.loanPayments {
		c.loanPayments[k] = append([]model.LoanEMIPayment(nil), v...)
	}
	for k, v := range st.emis {
		c.emis[k] = v
	}
	c.accountOrder = append([]string(nil), st.accountOrder...)
	c.txOrder = append([]string(nil), st.txOrder...)
	c.emiOrder = append([]string(nil), st.emiOrder...)
	c.advances = append([]model.AdvanceEvent(nil), st.advances...)
	return c
}

// Store keeps all records in memory behind one mutex. WithinTx works on a
// copy of the state and swaps it in only when fn succeeds.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ store.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) lock() (*view, func()) {
	s.mu.Lock()
	return &view{st: s.st}, s.mu.Unlock
}

// WithinTx implements store.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &view{st: s.st.clone()}
	if err := fn(ctx, v); err != nil {
		return err
	}
	s.st = v.st
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (model.Account, error) {
	v, unlock := s.lock()
	defer unlock()
	return v.GetAccount(ctx, id)
}

func (s *Store) ListAccounts(ctx context.Context, ownerID string) ([]model.Account, error) {
	v, unlock := s.lock()
	defer unlock()
	return v.ListAccounts(ctx, ownerID)
}

func (s *Store) InsertAccount(ctx context.Context, a model.Account) error {
	v, unlock := s.lock()
	defer unlock()
	return v.InsertAccount(ctx, a)
}

func (s *Store) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	v, unlock := s.lock()
	defer unlock()
	return v.AdjustBalance(ctx, id, delta)
}

func (s *Store) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	v, unlock := s.lock()
	defer unlock()
	return v.GetTransaction(ctx, id)
}

func (s *Store) ListTransactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	v, unlock := s.lock()
	defer unlock()
	return v.ListTransactions(ctx, f)
}

func (s *Store) InsertTransaction(ctx context.Context, tx model.Transaction) error {
	v, unlock := s.lock()
	defer unlock()
	return v.InsertTransaction(ctx, tx)
}

func (s *Store) UpdateTransaction(ctx context.Context, tx model.Transaction) error {
	v, unlock := s.lock()
	defer unlock()
	return v.UpdateTransaction(ctx, tx)
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	v, unlock := s.lock()
	defer unlock()
	return v.DeleteTransaction(ctx, id)
}

func (s *Store) ListInterestRates(ctx context.Context, accountID string) ([]model.InterestRate, error) {
	v, unlock := s.lock()
	defer unlock()
	return v.ListInterestRates(ctx, accountID)
}

func (s *Store) InsertInterestRate(ctx context.Context, r model.InterestRate) error {
	v, unlock := s.lock()
	defer unlock()
	return v.InsertInterestRate(ctx, r)
}

func (s *Store) ListLoanPayments(ctx context.Context, accountID string) ([]model.LoanEMIPayment, error) {
	v, unlock := s.lock()
	defer unlock()
	return v.ListLoanPayments(ctx, accountID)
}

func (s *Store) ReplaceLoanPayments(ctx context.Context, accountID string, payments []model.LoanEMIPayment) error {
	v, unlock := s.lock()
	defer unlock()
	return v.ReplaceLoanPayments(ctx, accountID, payments)
}

func (s *Store) GetEMITransaction(ctx context.Context, id string) (model.EMITransaction, error) {
	v, unlock := s.lock()
	defer unlock()
	return v.GetEMITransaction(ctx, id)
}

func (s *Store) ListEMITransactions(ctx context.Context, accountID string) ([]model.EMITransaction, error) {
	v, unlock := s.lock()
	defer unlock()
	return v.ListEMITransactions(ctx, accountID)
}

func (s *Store) InsertEMITransaction(ctx context.Context, e model.EMITransaction) error {
	v, unlock := s.lock()
	defer unlock()
	return v.InsertEMITransaction(ctx, e)
}

func (s *Store) UpdateEMITransaction(ctx context.Context, e model.EMITransaction) error {
	v, unlock := s.lock()
	defer unlock()
	return v.UpdateEMITransaction(ctx, e)
}

func (s *Store) ListAdvanceEvents(ctx context.Context, cardID string) ([]model.AdvanceEvent, error) {
	v, unlock := s.lock()
	defer unlock()
	return v.ListAdvanceEvents(ctx, cardID)
}

func (s *Store) AppendAdvanceEvent(ctx context.Context, ev model.AdvanceEvent) error {
	v, unlock := s.lock()
	defer unlock()
	return v.AppendAdvanceEvent(ctx, ev)
}

func (s *Store) DeleteAdvanceEvents(ctx context.Context, transactionID string) error {
	v, unlock := s.lock()
	defer unlock()
	return v.DeleteAdvanceEvents(ctx, transactionID)
}

// view operates on a state the caller already holds exclusively.
type view struct {
	st *state
}

func (v *view) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, v)
}

func (v *view) GetAccount(_ context.Context, id string) (model.Account, error) {
	a, ok := v.st.accounts[id]
	if !ok {
		return model.Account{}, model.NotFoundError{Kind: "account", ID: id}
	}
	return a, nil
}

func (v *view) ListAccounts(_ context.Context, ownerID string) ([]model.Account, error) {
	var out []model.Account
	for _, id := range v.st.accountOrder {
		a := v.st.accounts[id]
		if ownerID == "" || a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (v *view) InsertAccount(_ context.Context, a model.Account) error {
	if _, ok := v.st.accounts[a.ID]; ok {
		return fmt.Errorf("account %q already exists", a.ID)
	}
	v.st.accounts[a.ID] = a
	v.st.accountOrder = append(v.st.accountOrder, a.ID)
	return nil
}

func (v *view) AdjustBalance(_ context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	a, ok := v.st.accounts[id]
	if !ok {
		return decimal.Zero, model.NotFoundError{Kind: "account", ID: id}
	}
	a.Balance = a.Balance.Add(delta)
	v.st.accounts[id] = a
	return a.Balance, nil
}

func (v *view) GetTransaction(_ context.Context, id string) (model.Transaction, error) {
	tx, ok := v.st.txs[id]
	if !ok {
		return model.Transaction{}, model.NotFoundError{Kind: "transaction", ID: id}
	}
	return tx, nil
}

func (v *view) ListTransactions(_ context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, id := range v.st.txOrder {
		if tx := v.st.txs[id]; f.Match(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (v *view) InsertTransaction(_ context.Context, tx model.Transaction) error {
	if _, ok := v.st.txs[tx.ID]; ok {
		return fmt.Errorf("transaction %q already exists", tx.ID)
	}
	v.st.txs[tx.ID] = tx
	v.st.txOrder = append(v.st.txOrder, tx.ID)
	return nil
}

func (v *view) UpdateTransaction(_ context.Context, tx model.Transaction) error {
	if _, ok := v.st.txs[tx.ID]; !ok {
		return model.NotFoundError{Kind: "transaction", ID: tx.ID}
	}
	v.st.txs[tx.ID] = tx
	return nil
}

func (v *view) DeleteTransaction(_ context.Context, id string) error {
	if _, ok := v.st.txs[id]; !ok {
		return model.NotFoundError{Kind: "transaction", ID: id}
	}
	delete(v.st.txs, id)
	v.st.txOrder = removeID(v.st.txOrder, id)
	return nil
}

func (v *view) ListInterestRates(_ context.Context, accountID string) ([]model.InterestRate, error) {
	out := append([]model.InterestRate(nil), v.st.rates[accountID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].EffectiveDate.Before(out[j].EffectiveDate) })
	return out, nil
}

func (v *view) InsertInterestRate(_ context.Context, r model.InterestRate) error {
	v.st.rates[r.AccountID] = append(v.st.rates[r.AccountID], r)
	return nil
}

func (v *view) ListLoanPayments(_ context.Context, accountID string) ([]model.LoanEMIPayment, error) {
	return append([]model.LoanEMIPayment(nil), v.st.loanPayments[accountID]...), nil
}

func (v *view) ReplaceLoanPayments(_ context.Context, accountID string, payments []model.LoanEMIPayment) error {
	if len(payments) == 0 {
		delete(v.st.loanPayments, accountID)
		return nil
	}
	v.st.loanPayments[accountID] = append([]model.LoanEMIPayment(nil), payments...)
	return nil
}

func (v *view) GetEMITransaction(_ context.Context, id string) (model.EMITransaction, error) {
	e, ok := v.st.emis[id]
	if !ok {
		return model.EMITransaction{}, model.NotFoundError{Kind: "emi", ID: id}
	}
	return e, nil
}

func (v *view) ListEMITransactions(_ context.Context, accountID string) ([]model.EMITransaction, error) {
	var out []model.EMITransaction
	for _, id := range v.st.emiOrder {
		if e := v.st.emis[id]; accountID == "" || e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (v *view) InsertEMITransaction(_ context.Context, e model.EMITransaction) error {
	if _, ok := v.st.emis[e.ID]; ok {
		return fmt.Errorf("emi %q already exists", e.ID)
	}
	v.st.emis[e.ID] = e
	v.st.emiOrder = append(v.st.emiOrder, e.ID)
	return nil
}

func (v *view) UpdateEMITransaction(_ context.Context, e model.EMITransaction) error {
	if _, ok := v.st.emis[e.ID]; !ok {
		return model.NotFoundError{Kind: "emi", ID: e.ID}
	}
	v.st.emis[e.ID] = e
	return nil
}

func (v *view) ListAdvanceEvents(_ context.Context, cardID string) ([]model.AdvanceEvent, error) {
	var out []model.AdvanceEvent
	for _, ev := range v.st.advances {
		if ev.CardID == cardID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (v *view) AppendAdvanceEvent(_ context.Context, ev model.AdvanceEvent) error {
	if !ev.Amount.IsPositive() {
		return fmt.Errorf("advance event %q: amount must be positive", ev.ID)
	}
	v.st.advances = append(v.st.advances, ev)
	return nil
}

func (v *view) DeleteAdvanceEvents(_ context.Context, transactionID string) error {
	kept := v.st.advances[:0:0]
	for _, ev := range v.st.advances {
		if ev.TransactionID != transactionID {
			kept = append(kept, ev)
		}
	}
	v.st.advances = kept
	return nil
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
