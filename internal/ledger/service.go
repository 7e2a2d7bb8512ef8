// Package ledger applies typed transactions to account balances and keeps the
// derived loan schedules and advance ledgers consistent with them.
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/ledgerly/internal/id"
	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/statement"
	"github.com/cleared-dev/ledgerly/internal/store"
)

// Options tunes Service behaviour.
type Options struct {
	// EnforceCreditLimit rejects submissions that push a card past its limit.
	// When false the breach is only logged.
	EnforceCreditLimit bool
	// DefaultCurrency is used for accounts created without one.
	DefaultCurrency string
	// MinimumDue is the policy applied to card statements.
	MinimumDue statement.Policy
}

// Service is the transaction engine over a Store.
type Service struct {
	store store.Store
	log   *logrus.Logger
	opts  Options
	newID func(prefix string) string
}

// NewService creates a ledger Service.
func NewService(s store.Store, log *logrus.Logger, opts Options) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{store: s, log: log, opts: opts, newID: id.New}
}

// LegEffect is the balance change one leg applies to one account.
type LegEffect struct {
	Leg         model.Leg
	AccountID   string
	AccountType model.AccountType
	Delta       decimal.Decimal
	Before      decimal.Decimal
	After       decimal.Decimal

	acct model.Account
}

// Preview is the outcome a transaction would have if submitted now.
type Preview struct {
	Transaction model.Transaction
	Effects     []LegEffect
	Warnings    []model.CreditLimitWarning
}

// Preview validates tx and reports its effects without writing anything.
// Credit limit breaches are returned as warnings, never as errors.
func (s *Service) Preview(ctx context.Context, tx model.Transaction) (Preview, error) {
	if err := Validate(tx).Err(); err != nil {
		return Preview{}, err
	}
	effects, err := resolve(ctx, s.store, tx)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Transaction: tx, Effects: effects, Warnings: creditWarnings(effects)}, nil
}

// Create validates and records tx, applying its balance effects atomically.
// The stored transaction is returned with its ID assigned.
func (s *Service) Create(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	if tx.FromAdvance {
		return model.Transaction{}, s.reject("create", tx, model.ValidationError{
			Field: "from_advance", Reason: "advance-funded repayments are recorded through Repay",
		})
	}
	if err := Validate(tx).Err(); err != nil {
		return model.Transaction{}, s.reject("create", tx, err)
	}
	if tx.ID == "" {
		tx.ID = s.newID(id.Transaction)
	}
	tx.Date = model.DateOf(tx.Date)

	err := s.store.WithinTx(ctx, func(ctx context.Context, st store.Store) error {
		return s.post(ctx, st, tx)
	})
	if err != nil {
		return model.Transaction{}, s.reject("create", tx, err)
	}
	s.logTx(tx).Info("transaction created")
	return tx, nil
}

// Update replaces the stored transaction id with next. The old effects are
// reversed and the new ones applied in the same unit of work.
func (s *Service) Update(ctx context.Context, txID string, next model.Transaction) (model.Transaction, error) {
	next.ID = txID
	if next.FromAdvance {
		return model.Transaction{}, s.reject("update", next, model.ValidationError{
			Field: "from_advance", Reason: "advance-funded repayments cannot be edited",
		})
	}
	if err := Validate(next).Err(); err != nil {
		return model.Transaction{}, s.reject("update", next, err)
	}
	next.Date = model.DateOf(next.Date)

	err := s.store.WithinTx(ctx, func(ctx context.Context, st store.Store) error {
		prev, err := st.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if err := s.checkEditable(ctx, st, prev); err != nil {
			return err
		}
		if next.OwnerID == "" {
			next.OwnerID = prev.OwnerID
		}
		if err := reverse(ctx, st, prev); err != nil {
			return fmt.Errorf("reversing %s: %w", txID, err)
		}
		effects, err := resolve(ctx, st, next)
		if err != nil {
			return err
		}
		if err := s.guardCredit(effects); err != nil {
			return err
		}
		if err := apply(ctx, st, effects); err != nil {
			return err
		}
		if err := st.UpdateTransaction(ctx, next); err != nil {
			return fmt.Errorf("updating transaction: %w", err)
		}
		return regenerateLoans(ctx, st, s.newID, loanIDs(prev, next)...)
	})
	if err != nil {
		return model.Transaction{}, s.reject("update", next, err)
	}
	s.logTx(next).Info("transaction updated")
	return next, nil
}

// Delete removes a transaction, reversing its balance effects and dropping
// any advance events it recorded.
func (s *Service) Delete(ctx context.Context, txID string) error {
	var prev model.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, st store.Store) error {
		var err error
		prev, err = st.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if err := checkNotConverted(ctx, st, prev); err != nil {
			return err
		}
		if err := reverse(ctx, st, prev); err != nil {
			return fmt.Errorf("reversing %s: %w", txID, err)
		}
		if prev.Type == model.TxCreditCardRepayment {
			if err := dropAdvanceEvents(ctx, st, prev); err != nil {
				return err
			}
		}
		if err := st.DeleteTransaction(ctx, txID); err != nil {
			return fmt.Errorf("deleting transaction: %w", err)
		}
		return regenerateLoans(ctx, st, s.newID, loanIDs(prev)...)
	})
	if err != nil {
		return s.reject("delete", model.Transaction{ID: txID}, err)
	}
	s.logTx(prev).Info("transaction deleted")
	return nil
}

// post applies tx's effects and inserts it. Callers hold a unit of work.
func (s *Service) post(ctx context.Context, st store.Store, tx model.Transaction) error {
	effects, err := resolve(ctx, st, tx)
	if err != nil {
		return err
	}
	if err := s.guardCredit(effects); err != nil {
		return err
	}
	if err := apply(ctx, st, effects); err != nil {
		return err
	}
	if err := st.InsertTransaction(ctx, tx); err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return regenerateLoans(ctx, st, s.newID, loanIDs(tx)...)
}

func (s *Service) checkEditable(ctx context.Context, st store.Store, prev model.Transaction) error {
	if prev.FromAdvance {
		return model.ValidationError{Field: "from_advance", Reason: "advance-funded repayments cannot be edited"}
	}
	if err := checkNotConverted(ctx, st, prev); err != nil {
		return err
	}
	if prev.Type != model.TxCreditCardRepayment {
		return nil
	}
	events, err := st.ListAdvanceEvents(ctx, prev.ToAccountID)
	if err != nil {
		return fmt.Errorf("listing advance events: %w", err)
	}
	for _, ev := range events {
		if ev.TransactionID == prev.ID {
			return model.ValidationError{Field: "id", Reason: "repayment created an advance; delete and re-enter it"}
		}
	}
	return nil
}

// checkNotConverted rejects changes to a purchase billed as installments.
func checkNotConverted(ctx context.Context, st store.Reader, tx model.Transaction) error {
	if tx.FromAccountID == "" {
		return nil
	}
	emis, err := st.ListEMITransactions(ctx, tx.FromAccountID)
	if err != nil {
		return fmt.Errorf("listing emis: %w", err)
	}
	for _, e := range emis {
		if e.TransactionID == tx.ID && e.Status != model.EMICancelled {
			return model.ValidationError{Field: "id", Reason: "transaction is billed as emi " + e.ID}
		}
	}
	return nil
}

func (s *Service) guardCredit(effects []LegEffect) error {
	for _, w := range creditWarnings(effects) {
		if s.opts.EnforceCreditLimit {
			return model.CreditLimitError{Warning: w}
		}
		s.log.WithFields(logrus.Fields{
			"account_id": w.AccountID,
			"limit":      w.Limit.StringFixed(2),
			"projected":  w.Projected.StringFixed(2),
		}).Warn("credit limit exceeded")
	}
	return nil
}

func (s *Service) reject(op string, tx model.Transaction, err error) error {
	s.logTx(tx).WithError(err).Warnf("%s rejected", op)
	return err
}

func (s *Service) logTx(tx model.Transaction) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"tx_id":  tx.ID,
		"type":   tx.Type,
		"amount": tx.Amount.StringFixed(2),
	})
}

// resolve loads every leg account of tx and computes its delta. A missing
// account fails the whole transaction.
func resolve(ctx context.Context, r store.Reader, tx model.Transaction) ([]LegEffect, error) {
	needFrom, needTo := model.LegsFor(tx)
	var out []LegEffect
	for _, leg := range []model.Leg{model.LegFrom, model.LegTo} {
		if (leg == model.LegFrom && !needFrom) || (leg == model.LegTo && !needTo) {
			continue
		}
		acct, err := r.GetAccount(ctx, tx.AccountID(leg))
		if err != nil {
			return nil, fmt.Errorf("resolving %s account: %w", leg, err)
		}
		if tx.FromAdvance {
			// Settled from an advance already reflected in the card balance.
			if acct.Type != model.AccountTypeCreditCard {
				return nil, model.ValidationError{Field: "to_account", Reason: "must be a credit card"}
			}
			continue
		}
		delta, err := model.Delta(tx.Type, leg, acct.Type, tx.Amount)
		if err != nil {
			return nil, err
		}
		out = append(out, LegEffect{
			Leg:         leg,
			AccountID:   acct.ID,
			AccountType: acct.Type,
			Delta:       delta,
			Before:      acct.Balance,
			After:       acct.Balance.Add(delta),
			acct:        acct,
		})
	}
	return out, nil
}

func apply(ctx context.Context, st store.Store, effects []LegEffect) error {
	for _, e := range effects {
		if _, err := st.AdjustBalance(ctx, e.AccountID, e.Delta); err != nil {
			return fmt.Errorf("adjusting %s: %w", e.AccountID, err)
		}
	}
	return nil
}

// reverse undoes the stored effects of tx by applying the negated deltas.
func reverse(ctx context.Context, st store.Store, tx model.Transaction) error {
	effects, err := resolve(ctx, st, tx)
	if err != nil {
		return err
	}
	for i := range effects {
		effects[i].Delta = effects[i].Delta.Neg()
	}
	return apply(ctx, st, effects)
}

// creditWarnings reports cards whose owed balance grows past their limit.
func creditWarnings(effects []LegEffect) []model.CreditLimitWarning {
	var out []model.CreditLimitWarning
	for _, e := range effects {
		if !e.Delta.IsPositive() {
			continue
		}
		if w := statement.CheckCreditLimit(e.acct, e.After); w != nil {
			out = append(out, *w)
		}
	}
	return out
}

// Transaction returns one stored transaction.
func (s *Service) Transaction(ctx context.Context, txID string) (model.Transaction, error) {
	return s.store.GetTransaction(ctx, txID)
}

// Transactions lists stored transactions matching f in date order.
func (s *Service) Transactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}
