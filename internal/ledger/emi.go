package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/ledgerly/internal/billing"
	"github.com/cleared-dev/ledgerly/internal/id"
	"github.com/cleared-dev/ledgerly/internal/installment"
	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/store"
)

// ConvertParams holds parameters for converting a card purchase to EMIs.
type ConvertParams struct {
	TransactionID string
	BankCharges   decimal.Decimal
	Months        int
	// FirstDueDate defaults to the start of the cycle after the purchase.
	FirstDueDate time.Time
}

// ConvertToEMI turns a card expense into installments. Bank charges are
// added to the card balance; the purchase itself is already on it.
// From then on statements bill the installments instead of the purchase.
func (s *Service) ConvertToEMI(ctx context.Context, p ConvertParams) (model.EMITransaction, error) {
	var out model.EMITransaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, st store.Store) error {
		tx, err := st.GetTransaction(ctx, p.TransactionID)
		if err != nil {
			return err
		}
		if tx.Type != model.TxExpense && tx.Type != model.TxWithdrawal {
			return model.ValidationError{Field: "transaction_id", Reason: fmt.Sprintf("%s transactions cannot be converted", tx.Type)}
		}
		card, err := st.GetAccount(ctx, tx.FromAccountID)
		if err != nil {
			return err
		}
		if card.Type != model.AccountTypeCreditCard {
			return model.ValidationError{Field: "transaction_id", Reason: "only credit card purchases can be converted"}
		}

		existing, err := st.ListEMITransactions(ctx, card.ID)
		if err != nil {
			return fmt.Errorf("listing emis: %w", err)
		}
		for _, e := range existing {
			if e.TransactionID == tx.ID && e.Status != model.EMICancelled {
				return model.ValidationError{Field: "transaction_id", Reason: "already converted by " + e.ID}
			}
		}

		first := p.FirstDueDate
		if first.IsZero() {
			period, err := billing.StatementPeriod(card.StatementDay, tx.Date)
			if err != nil {
				return err
			}
			first = period.End
		}
		out, err = installment.New(installment.NewParams{
			ID:             s.newID(id.EMI),
			AccountID:      card.ID,
			TransactionID:  tx.ID,
			PurchaseAmount: tx.Amount,
			BankCharges:    p.BankCharges,
			Months:         p.Months,
			FirstDueDate:   first,
		})
		if err != nil {
			return err
		}
		if err := st.InsertEMITransaction(ctx, out); err != nil {
			return fmt.Errorf("inserting emi: %w", err)
		}
		if out.BankCharges.IsPositive() {
			if _, err := st.AdjustBalance(ctx, card.ID, out.BankCharges); err != nil {
				return fmt.Errorf("adding bank charges: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return model.EMITransaction{}, err
	}
	s.logEMI(out).Info("purchase converted to emi")
	return out, nil
}

// PayInstallment records one paid installment.
func (s *Service) PayInstallment(ctx context.Context, emiID string) (model.EMITransaction, error) {
	return s.transitionEMI(ctx, emiID, "installment paid", pureStep(installment.Pay))
}

// UnpayInstallment reverses one paid installment.
func (s *Service) UnpayInstallment(ctx context.Context, emiID string) (model.EMITransaction, error) {
	return s.transitionEMI(ctx, emiID, "installment reversed", pureStep(installment.Unpay))
}

// CancelEMI stops billing an EMI. The bank charges added on conversion
// come off the card and the purchase is billed as a plain spend again, so
// it can be converted afresh.
func (s *Service) CancelEMI(ctx context.Context, emiID string) (model.EMITransaction, error) {
	return s.transitionEMI(ctx, emiID, "emi cancelled", func(ctx context.Context, st store.Store, e model.EMITransaction) (model.EMITransaction, error) {
		out, err := installment.Cancel(e)
		if err != nil {
			return out, err
		}
		if out.BankCharges.IsPositive() {
			if _, err := st.AdjustBalance(ctx, out.AccountID, out.BankCharges.Neg()); err != nil {
				return out, fmt.Errorf("refunding bank charges: %w", err)
			}
		}
		return out, nil
	})
}

// EMIs lists a card's installment plans.
func (s *Service) EMIs(ctx context.Context, cardID string) ([]model.EMITransaction, error) {
	emis, err := s.store.ListEMITransactions(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("listing emis: %w", err)
	}
	return emis, nil
}

// emiStep moves an EMI to its next state inside the store transaction.
type emiStep func(ctx context.Context, st store.Store, e model.EMITransaction) (model.EMITransaction, error)

func pureStep(f func(model.EMITransaction) (model.EMITransaction, error)) emiStep {
	return func(_ context.Context, _ store.Store, e model.EMITransaction) (model.EMITransaction, error) {
		return f(e)
	}
}

func (s *Service) transitionEMI(ctx context.Context, emiID, msg string, step emiStep) (model.EMITransaction, error) {
	var out model.EMITransaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, st store.Store) error {
		e, err := st.GetEMITransaction(ctx, emiID)
		if err != nil {
			return err
		}
		out, err = step(ctx, st, e)
		if err != nil {
			return err
		}
		return st.UpdateEMITransaction(ctx, out)
	})
	if err != nil {
		return model.EMITransaction{}, err
	}
	s.logEMI(out).Info(msg)
	return out, nil
}

func (s *Service) logEMI(e model.EMITransaction) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"emi_id":    e.ID,
		"card_id":   e.AccountID,
		"remaining": e.RemainingInstallments,
		"status":    e.Status,
	})
}
