// Package importer turns bank statement CSV exports into ledger transactions.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

// Row is one parsed statement line.
type Row struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in
	Reference   string
	Type        string // bank transaction type (ACH_DEBIT, etc.), when the format has one
}

// Parser converts a bank CSV file into Rows.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Chase)
	r.Register(Simple)
	return r
}

// Recorder stores transactions. *ledger.Service satisfies it.
type Recorder interface {
	Transactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error)
	Create(ctx context.Context, tx model.Transaction) (model.Transaction, error)
}

// Params holds parameters for Import.
type Params struct {
	OwnerID   string
	AccountID string
	Rows      []Row
	// DryRun maps and deduplicates rows without recording them.
	DryRun bool
}

// Result reports what Import did.
type Result struct {
	Created []model.Transaction
	// Skipped counts rows matching a transaction already on the account.
	Skipped int
}

// Transaction maps a row onto accountID: money in is income to it, money
// out is an expense from it. Zero-amount rows map to ok=false.
func (r Row) Transaction(ownerID, accountID string) (model.Transaction, bool) {
	tx := model.Transaction{
		OwnerID:     ownerID,
		Amount:      r.Amount.Abs(),
		Date:        model.DateOf(r.Date),
		Description: r.Description,
	}
	switch r.Amount.Sign() {
	case 1:
		tx.Type = model.TxIncome
		tx.ToAccountID = accountID
	case -1:
		tx.Type = model.TxExpense
		tx.FromAccountID = accountID
	default:
		return model.Transaction{}, false
	}
	return tx, true
}

// Import records rows against one account, each as its own transaction.
// A row already recorded on the account with the same date, type, amount
// and description is skipped, so re-importing an overlapping export is safe.
// The first failing row stops the import; rows before it stay recorded.
func Import(ctx context.Context, rec Recorder, p Params) (Result, error) {
	if p.AccountID == "" {
		return Result{}, model.ValidationError{Field: "account_id", Reason: "required"}
	}
	existing, err := rec.Transactions(ctx, model.TransactionFilter{AccountID: p.AccountID})
	if err != nil {
		return Result{}, fmt.Errorf("listing existing transactions: %w", err)
	}
	seen := make(map[string]int, len(existing))
	for _, tx := range existing {
		seen[dedupeKey(tx)]++
	}

	var res Result
	for i, row := range p.Rows {
		tx, ok := row.Transaction(p.OwnerID, p.AccountID)
		if !ok {
			res.Skipped++
			continue
		}
		key := dedupeKey(tx)
		if seen[key] > 0 {
			seen[key]--
			res.Skipped++
			continue
		}
		if p.DryRun {
			res.Created = append(res.Created, tx)
			continue
		}
		created, err := rec.Create(ctx, tx)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
		res.Created = append(res.Created, created)
	}
	return res, nil
}

func dedupeKey(tx model.Transaction) string {
	return strings.Join([]string{
		tx.Date.Format(model.DateFormat),
		string(tx.Type),
		tx.Amount.StringFixed(2),
		strings.ToUpper(strings.TrimSpace(tx.Description)),
	}, "|")
}
