package id

import (
	"strings"

	"github.com/google/uuid"
)

// Prefixes for generated record IDs.
const (
	Account     = "acc"
	Transaction = "txn"
	Rate        = "rate"
	LoanPayment = "lpay"
	EMI         = "emi"
	Advance     = "adv"
)

// New returns a random ID like "txn_0b9b5c5e4c0f4bd6a1f2d1f0c3a2b4e9".
func New(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
