package id

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := New(Transaction)
	b := New(Transaction)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("txn_")+32)
	assert.Regexp(t, regexp.MustCompile(`^txn_[0-9a-f]{32}$`), a)
}

func TestNew_Prefixes(t *testing.T) {
	for _, prefix := range []string{Account, Rate, LoanPayment, EMI, Advance} {
		assert.Regexp(t, "^"+prefix+"_", New(prefix))
	}
}
