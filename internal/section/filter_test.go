package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payrecon-dev/payrecon/internal/model"
)

func ledger() []model.AuthoritativeRecord {
	return []model.AuthoritativeRecord{
		{Row: 1, ID: "1", Plan: "Forex 10K", PaymentMethod: "Riseworks", Status: "Disbursed"},
		{Row: 2, ID: "2", Plan: "FUTURES 50K", PaymentMethod: "riseworks", Status: "Disbursed"},
		{Row: 3, ID: "3", Plan: "Forex 25K", PaymentMethod: "USDT (TRC20)", Status: "Disbursed"},
		{Row: 4, ID: "4", Plan: "", PaymentMethod: "usdc", Status: "Pending"},
		{Row: 5, ID: "5", Plan: "Futures Pro", PaymentMethod: "USDC", Status: "disbursed"},
		{Row: 6, ID: "6", Plan: "Forex 5K", PaymentMethod: "Wire", Status: "Disbursed"},
	}
}

func rows(records []model.AuthoritativeRecord) []int {
	var out []int
	for _, r := range records {
		out = append(out, r.Row)
	}
	return out
}

func TestCategoryOf(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, model.CategoryFutures, r.CategoryOf("Futures 50K"))
	assert.Equal(t, model.CategoryFutures, r.CategoryOf("pro FUTURES"))
	assert.Equal(t, model.CategoryForex, r.CategoryOf("Forex 10K"))
	assert.Equal(t, model.CategoryForex, r.CategoryOf(""))
}

func TestFilter(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name     string
		category model.Category
		signals  Signals
		want     []int
	}{
		{"forex email only", model.CategoryForex, Signals{model.MethodEmail: true}, []int{1}},
		{"forex id only", model.CategoryForex, Signals{model.MethodID: true}, []int{3, 4}},
		{"forex both keeps source order", model.CategoryForex, Signals{model.MethodEmail: true, model.MethodID: true}, []int{1, 3, 4}},
		{"futures both", model.CategoryFutures, Signals{model.MethodEmail: true, model.MethodID: true}, []int{2, 5}},
		{"no signals", model.CategoryForex, Signals{}, nil},
		{"false signal ignored", model.CategoryForex, Signals{model.MethodEmail: false}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rows(Filter(ledger(), tt.category, tt.signals, r)))
		})
	}
}

func TestSignalsOf(t *testing.T) {
	s := SignalsOf([]model.ParsedRecord{{Method: model.MethodID}, {Method: model.MethodID}})
	require.Len(t, s, 1)
	assert.True(t, s[model.MethodID])
	assert.False(t, s[model.MethodEmail])
	assert.Empty(t, SignalsOf(nil))
}

func TestDisbursed(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 5, 6}, rows(Disbursed(ledger(), DefaultRules())))
}
