package rental

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBreakdownMixedKinds(t *testing.T) {
	cfg := &RentalFinancialConfig{
		Currency:           CurrencyPEN,
		ExpenseType:        KindFixed,
		ExpenseValue:       100,
		TaxType:            KindPercent,
		TaxValue:           4,
		ExternalAgentType:  KindFixed,
		ExternalAgentValue: 200,
		InternalAgentType:  KindFixed,
		InternalAgentValue: 150,
	}

	b := ComputeBreakdown(cfg, 2500, CurrencyPEN)

	assert.Equal(t, 100.0, b.Expense)
	assert.Equal(t, 100.0, b.Tax) // 4% de 2500
	assert.Equal(t, 200.0, b.ExternalAgentCommission)
	assert.Equal(t, 150.0, b.InternalAgentCommission)
	assert.Equal(t, 1950.0, b.Utility)
	assert.Equal(t, CurrencyPEN, b.Currency)
}

func TestComputeBreakdownWithoutConfig(t *testing.T) {
	b := ComputeBreakdown(nil, 1800, CurrencyUSD)

	assert.Zero(t, b.Expense)
	assert.Zero(t, b.Tax)
	assert.Zero(t, b.ExternalAgentCommission)
	assert.Zero(t, b.InternalAgentCommission)
	assert.Equal(t, 1800.0, b.Utility)
	assert.Nil(t, b.Config)
}

func TestComputeBreakdownNegativeUtility(t *testing.T) {
	cfg := &RentalFinancialConfig{
		ExpenseType:  KindFixed,
		ExpenseValue: 900,
		TaxType:      KindPercent,
		TaxValue:     50,
	}

	// Deducciones mayores a la renta: la utilidad queda negativa.
	b := ComputeBreakdown(cfg, 1000, CurrencyPEN)

	assert.Equal(t, 500.0, b.Tax)
	assert.Equal(t, -400.0, b.Utility)
}

func TestComputeBreakdownRoundsToCents(t *testing.T) {
	cfg := &RentalFinancialConfig{
		TaxType:  KindPercent,
		TaxValue: 3.33,
	}

	b := ComputeBreakdown(cfg, 1234.56, CurrencyPEN)

	// 1234.56 * 3.33% = 41.110848 -> 41.11
	assert.Equal(t, 41.11, b.Tax)
	assert.Equal(t, 1193.45, b.Utility)
}

func TestComputeBreakdownIsDeterministic(t *testing.T) {
	cfg := &RentalFinancialConfig{
		ExpenseType: KindPercent, ExpenseValue: 10,
		TaxType: KindPercent, TaxValue: 18,
	}

	first := ComputeBreakdown(cfg, 3200, CurrencyPEN)
	second := ComputeBreakdown(cfg, 3200, CurrencyPEN)

	assert.Equal(t, first, second)
}

func TestResolvePercentOverHundred(t *testing.T) {
	// PERCENT no se acota a 100
	assert.Equal(t, 1500.0, KindPercent.Resolve(150, 1000))
}
