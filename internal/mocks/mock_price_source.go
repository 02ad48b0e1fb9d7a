package mocks

import (
	"context"

	"github.com/shopspring/decimal"
)

type MockPriceSource struct {
	CurrentPriceUSDFunc func(ctx context.Context) (decimal.Decimal, error)
}

func (m *MockPriceSource) CurrentPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	return m.CurrentPriceUSDFunc(ctx)
}

// FixedPriceSource always returns the same PI-USD rate.
type FixedPriceSource struct {
	Price decimal.Decimal
}

func (f *FixedPriceSource) CurrentPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	return f.Price, nil
}
