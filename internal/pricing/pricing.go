package pricing

import (
	"context"

	"github.com/promopress/promopress/internal/domain"
	"github.com/shopspring/decimal"
)

// Source yields the latest PI-USD trade price.
type Source interface {
	CurrentPriceUSD(ctx context.Context) (decimal.Decimal, error)
}

// Fixed plan prices in USD. The Pi amount charged is derived from these at
// purchase time using the live PI-USD rate.
var planPricesUSD = map[domain.PlanType]decimal.Decimal{
	domain.PlanStandard:       decimal.NewFromFloat(3.00),
	domain.PlanCategorySlider: decimal.NewFromFloat(20.00),
	domain.PlanMainSlider:     decimal.NewFromFloat(30.00),
}

// PlanPriceUSD returns the fixed USD price for a plan.
func PlanPriceUSD(plan domain.PlanType) decimal.Decimal {
	return planPricesUSD[plan]
}

// PlanPricePi converts a plan's fixed USD price to Pi at the given rate,
// rounding up to two decimals. Rounding up is policy: a conversion must never
// undercharge.
func PlanPricePi(plan domain.PlanType, piPriceUSD decimal.Decimal) decimal.Decimal {
	return planPricesUSD[plan].Div(piPriceUSD).RoundUp(2)
}

// PlanPrices is the price sheet shown to buyers: the PI-USD rate plus each
// plan's Pi amount, all rounded up.
type PlanPrices struct {
	PiPriceUSD     decimal.Decimal
	Standard       decimal.Decimal
	CategorySlider decimal.Decimal
	MainSlider     decimal.Decimal
}

// PlanPricesPi computes the full price sheet from a Source.
func PlanPricesPi(ctx context.Context, source Source) (*PlanPrices, error) {
	rate, err := source.CurrentPriceUSD(ctx)
	if err != nil {
		return nil, err
	}

	return &PlanPrices{
		PiPriceUSD:     rate.RoundUp(4),
		Standard:       PlanPricePi(domain.PlanStandard, rate),
		CategorySlider: PlanPricePi(domain.PlanCategorySlider, rate),
		MainSlider:     PlanPricePi(domain.PlanMainSlider, rate),
	}, nil
}
