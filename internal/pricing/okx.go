package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/promopress/promopress/internal/domain"
	"github.com/shopspring/decimal"
)

const DefaultTickerURL = "https://www.okx.com/api/v5/market/ticker?instId=PI-USD"

// OKXSource fetches the PI-USD last trade price from the OKX market-data API.
// Every failure mode maps to domain.ErrPriceUnavailable: a payment must never
// proceed on a guessed price.
type OKXSource struct {
	client    *http.Client
	tickerURL string
}

func NewOKXSource(tickerURL string) *OKXSource {
	if tickerURL == "" {
		tickerURL = DefaultTickerURL
	}

	return &OKXSource{
		client:    &http.Client{Timeout: 5 * time.Second},
		tickerURL: tickerURL,
	}
}

type okxTickerResponse struct {
	Code string `json:"code"`
	Data []struct {
		Last string `json:"last"`
	} `json:"data"`
}

func (s *OKXSource) CurrentPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tickerURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: ticker endpoint returned status %d", domain.ErrPriceUnavailable, resp.StatusCode)
	}

	var ticker okxTickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}

	if len(ticker.Data) == 0 {
		return decimal.Zero, fmt.Errorf("%w: ticker response carried no data", domain.ErrPriceUnavailable)
	}

	price, err := decimal.NewFromString(ticker.Data[0].Last)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed last price %q", domain.ErrPriceUnavailable, ticker.Data[0].Last)
	}

	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive last price %s", domain.ErrPriceUnavailable, price)
	}

	return price, nil
}
