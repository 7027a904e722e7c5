package service

import (
	"github.com/shopspring/decimal"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/domain/pricing"
)

// QuoteRequest is a pricing request with an optional customer price to preview the split against.
type QuoteRequest struct {
	pricing.Input
	SellPrice *decimal.Decimal `json:"sell_price,omitempty"`
}

// Quote is the pure pricing result for a QuoteRequest.
type Quote struct {
	Pricing   model.PricingSnapshot `json:"pricing"`
	Split     *model.ProfitSplit    `json:"profit_split,omitempty"`
	CostOrder *CostOrderEligibility `json:"cost_order,omitempty"`
}

// PriceQuote runs the pricing engine without touching storage. With a sell price the estimated split
// and cost order eligibility are included.
func PriceQuote(req QuoteRequest) (*Quote, error) {
	snap, err := pricing.Calculate(req.Input)
	if err != nil {
		return nil, err
	}
	q := &Quote{Pricing: snap}
	if req.SellPrice == nil {
		return q, nil
	}

	split := pricing.Split(pricing.SplitForEstimate(*req.SellPrice, snap))
	split.Source = model.SplitSourceEstimate
	q.Split = &split

	ok, reason := pricing.CanGenerateCostOrder(req.Quantity, req.SizeName, *req.SellPrice)
	q.CostOrder = &CostOrderEligibility{Eligible: ok, Reason: reason}
	return q, nil
}
