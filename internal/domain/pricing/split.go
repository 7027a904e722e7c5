package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/target/printbroker-api/internal/domain/model"
)

// Margin thresholds in percent.
var (
	HealthyMarginPercent  = decimal.NewFromInt(15)
	CriticalMarginPercent = decimal.NewFromInt(10)
	hundred               = decimal.NewFromInt(100)
)

// Advisory warnings attached to a split.
const (
	WarnNegativeMargin       = "negative margin: sell price does not cover cost"
	WarnCriticalMargin       = "margin below 10%"
	WarnLowMargin            = "margin below 15%"
	WarnCostExceedsSell      = "total cost exceeds sell price"
	WarnPartnerTotalNegative = "partner total is negative"
)

// SplitInput is the input of the profit split. TotalCost already includes any paper markup.
type SplitInput struct {
	SellPrice   decimal.Decimal
	TotalCost   decimal.Decimal
	PaperMarkup decimal.Decimal
}

// Split divides the spread between broker and partner. The whole spread is allocated: the partner
// receives the rounded half and the broker the remainder, and the paper markup is counted once, in
// the partner total.
func Split(in SplitInput) model.ProfitSplit {
	sell := RoundCents(in.SellPrice)
	cost := RoundCents(in.TotalCost)
	markup := RoundCents(in.PaperMarkup)

	gross := sell.Sub(cost)
	partnerShare := RoundCents(gross.Div(decimal.NewFromInt(2)))
	brokerShare := gross.Sub(partnerShare)

	marginPct := decimal.Zero
	if !sell.IsZero() {
		marginPct = RoundCents(gross.Div(sell).Mul(hundred))
	}

	out := model.ProfitSplit{
		SellPrice:     sell,
		TotalCost:     cost,
		PaperMarkup:   markup,
		GrossMargin:   gross,
		MarginPercent: marginPct,
		PartnerShare:  partnerShare,
		BrokerShare:   brokerShare,
		PartnerTotal:  partnerShare.Add(markup),
		BrokerTotal:   brokerShare,
		Warnings:      []string{},
	}

	switch {
	case gross.IsNegative():
		out.Warnings = append(out.Warnings, WarnNegativeMargin)
	case marginPct.LessThan(CriticalMarginPercent):
		out.Warnings = append(out.Warnings, WarnCriticalMargin)
	case marginPct.LessThan(HealthyMarginPercent):
		out.Warnings = append(out.Warnings, WarnLowMargin)
	}
	if cost.GreaterThan(sell) {
		out.Warnings = append(out.Warnings, WarnCostExceedsSell)
	}
	if out.PartnerTotal.IsNegative() {
		out.Warnings = append(out.Warnings, WarnPartnerTotalNegative)
	}
	out.IsHealthy = marginPct.GreaterThanOrEqual(HealthyMarginPercent) && !gross.IsNegative()
	return out
}

// SplitForPurchaseOrders derives split inputs from the broker's purchase orders. It reports false
// when the broker has not placed any order yet.
func SplitForPurchaseOrders(sell decimal.Decimal, pos []model.PurchaseOrder) (SplitInput, bool) {
	in := SplitInput{SellPrice: sell}
	found := false
	for i := range pos {
		if pos[i].OriginParty != model.PartyBroker {
			continue
		}
		found = true
		in.TotalCost = in.TotalCost.Add(pos[i].BuyCost)
		in.PaperMarkup = in.PaperMarkup.Add(pos[i].Markup())
	}
	return in, found
}

// SplitForEstimate derives split inputs from the tier-2 estimate.
func SplitForEstimate(sell decimal.Decimal, snap model.PricingSnapshot) SplitInput {
	return SplitInput{SellPrice: sell, TotalCost: snap.Tier2.TotalCost, PaperMarkup: snap.Tier2.PaperMarkup}
}
