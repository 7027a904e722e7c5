package payment

import (
	"github.com/shopspring/decimal"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/domain/pricing"
)

// CustomerAmount is the override when given, else the job sell price.
func CustomerAmount(sell decimal.Decimal, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return pricing.RoundCents(*override)
	}
	return pricing.RoundCents(sell)
}

// PartnerAmount is what the broker owes the partner: the partner's cost charge plus its spread share.
func PartnerAmount(split *model.ProfitSplit, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return pricing.RoundCents(*override)
	}
	if split == nil {
		return decimal.Zero
	}
	return split.TotalCost.Add(split.PartnerShare)
}

// DownstreamAmount prefers the partner-to-downstream purchase orders and falls back to the tier-1
// estimate when none exist.
func DownstreamAmount(pos []model.PurchaseOrder, tier1Total decimal.Decimal, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return pricing.RoundCents(*override)
	}
	total := decimal.Zero
	found := false
	for i := range pos {
		if pos[i].OriginParty == model.PartyPartner && pos[i].TargetParty == model.PartyDownstream {
			total = total.Add(pos[i].BuyCost)
			found = true
		}
	}
	if found {
		return pricing.RoundCents(total)
	}
	return pricing.RoundCents(tier1Total)
}
