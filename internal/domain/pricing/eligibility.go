package pricing

import "github.com/shopspring/decimal"

// CostOrderReason explains why a cost purchase order cannot be generated. Empty means eligible.
type CostOrderReason string

const (
	ReasonNone            CostOrderReason = ""
	ReasonQuantityMissing CostOrderReason = "quantity must be greater than 0"
	ReasonSizeUnresolved  CostOrderReason = "size is missing or not in the pricing table"
	ReasonSellPriceZero   CostOrderReason = "sell price must be greater than 0"
)

// CanGenerateCostOrder reports whether a job has the minimum data needed to auto-generate its cost
// purchase order. The first failing requirement is returned.
func CanGenerateCostOrder(quantity int, sizeName *string, sellPrice decimal.Decimal) (bool, CostOrderReason) {
	if quantity <= 0 {
		return false, ReasonQuantityMissing
	}
	if sizeName == nil {
		return false, ReasonSizeUnresolved
	}
	if _, ok := LookupSize(*sizeName); !ok {
		return false, ReasonSizeUnresolved
	}
	if !sellPrice.IsPositive() {
		return false, ReasonSellPriceZero
	}
	return true, ReasonNone
}
