//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitSource records which inputs produced a profit split.
type SplitSource string

const (
	// SplitSourceEstimate means the split was derived from the pricing-table estimate.
	SplitSourceEstimate SplitSource = "ESTIMATE"
	// SplitSourcePurchaseOrders means the split was derived from recorded purchase orders.
	SplitSourcePurchaseOrders SplitSource = "PURCHASE_ORDERS"
)

// ProfitSplit is the memoised pricing outcome for a job, one row per job.
type ProfitSplit struct {
	JobID         string          `json:"job_id"         db:"job_id"`
	SellPrice     decimal.Decimal `json:"sell_price"     db:"sell_price"`
	TotalCost     decimal.Decimal `json:"total_cost"     db:"total_cost"`
	PaperMarkup   decimal.Decimal `json:"paper_markup"   db:"paper_markup"`
	GrossMargin   decimal.Decimal `json:"gross_margin"   db:"gross_margin"`
	MarginPercent decimal.Decimal `json:"margin_percent" db:"margin_percent"`
	PartnerShare  decimal.Decimal `json:"partner_share"  db:"partner_share"`
	BrokerShare   decimal.Decimal `json:"broker_share"   db:"broker_share"`
	PartnerTotal  decimal.Decimal `json:"partner_total"  db:"partner_total"`
	BrokerTotal   decimal.Decimal `json:"broker_total"   db:"broker_total"`
	IsHealthy     bool            `json:"is_healthy"     db:"is_healthy"`
	Warnings      []string        `json:"warnings"       db:"warnings"`
	Source        SplitSource     `json:"source"         db:"source"`
	CalculatedAt  time.Time       `json:"calculated_at"  db:"calculated_at"`
}

// TierBreakdown is one tier of the cost cascade.
type TierBreakdown struct {
	PrintTotal  decimal.Decimal `json:"print_total"`
	PaperTotal  decimal.Decimal `json:"paper_total"`
	PaperMarkup decimal.Decimal `json:"paper_markup"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// PriceSuggestion is the broker-to-customer price guidance.
type PriceSuggestion struct {
	MinPrice       decimal.Decimal `json:"min_price"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
}

// PricingSnapshot is the three-tier pricing result for a job or quote.
type PricingSnapshot struct {
	SizeName    *string         `json:"size_name,omitempty"`
	Quantity    int             `json:"quantity"`
	PaperSource PaperSource     `json:"paper_source"`
	PrintRate   decimal.Decimal `json:"print_rate"`
	PaperRate   decimal.Decimal `json:"paper_rate"`
	Tier1       TierBreakdown   `json:"tier1"`
	Tier2       TierBreakdown   `json:"tier2"`
	Tier3       PriceSuggestion `json:"tier3"`
}
