//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "github.com/shopspring/decimal"

// Money fields are decimal.Decimal in memory and NUMERIC(12,2) in Postgres.
// Downstream consumers (PDF, email, UI) require plain JSON numbers, never quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecimalPtr returns a pointer to d.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
