//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

// Party identifies a participant in the multi-party print chain.
type Party string

const (
	// PartyBroker is the broker that owns the customer relationship.
	PartyBroker Party = "IMPACT"
	// PartyPartner is the print partner acting as intermediary.
	PartyPartner Party = "BRADFORD"
	// PartyDownstream is the partner's downstream production printer.
	PartyDownstream Party = "JD"
	// PartyVendor is any external production vendor.
	PartyVendor Party = "VENDOR"
	// PartyCustomer is the end customer.
	PartyCustomer Party = "CUSTOMER"
)

// Valid reports whether the party is known.
func (p Party) Valid() bool {
	switch p {
	case PartyBroker, PartyPartner, PartyDownstream, PartyVendor, PartyCustomer:
		return true
	default:
		return false
	}
}

// PurchaseOrder is a cost commitment from one party to another for a job.
type PurchaseOrder struct {
	ID             string           `json:"id"                         db:"id"`
	JobID          string           `json:"job_id"                     db:"job_id"`
	OriginParty    Party            `json:"origin_party"               db:"origin_party"`
	TargetParty    Party            `json:"target_party"               db:"target_party"`
	TargetVendorID *string          `json:"target_vendor_id,omitempty" db:"target_vendor_id"`
	BuyCost        decimal.Decimal  `json:"buy_cost"                   db:"buy_cost"`
	PaperCost      *decimal.Decimal `json:"paper_cost,omitempty"       db:"paper_cost"`
	PaperMarkup    *decimal.Decimal `json:"paper_markup,omitempty"     db:"paper_markup"`
	Description    *string          `json:"description,omitempty"      db:"description"`
	CreatedAt      time.Time        `json:"created_at"                 db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"                 db:"updated_at"`
}

// TargetsExternalVendor reports whether the order is placed with an identified external vendor.
func (p *PurchaseOrder) TargetsExternalVendor() bool {
	return p.TargetParty == PartyVendor && p.TargetVendorID != nil && strings.TrimSpace(*p.TargetVendorID) != ""
}

// Markup returns the paper markup carried by the order, or zero.
func (p *PurchaseOrder) Markup() decimal.Decimal {
	if p.PaperMarkup == nil {
		return decimal.Zero
	}
	return *p.PaperMarkup
}

// CreatePurchaseOrderRequest carries the fields for a new purchase order.
type CreatePurchaseOrderRequest struct {
	JobID          string           `json:"-"`
	OriginParty    Party            `json:"origin_party"`
	TargetParty    Party            `json:"target_party"`
	TargetVendorID *string          `json:"target_vendor_id,omitempty"`
	BuyCost        decimal.Decimal  `json:"buy_cost"`
	PaperCost      *decimal.Decimal `json:"paper_cost,omitempty"`
	PaperMarkup    *decimal.Decimal `json:"paper_markup,omitempty"`
	Description    *string          `json:"description,omitempty"`
}

// Validate normalizes party codes and checks amounts.
func (r *CreatePurchaseOrderRequest) Validate() error {
	if strings.TrimSpace(r.JobID) == "" {
		return apperrors.ValidationField("job_id", "job_id is required")
	}
	r.OriginParty = Party(strings.ToUpper(strings.TrimSpace(string(r.OriginParty))))
	r.TargetParty = Party(strings.ToUpper(strings.TrimSpace(string(r.TargetParty))))
	if !r.OriginParty.Valid() {
		return apperrors.ValidationField("origin_party", fmt.Sprintf("invalid origin_party %q", r.OriginParty))
	}
	if !r.TargetParty.Valid() {
		return apperrors.ValidationField("target_party", fmt.Sprintf("invalid target_party %q", r.TargetParty))
	}
	if r.OriginParty == r.TargetParty {
		return apperrors.ValidationField("target_party", "origin and target party must differ")
	}
	if r.TargetParty == PartyVendor && (r.TargetVendorID == nil || strings.TrimSpace(*r.TargetVendorID) == "") {
		return apperrors.ValidationField("target_vendor_id", "target_vendor_id is required when targeting a vendor")
	}
	return validateCosts(r.BuyCost, r.PaperCost, r.PaperMarkup)
}

// UpdatePurchaseOrderRequest carries optional replacement values for a purchase order.
type UpdatePurchaseOrderRequest struct {
	TargetVendorID *string          `json:"target_vendor_id,omitempty"`
	BuyCost        *decimal.Decimal `json:"buy_cost,omitempty"`
	PaperCost      *decimal.Decimal `json:"paper_cost,omitempty"`
	PaperMarkup    *decimal.Decimal `json:"paper_markup,omitempty"`
	Description    *string          `json:"description,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r *UpdatePurchaseOrderRequest) HasUpdates() bool {
	return r.TargetVendorID != nil || r.BuyCost != nil || r.PaperCost != nil ||
		r.PaperMarkup != nil || r.Description != nil
}

// Validate checks the replacement values.
func (r *UpdatePurchaseOrderRequest) Validate() error {
	if !r.HasUpdates() {
		return apperrors.Validation("at least one field must be provided")
	}
	buy := decimal.Zero
	if r.BuyCost != nil {
		buy = *r.BuyCost
	}
	return validateCosts(buy, r.PaperCost, r.PaperMarkup)
}

func validateCosts(buy decimal.Decimal, paper, markup *decimal.Decimal) error {
	if buy.IsNegative() {
		return apperrors.ValidationField("buy_cost", "buy_cost must be non-negative")
	}
	if paper != nil && paper.IsNegative() {
		return apperrors.ValidationField("paper_cost", "paper_cost must be non-negative")
	}
	if markup != nil && markup.IsNegative() {
		return apperrors.ValidationField("paper_markup", "paper_markup must be non-negative")
	}
	return nil
}
