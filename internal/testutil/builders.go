package testutil

import (
	"encoding/json"
	"time"

	"github.com/target/printbroker-api/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest objects for testing.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest returns a builder for a 10,000 piece 6 x 9 partner-routed job selling at 750.00.
func NewJobRequest() *JobRequestBuilder {
	size := "6 x 9"
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			Title:       "Spring mailer",
			CustomerID:  "cust-100",
			Quantity:    10000,
			SellPrice:   Money("750.00"),
			SizeName:    &size,
			PaperSource: model.PaperSelfSupplied,
			RoutingType: model.RoutingPartnerIntermediary,
		},
	}
}

// WithTitle sets the job title.
func (b *JobRequestBuilder) WithTitle(title string) *JobRequestBuilder {
	b.req.Title = title
	return b
}

// WithCustomer sets the customer id.
func (b *JobRequestBuilder) WithCustomer(id string) *JobRequestBuilder {
	b.req.CustomerID = id
	return b
}

// WithQuantity sets the piece count.
func (b *JobRequestBuilder) WithQuantity(q int) *JobRequestBuilder {
	b.req.Quantity = q
	return b
}

// WithSellPrice sets the customer price from a decimal literal.
func (b *JobRequestBuilder) WithSellPrice(s string) *JobRequestBuilder {
	b.req.SellPrice = Money(s)
	return b
}

// WithSize sets the size name; an empty string clears it.
func (b *JobRequestBuilder) WithSize(size string) *JobRequestBuilder {
	if size == "" {
		b.req.SizeName = nil
		return b
	}
	b.req.SizeName = &size
	return b
}

// WithPaperSource sets who supplies paper.
func (b *JobRequestBuilder) WithPaperSource(p model.PaperSource) *JobRequestBuilder {
	b.req.PaperSource = p
	return b
}

// WithVendor routes the job to a third-party vendor.
func (b *JobRequestBuilder) WithVendor(vendorID string) *JobRequestBuilder {
	b.req.RoutingType = model.RoutingThirdPartyVendor
	b.req.VendorID = &vendorID
	return b
}

// WithComponent appends a component, optionally owned by a vendor.
func (b *JobRequestBuilder) WithComponent(name, vendorID string) *JobRequestBuilder {
	c := model.JobComponentInput{Name: name}
	if vendorID != "" {
		c.VendorID = &vendorID
		c.OwnedByVendor = true
	}
	b.req.Components = append(b.req.Components, c)
	return b
}

// WithMailFormat sets the mail format used for the base id type code.
func (b *JobRequestBuilder) WithMailFormat(f string) *JobRequestBuilder {
	b.req.MailFormat = &f
	return b
}

// WithJobType sets the job type used for the base id type code.
func (b *JobRequestBuilder) WithJobType(jt string) *JobRequestBuilder {
	b.req.JobType = &jt
	return b
}

// WithExternalID links the job to an external order.
func (b *JobRequestBuilder) WithExternalID(id string) *JobRequestBuilder {
	b.req.ExternalID = &id
	return b
}

// WithDates sets the due and mail dates.
func (b *JobRequestBuilder) WithDates(due, mail time.Time) *JobRequestBuilder {
	b.req.DueDate = &due
	b.req.MailDate = &mail
	return b
}

// WithSpecsString sets free-form specs.
func (b *JobRequestBuilder) WithSpecsString(specs string) *JobRequestBuilder {
	b.req.Specs = json.RawMessage(specs)
	return b
}

// Build returns a copy of the request.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	req := *b.req
	req.Components = append([]model.JobComponentInput(nil), b.req.Components...)
	return &req
}

// PurchaseOrderRequest returns a create request for a purchase order between two parties.
func PurchaseOrderRequest(jobID string, origin, target model.Party, buyCost string) *model.CreatePurchaseOrderRequest {
	return &model.CreatePurchaseOrderRequest{
		JobID:       jobID,
		OriginParty: origin,
		TargetParty: target,
		BuyCost:     Money(buyCost),
	}
}

// PartnerChainOrders returns the broker-to-partner and partner-to-downstream orders of the reference
// 10,000 piece 6 x 9 job.
func PartnerChainOrders(jobID string) []*model.CreatePurchaseOrderRequest {
	brokerToPartner := PurchaseOrderRequest(jobID, model.PartyBroker, model.PartyPartner, "529.83")
	brokerToPartner.PaperCost = MoneyPtr("154.60")
	brokerToPartner.PaperMarkup = MoneyPtr("27.83")
	partnerToDownstream := PurchaseOrderRequest(jobID, model.PartyPartner, model.PartyDownstream, "502.00")
	return []*model.CreatePurchaseOrderRequest{brokerToPartner, partnerToDownstream}
}

// JobWithPayments returns an in-memory job whose payment columns reflect the given state.
func JobWithPayments(id string, s model.PaymentState) *model.Job {
	size := "6 x 9"
	base := "GEN-1001"
	pathway := model.PathwayPartner
	j := &model.Job{
		ID:          id,
		JobNumber:   1001,
		JobNo:       model.FormatJobNo(1001),
		BaseJobID:   &base,
		Pathway:     &pathway,
		RoutingType: model.RoutingPartnerIntermediary,
		Title:       "Spring mailer",
		CustomerID:  "cust-100",
		Quantity:    10000,
		SizeName:    &size,
		PaperSource: model.PaperSelfSupplied,
		SellPrice:   Money("750.00"),
		CreatedAt:   TestTime(),
		UpdatedAt:   TestTime(),
	}
	if s.Status == "" {
		s.Status = model.JobStatusActive
	}
	j.ApplyPaymentState(s)
	return j
}
