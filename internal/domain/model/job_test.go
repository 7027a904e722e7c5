package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

func validRequest() *CreateJobRequest {
	return &CreateJobRequest{
		Title:      "  Spring catalog  ",
		CustomerID: "cust-1",
		Quantity:   10000,
		SellPrice:  decimal.RequireFromString("750.00"),
	}
}

func TestCreateJobRequest_Validate_Defaults(t *testing.T) {
	req := validRequest()
	require.NoError(t, req.Validate())

	assert.Equal(t, "Spring catalog", req.Title)
	assert.Equal(t, PaperSelfSupplied, req.PaperSource)
	assert.Equal(t, RoutingPartnerIntermediary, req.RoutingType)
}

func TestCreateJobRequest_Validate_NormalizesEnums(t *testing.T) {
	req := validRequest()
	req.PaperSource = " customer_supplied "
	req.RoutingType = "third_party_vendor"
	require.NoError(t, req.Validate())

	assert.Equal(t, PaperCustomerSupplied, req.PaperSource)
	assert.Equal(t, RoutingThirdPartyVendor, req.RoutingType)
}

func TestCreateJobRequest_Validate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *CreateJobRequest)
		wantField string
	}{
		{name: "empty title", mutate: func(r *CreateJobRequest) { r.Title = "   " }, wantField: "title"},
		{name: "long title", mutate: func(r *CreateJobRequest) { r.Title = strings.Repeat("x", 256) }, wantField: "title"},
		{name: "missing customer", mutate: func(r *CreateJobRequest) { r.CustomerID = "" }, wantField: "customer_id"},
		{name: "zero quantity", mutate: func(r *CreateJobRequest) { r.Quantity = 0 }, wantField: "quantity"},
		{
			name:      "negative sell price",
			mutate:    func(r *CreateJobRequest) { r.SellPrice = decimal.NewFromInt(-1) },
			wantField: "sell_price",
		},
		{name: "bad paper source", mutate: func(r *CreateJobRequest) { r.PaperSource = "BARTER" }, wantField: "paper_source"},
		{name: "bad routing", mutate: func(r *CreateJobRequest) { r.RoutingType = "PIGEON" }, wantField: "routing_type"},
		{
			name:      "blank component",
			mutate:    func(r *CreateJobRequest) { r.Components = []JobComponentInput{{Name: " "}} },
			wantField: "components",
		},
		{name: "invalid specs", mutate: func(r *CreateJobRequest) { r.Specs = json.RawMessage(`{`) }, wantField: "specs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := req.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.wantField, apperrors.GetField(err))
		})
	}
}

func TestJob_CheckIdentity(t *testing.T) {
	cutover := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	base := "SM-1001"
	p1 := PathwayPartner

	tests := []struct {
		name    string
		job     Job
		cutover time.Time
		wantErr bool
	}{
		{name: "before cutover without identity", job: Job{CreatedAt: cutover.Add(-time.Hour)}, cutover: cutover},
		{name: "zero cutover disables check", job: Job{CreatedAt: cutover.Add(time.Hour)}},
		{
			name:    "after cutover complete",
			job:     Job{CreatedAt: cutover.Add(time.Hour), BaseJobID: &base, Pathway: &p1},
			cutover: cutover,
		},
		{
			name:    "after cutover missing base id",
			job:     Job{CreatedAt: cutover.Add(time.Hour), Pathway: &p1},
			cutover: cutover,
			wantErr: true,
		},
		{
			name:    "at cutover missing pathway",
			job:     Job{CreatedAt: cutover, BaseJobID: &base},
			cutover: cutover,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.CheckIdentity(tt.cutover)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsIntegrity(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFormatJobNo(t *testing.T) {
	assert.Equal(t, "J-2041", FormatJobNo(2041))
}

func TestFinancialSnapshot_MoneyIsJSONNumber(t *testing.T) {
	paid := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	job := &Job{
		ID:                    "job-1",
		JobNo:                 "J-1",
		Status:                JobStatusActive,
		SellPrice:             decimal.RequireFromString("529.83"),
		CustomerPaymentAmount: DecimalPtr(decimal.RequireFromString("529.83")),
		CustomerPaymentDate:   &paid,
	}

	raw, err := json.Marshal(NewFinancialSnapshot(job, nil))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.InDelta(t, 529.83, decoded["sell_price"], 0.0001)
	customer, ok := decoded["customer_payment"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 529.83, customer["amount"], 0.0001)
	assert.NotContains(t, decoded, "partner_payment")
}

func TestJob_PaymentStateRoundTrip(t *testing.T) {
	now := time.Now()
	recipient := "ap@printer.example"
	j := &Job{}
	j.ApplyPaymentState(PaymentState{
		CustomerDate:               &now,
		DownstreamInvoiceSentAt:    &now,
		DownstreamInvoiceRecipient: &recipient,
		Status:                     JobStatusActive,
	})

	state := j.PaymentState()
	assert.True(t, state.CustomerPaid())
	assert.False(t, state.PartnerPaid())
	assert.False(t, state.DownstreamPaid())
	assert.Equal(t, &recipient, state.DownstreamInvoiceRecipient)
}

func TestCreatePurchaseOrderRequest_Validate(t *testing.T) {
	vendor := "vendor-9"
	ok := &CreatePurchaseOrderRequest{
		JobID:          "job-1",
		OriginParty:    "impact",
		TargetParty:    "vendor",
		TargetVendorID: &vendor,
		BuyCost:        decimal.RequireFromString("120.50"),
	}
	require.NoError(t, ok.Validate())
	assert.Equal(t, PartyBroker, ok.OriginParty)

	missingVendor := &CreatePurchaseOrderRequest{JobID: "job-1", OriginParty: PartyBroker, TargetParty: PartyVendor}
	assert.Equal(t, "target_vendor_id", apperrors.GetField(missingVendor.Validate()))

	same := &CreatePurchaseOrderRequest{JobID: "job-1", OriginParty: PartyPartner, TargetParty: PartyPartner}
	assert.Equal(t, "target_party", apperrors.GetField(same.Validate()))

	negative := &CreatePurchaseOrderRequest{
		JobID:       "job-1",
		OriginParty: PartyPartner,
		TargetParty: PartyDownstream,
		BuyCost:     decimal.NewFromInt(-5),
	}
	assert.Equal(t, "buy_cost", apperrors.GetField(negative.Validate()))
}

func TestUpdatePurchaseOrderRequest_Validate(t *testing.T) {
	empty := &UpdatePurchaseOrderRequest{}
	assert.True(t, apperrors.IsValidation(empty.Validate()))

	cost := decimal.RequireFromString("99.99")
	assert.NoError(t, (&UpdatePurchaseOrderRequest{BuyCost: &cost}).Validate())
}
