package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/target/printbroker-api/internal/domain/model"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

var (
	thousand = decimal.NewFromInt(1000)
	half     = decimal.RequireFromString("0.5")

	// PaperMarkupRate is the intermediary's uplift on paper it supplies.
	PaperMarkupRate = decimal.RequireFromString("0.18")
	// TargetMargin is the broker margin used for the suggested customer price.
	TargetMargin = decimal.RequireFromString("0.25")
)

// RoundCents rounds half-up to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Shift(2).Add(half).Floor().Shift(-2)
}

// Input is the pricing request for one job or quote.
type Input struct {
	SizeName        *string           `json:"size_name,omitempty"`
	Quantity        int               `json:"quantity"`
	PaperSource     model.PaperSource `json:"paper_source,omitempty"`
	CustomPrintRate *decimal.Decimal  `json:"custom_print_rate,omitempty"`
	CustomPaperRate *decimal.Decimal  `json:"custom_paper_rate,omitempty"`
}

// InputForJob derives the pricing input of a persisted job.
func InputForJob(j *model.Job) Input {
	return Input{SizeName: j.SizeName, Quantity: j.Quantity, PaperSource: j.PaperSource}
}

func (in Input) resolveRates() (printRate, paperRate decimal.Decimal, err error) {
	var (
		size     SizeRates
		haveSize bool
	)
	if in.SizeName != nil && strings.TrimSpace(*in.SizeName) != "" {
		size, haveSize = LookupSize(*in.SizeName)
	}
	if !haveSize && in.CustomPrintRate == nil && in.CustomPaperRate == nil {
		if in.SizeName != nil && strings.TrimSpace(*in.SizeName) != "" {
			return decimal.Zero, decimal.Zero, apperrors.ValidationField("size_name",
				fmt.Sprintf("size %q is not in the pricing table and no custom rates were given", *in.SizeName))
		}
		return decimal.Zero, decimal.Zero, apperrors.ValidationField("size_name",
			"a standard size or custom rates are required")
	}

	printRate, paperRate = size.PrintPerM, size.PaperPerM
	if in.CustomPrintRate != nil {
		printRate = *in.CustomPrintRate
	}
	if in.CustomPaperRate != nil {
		paperRate = *in.CustomPaperRate
	}
	if printRate.IsNegative() {
		return decimal.Zero, decimal.Zero, apperrors.ValidationField("custom_print_rate", "print rate must be non-negative")
	}
	if paperRate.IsNegative() {
		return decimal.Zero, decimal.Zero, apperrors.ValidationField("custom_paper_rate", "paper rate must be non-negative")
	}
	return printRate, paperRate, nil
}

// Calculate computes the three-tier cost cascade. Every monetary field is rounded half-up to cents
// as it is produced.
func Calculate(in Input) (model.PricingSnapshot, error) {
	if in.Quantity <= 0 {
		return model.PricingSnapshot{}, apperrors.ValidationField("quantity", "quantity must be greater than 0")
	}
	source := model.PaperSource(strings.ToUpper(strings.TrimSpace(string(in.PaperSource))))
	if source == "" {
		source = model.PaperSelfSupplied
	}
	if !source.Valid() {
		return model.PricingSnapshot{}, apperrors.ValidationField("paper_source",
			fmt.Sprintf("invalid paper_source %q", in.PaperSource))
	}

	printRate, paperRate, err := in.resolveRates()
	if err != nil {
		return model.PricingSnapshot{}, err
	}

	thousands := decimal.NewFromInt(int64(in.Quantity)).Div(thousand)

	tier1 := model.TierBreakdown{PrintTotal: RoundCents(printRate.Mul(thousands))}
	if source != model.PaperCustomerSupplied {
		tier1.PaperTotal = RoundCents(paperRate.Mul(thousands))
	}
	tier1.TotalCost = RoundCents(tier1.PrintTotal.Add(tier1.PaperTotal))

	tier2 := model.TierBreakdown{PrintTotal: tier1.PrintTotal}
	switch source {
	case model.PaperSelfSupplied:
		tier2.PaperMarkup = RoundCents(paperRate.Mul(PaperMarkupRate).Mul(thousands))
		tier2.PaperTotal = RoundCents(paperRate.Mul(decimal.NewFromInt(1).Add(PaperMarkupRate)).Mul(thousands))
	case model.PaperVendorSupplied:
		tier2.PaperTotal = tier1.PaperTotal
	case model.PaperCustomerSupplied:
		// customer stock carries no paper cost at any tier
	}
	tier2.TotalCost = RoundCents(tier2.PrintTotal.Add(tier2.PaperTotal))

	tier3 := model.PriceSuggestion{
		MinPrice:       tier2.TotalCost,
		SuggestedPrice: RoundCents(tier2.TotalCost.Div(decimal.NewFromInt(1).Sub(TargetMargin))),
	}

	var size *string
	if in.SizeName != nil {
		if r, ok := LookupSize(*in.SizeName); ok {
			size = &r.Name
		} else {
			trimmed := strings.TrimSpace(*in.SizeName)
			size = &trimmed
		}
	}

	return model.PricingSnapshot{
		SizeName:    size,
		Quantity:    in.Quantity,
		PaperSource: source,
		PrintRate:   printRate,
		PaperRate:   paperRate,
		Tier1:       tier1,
		Tier2:       tier2,
		Tier3:       tier3,
	}, nil
}
