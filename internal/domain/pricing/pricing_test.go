package pricing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/printbroker-api/internal/domain/model"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func assertMoney(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", msg, want, got.String())
}

func TestRoundCents_HalfUp(t *testing.T) {
	tests := map[string]string{
		"27.828":  "27.83",
		"182.428": "182.43",
		"0.005":   "0.01",
		"0.004":   "0",
		"1.115":   "1.12",
		"2.5":     "2.5",
		"-0.125":  "-0.12",
	}
	for in, want := range tests {
		assertMoney(t, want, RoundCents(d(in)), in)
	}
}

func TestLookupSize_Normalizes(t *testing.T) {
	for _, name := range []string{"6 x 9", "6x9", " 6 X 9 ", "6×9"} {
		r, ok := LookupSize(name)
		require.Truef(t, ok, "size %q should resolve", name)
		assert.Equal(t, "6 x 9", r.Name)
		assertMoney(t, "34.74", r.PrintPerM, "print")
		assertMoney(t, "15.46", r.PaperPerM, "paper")
		assertMoney(t, "19.8", r.WeightPerM, "weight")
	}
	_, ok := LookupSize("7 x 13")
	assert.False(t, ok)
	_, ok = LookupSize("")
	assert.False(t, ok)
	assert.NotEmpty(t, StandardSizes())
}

func TestCalculate_ReferenceValues(t *testing.T) {
	snap, err := Calculate(Input{SizeName: strPtr("6 x 9"), Quantity: 10000, PaperSource: model.PaperSelfSupplied})
	require.NoError(t, err)

	assertMoney(t, "347.40", snap.Tier1.PrintTotal, "tier1 print")
	assertMoney(t, "154.60", snap.Tier1.PaperTotal, "tier1 paper")
	assertMoney(t, "502.00", snap.Tier1.TotalCost, "tier1 total")

	assertMoney(t, "347.40", snap.Tier2.PrintTotal, "tier2 print")
	assertMoney(t, "27.83", snap.Tier2.PaperMarkup, "tier2 markup")
	assertMoney(t, "182.43", snap.Tier2.PaperTotal, "tier2 paper")
	assertMoney(t, "529.83", snap.Tier2.TotalCost, "tier2 total")

	assertMoney(t, "529.83", snap.Tier3.MinPrice, "tier3 min")
	assertMoney(t, "706.44", snap.Tier3.SuggestedPrice, "tier3 suggested")
	assert.Equal(t, "6 x 9", *snap.SizeName)
}

func TestCalculate_PaperSources(t *testing.T) {
	t.Run("vendor supplied passes paper through", func(t *testing.T) {
		snap, err := Calculate(Input{SizeName: strPtr("6x9"), Quantity: 10000, PaperSource: model.PaperVendorSupplied})
		require.NoError(t, err)
		assert.True(t, snap.Tier2.PaperMarkup.IsZero())
		assertMoney(t, "154.60", snap.Tier2.PaperTotal, "tier2 paper")
		assertMoney(t, "502.00", snap.Tier2.TotalCost, "tier2 total")
	})

	t.Run("customer supplied zeroes paper", func(t *testing.T) {
		snap, err := Calculate(Input{SizeName: strPtr("6x9"), Quantity: 10000, PaperSource: "customer_supplied"})
		require.NoError(t, err)
		assert.Equal(t, model.PaperCustomerSupplied, snap.PaperSource)
		assert.True(t, snap.Tier1.PaperTotal.IsZero())
		assert.True(t, snap.Tier2.PaperTotal.IsZero())
		assertMoney(t, "347.40", snap.Tier2.TotalCost, "tier2 total")
	})

	t.Run("default is self supplied", func(t *testing.T) {
		snap, err := Calculate(Input{SizeName: strPtr("6x9"), Quantity: 1000})
		require.NoError(t, err)
		assert.Equal(t, model.PaperSelfSupplied, snap.PaperSource)
	})
}

func TestCalculate_CustomRates(t *testing.T) {
	printRate := d("40")
	snap, err := Calculate(Input{SizeName: strPtr("6x9"), Quantity: 2500, CustomPrintRate: &printRate})
	require.NoError(t, err)
	assertMoney(t, "100.00", snap.Tier1.PrintTotal, "custom print wins")
	assertMoney(t, "38.65", snap.Tier1.PaperTotal, "table paper kept")

	paperRate := d("10")
	snap, err = Calculate(Input{SizeName: strPtr("bespoke"), Quantity: 1000, CustomPaperRate: &paperRate})
	require.NoError(t, err)
	assert.True(t, snap.Tier1.PrintTotal.IsZero())
	assertMoney(t, "10.00", snap.Tier1.PaperTotal, "custom paper")
	assertMoney(t, "1.80", snap.Tier2.PaperMarkup, "markup on custom paper")
}

func TestCalculate_ValidationErrors(t *testing.T) {
	negative := d("-1")
	tests := []struct {
		name      string
		in        Input
		wantField string
	}{
		{name: "zero quantity", in: Input{SizeName: strPtr("6x9")}, wantField: "quantity"},
		{name: "no size no rates", in: Input{Quantity: 10}, wantField: "size_name"},
		{name: "unknown size no rates", in: Input{SizeName: strPtr("7x13"), Quantity: 10}, wantField: "size_name"},
		{name: "bad paper source", in: Input{SizeName: strPtr("6x9"), Quantity: 10, PaperSource: "X"}, wantField: "paper_source"},
		{
			name:      "negative custom rate",
			in:        Input{Quantity: 10, CustomPrintRate: &negative},
			wantField: "custom_print_rate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.in)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.wantField, apperrors.GetField(err))
		})
	}
}

func TestSplit_ReferenceJob(t *testing.T) {
	s := Split(SplitInput{SellPrice: d("750.00"), TotalCost: d("529.83"), PaperMarkup: d("27.83")})

	assertMoney(t, "220.17", s.GrossMargin, "gross")
	assertMoney(t, "110.09", s.PartnerShare, "partner share")
	assertMoney(t, "110.08", s.BrokerShare, "broker share")
	assertMoney(t, "137.92", s.PartnerTotal, "partner total")
	assertMoney(t, "110.08", s.BrokerTotal, "broker total")
	assertMoney(t, "29.36", s.MarginPercent, "margin percent")
	assert.True(t, s.IsHealthy)
	assert.Empty(t, s.Warnings)
}

func TestSplit_SpreadFullyAllocated(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		sell := decimal.New(rng.Int63n(2_000_000), -2)
		cost := decimal.New(rng.Int63n(2_000_000), -2)
		markup := decimal.New(rng.Int63n(50_000), -2)
		t.Run(fmt.Sprintf("%s-%s-%s", sell, cost, markup), func(t *testing.T) {
			s := Split(SplitInput{SellPrice: sell, TotalCost: cost, PaperMarkup: markup})
			spread := sell.Sub(cost)

			assert.True(t, s.PartnerShare.Add(s.BrokerTotal).Equal(spread), "shares must sum to the spread")
			assert.True(t, s.PartnerTotal.Sub(markup).Equal(s.PartnerShare), "markup counted once in partner total")
			diff := s.PartnerShare.Sub(s.BrokerShare).Abs()
			assert.True(t, diff.LessThanOrEqual(d("0.01")), "halves differ by at most a cent")
		})
	}
}

func TestSplit_Warnings(t *testing.T) {
	tests := []struct {
		name        string
		in          SplitInput
		want        []string
		wantHealthy bool
	}{
		{
			name: "negative margin",
			in:   SplitInput{SellPrice: d("100"), TotalCost: d("120")},
			want: []string{WarnNegativeMargin, WarnCostExceedsSell, WarnPartnerTotalNegative},
		},
		{
			name: "critical margin",
			in:   SplitInput{SellPrice: d("100"), TotalCost: d("95")},
			want: []string{WarnCriticalMargin},
		},
		{
			name: "low margin",
			in:   SplitInput{SellPrice: d("100"), TotalCost: d("88")},
			want: []string{WarnLowMargin},
		},
		{
			name:        "healthy at threshold",
			in:          SplitInput{SellPrice: d("100"), TotalCost: d("85")},
			want:        []string{},
			wantHealthy: true,
		},
		{
			name: "negative spread offset by markup",
			in:   SplitInput{SellPrice: d("100"), TotalCost: d("101"), PaperMarkup: d("5")},
			want: []string{WarnNegativeMargin, WarnCostExceedsSell},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Split(tt.in)
			assert.Equal(t, tt.want, s.Warnings)
			assert.Equal(t, tt.wantHealthy, s.IsHealthy)
		})
	}
}

func TestSplit_ZeroSellPrice(t *testing.T) {
	s := Split(SplitInput{SellPrice: decimal.Zero, TotalCost: decimal.Zero})
	assert.True(t, s.MarginPercent.IsZero())
	assert.False(t, s.IsHealthy)
	assert.Contains(t, s.Warnings, WarnCriticalMargin)
}

func TestSplitForPurchaseOrders(t *testing.T) {
	markup := d("27.83")
	pos := []model.PurchaseOrder{
		{OriginParty: model.PartyBroker, TargetParty: model.PartyPartner, BuyCost: d("529.83"), PaperMarkup: &markup},
		{OriginParty: model.PartyPartner, TargetParty: model.PartyDownstream, BuyCost: d("502.00")},
	}
	in, ok := SplitForPurchaseOrders(d("750"), pos)
	require.True(t, ok)
	assertMoney(t, "529.83", in.TotalCost, "broker cost only")
	assertMoney(t, "27.83", in.PaperMarkup, "markup")

	_, ok = SplitForPurchaseOrders(d("750"), pos[1:])
	assert.False(t, ok)
}

func TestCanGenerateCostOrder(t *testing.T) {
	tests := []struct {
		name   string
		qty    int
		size   *string
		sell   decimal.Decimal
		wantOK bool
		reason CostOrderReason
	}{
		{name: "eligible", qty: 5000, size: strPtr("6 x 9"), sell: d("400"), wantOK: true},
		{name: "no quantity", qty: 0, size: strPtr("6 x 9"), sell: d("400"), reason: ReasonQuantityMissing},
		{name: "no size", qty: 5000, sell: d("400"), reason: ReasonSizeUnresolved},
		{name: "unknown size", qty: 5000, size: strPtr("2 x 2"), sell: d("400"), reason: ReasonSizeUnresolved},
		{name: "zero sell", qty: 5000, size: strPtr("6 x 9"), sell: decimal.Zero, reason: ReasonSellPriceZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := CanGenerateCostOrder(tt.qty, tt.size, tt.sell)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
