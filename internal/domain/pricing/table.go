// Package pricing implements the three-tier cost cascade, the broker/partner profit split
// and the cost-order eligibility predicate. Everything here is pure.
package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SizeRates is the static reference data for one standard size. All values are per thousand pieces.
type SizeRates struct {
	Name       string
	PrintPerM  decimal.Decimal
	PaperPerM  decimal.Decimal
	WeightPerM decimal.Decimal
}

func rates(name, printPerM, paperPerM, weightPerM string) SizeRates {
	return SizeRates{
		Name:       name,
		PrintPerM:  decimal.RequireFromString(printPerM),
		PaperPerM:  decimal.RequireFromString(paperPerM),
		WeightPerM: decimal.RequireFromString(weightPerM),
	}
}

var standardSizes = func() map[string]SizeRates {
	entries := []SizeRates{
		rates("4 x 6", "18.40", "7.20", "9.1"),
		rates("5.5 x 8.5", "26.90", "11.83", "15.2"),
		rates("6 x 9", "34.74", "15.46", "19.8"),
		rates("6 x 11", "39.52", "18.80", "24.1"),
		rates("8.5 x 11", "52.60", "27.35", "35.0"),
		rates("9 x 12", "58.15", "31.10", "39.9"),
		rates("11 x 17", "91.30", "54.70", "70.2"),
	}
	out := make(map[string]SizeRates, len(entries))
	for _, e := range entries {
		out[NormalizeSize(e.Name)] = e
	}
	return out
}()

// NormalizeSize canonicalizes size names so "6x9", "6 X 9" and " 6 x 9 " are the same key.
func NormalizeSize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "×", "x")
	s = strings.ReplaceAll(s, "\"", "")
	return s
}

// LookupSize resolves a size name against the static pricing table.
func LookupSize(name string) (SizeRates, bool) {
	if strings.TrimSpace(name) == "" {
		return SizeRates{}, false
	}
	r, ok := standardSizes[NormalizeSize(name)]
	return r, ok
}

// StandardSizes returns every table entry ordered by name.
func StandardSizes() []SizeRates {
	out := make([]SizeRates, 0, len(standardSizes))
	for _, r := range standardSizes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
