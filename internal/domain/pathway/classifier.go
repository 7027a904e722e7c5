// Package pathway classifies jobs into the P1/P2/P3 routing pathways.
package pathway

import (
	"strings"

	"github.com/target/printbroker-api/internal/domain/model"
)

// Signals carries the vendor associations known for a job at classification time.
type Signals struct {
	// PurchaseOrderVendors holds target vendor ids of orders placed with external vendors.
	PurchaseOrderVendors []string
	// ComponentVendors holds vendor ids of components explicitly owned by a vendor.
	ComponentVendors []string
	// AssignedVendor is the job-level vendor, if any.
	AssignedVendor *string
}

// Strategy resolves a distinct vendor count, or reports no signal.
type Strategy func(Signals) (count int, ok bool)

// DefaultStrategies is the vendor counting fallback chain, highest priority first.
var DefaultStrategies = []Strategy{
	FromPurchaseOrders,
	FromComponents,
	FromAssignedVendor,
}

// FromPurchaseOrders counts distinct vendors among external-vendor purchase orders.
func FromPurchaseOrders(s Signals) (int, bool) {
	n := distinct(s.PurchaseOrderVendors)
	return n, n > 0
}

// FromComponents counts distinct vendors among vendor-owned components.
func FromComponents(s Signals) (int, bool) {
	n := distinct(s.ComponentVendors)
	return n, n > 0
}

// FromAssignedVendor always answers: a single vendor whether or not one is assigned.
func FromAssignedVendor(Signals) (int, bool) {
	return 1, true
}

// DistinctVendorCount runs the strategies in order and returns the first definitive count.
func DistinctVendorCount(s Signals, strategies ...Strategy) int {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	for _, strategy := range strategies {
		if n, ok := strategy(s); ok {
			return n
		}
	}
	return 1
}

// Classify maps a routing choice and vendor signals to a pathway. The partner route is always P1
// regardless of attached vendors.
func Classify(routing model.RoutingType, s Signals) model.Pathway {
	if routing == model.RoutingPartnerIntermediary {
		return model.PathwayPartner
	}
	if DistinctVendorCount(s) > 1 {
		return model.PathwayMultiVendor
	}
	return model.PathwaySingleVendor
}

// SignalsFromRequest builds signals from a creation request. No purchase orders exist yet.
func SignalsFromRequest(req *model.CreateJobRequest) Signals {
	s := Signals{AssignedVendor: req.VendorID}
	for _, c := range req.Components {
		if c.OwnedByVendor && c.VendorID != nil {
			s.ComponentVendors = append(s.ComponentVendors, *c.VendorID)
		}
	}
	return s
}

// SignalsFromJob builds signals from a persisted job, its components and its purchase orders.
func SignalsFromJob(j *model.Job, pos []model.PurchaseOrder) Signals {
	s := Signals{AssignedVendor: j.VendorID}
	for i := range pos {
		if pos[i].TargetsExternalVendor() {
			s.PurchaseOrderVendors = append(s.PurchaseOrderVendors, *pos[i].TargetVendorID)
		}
	}
	for _, c := range j.Components {
		if c.OwnedByVendor && c.VendorID != nil {
			s.ComponentVendors = append(s.ComponentVendors, *c.VendorID)
		}
	}
	return s
}

func distinct(ids []string) int {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		seen[id] = struct{}{}
	}
	return len(seen)
}
