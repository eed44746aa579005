package patient

import (
	"strings"
	"time"

	"github.com/HenryLodge/viro-sub000/internal/geo"
)

// Tier is the urgency classification assigned by external triage
type Tier string

const (
	TierCritical Tier = "critical"
	TierUrgent   Tier = "urgent"
	TierRoutine  Tier = "routine"
	TierSelfCare Tier = "self-care"
	TierPending  Tier = ""
)

// Valid reports whether t is one of the four assigned tiers
func (t Tier) Valid() bool {
	switch t {
	case TierCritical, TierUrgent, TierRoutine, TierSelfCare:
		return true
	default:
		return false
	}
}

// StatusPending marks an intake record that has not been triaged yet
const StatusPending = "pending"

// Node is a patient intake record as consumed by the analysis core.
// It is never mutated after it is read.
type Node struct {
	ID              string    `json:"id"`
	Name            *string   `json:"name,omitempty"`
	Age             *int      `json:"age,omitempty"`
	Symptoms        []string  `json:"symptoms"`
	SeverityFlags   []string  `json:"severity_flags"`
	RiskFactors     []string  `json:"risk_factors"`
	TravelHistory   string    `json:"travel_history,omitempty"`
	ExposureHistory string    `json:"exposure_history,omitempty"`
	Tier            Tier      `json:"tier,omitempty"`
	Lat             *float64  `json:"lat,omitempty"`
	Lng             *float64  `json:"lng,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	Status          string    `json:"status"`
}

// Location returns the patient's coordinates if both are present
func (n *Node) Location() (geo.Point, bool) {
	return geo.PointFrom(n.Lat, n.Lng)
}

// Eligible reports whether the patient takes part in graph construction:
// a tier must be assigned and the status must not be pending.
func (n *Node) Eligible() bool {
	return n.Tier.Valid() && !strings.EqualFold(n.Status, StatusPending)
}

// Terms returns the lowercased, de-duplicated union of symptoms and severity
// flags, in first-seen order.
func (n *Node) Terms() []string {
	seen := make(map[string]bool, len(n.Symptoms)+len(n.SeverityFlags))
	var terms []string
	for _, list := range [][]string{n.Symptoms, n.SeverityFlags} {
		for _, s := range list {
			term := strings.ToLower(strings.TrimSpace(s))
			if term == "" || seen[term] {
				continue
			}
			seen[term] = true
			terms = append(terms, term)
		}
	}
	return terms
}

// FilterEligible returns the eligible patients, preserving input order
func FilterEligible(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil && n.Eligible() {
			out = append(out, n)
		}
	}
	return out
}
