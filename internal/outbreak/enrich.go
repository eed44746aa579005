package outbreak

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/HenryLodge/viro-sub000/internal/geo"
	"github.com/HenryLodge/viro-sub000/internal/graph"
	"github.com/HenryLodge/viro-sub000/internal/patient"
)

// Cluster is a detected cluster with its derived outbreak attributes
type Cluster struct {
	ID                  string   `json:"id"`
	PatientIDs          []string `json:"patient_ids"`
	Size                int      `json:"size"`
	AvgEdgeWeight       float64  `json:"avg_edge_weight"`
	RecencyFactor       float64  `json:"recency_factor"`
	SeverityScore       float64  `json:"severity_score"`
	SharedSymptoms      []string `json:"shared_symptoms"`
	GeographicSpread    []string `json:"geographic_spread"`
	TravelCommonalities []string `json:"travel_commonalities"`
	Alert               bool     `json:"alert"`
}

// Enrich scores each raw cluster and fills in its descriptive attributes.
// Members missing from lookup count toward size but contribute no data.
func Enrich(raw []graph.Cluster, lookup map[string]*patient.Node, cfg *Config) []Cluster {
	now := cfg.now()
	loc := cfg.locator()

	out := make([]Cluster, 0, len(raw))
	for _, rc := range raw {
		members := make([]*patient.Node, 0, len(rc.Members))
		for _, id := range rc.Members {
			if p := lookup[id]; p != nil {
				members = append(members, p)
			}
		}

		size := len(rc.Members)
		recency := recencyFactor(members, now, cfg)
		severity := round(float64(size)*rc.AverageWeight()*recency, 3)

		out = append(out, Cluster{
			ID:                  rc.ID,
			PatientIDs:          rc.Members,
			Size:                size,
			AvgEdgeWeight:       round(rc.AverageWeight(), 3),
			RecencyFactor:       round(recency, 4),
			SeverityScore:       severity,
			SharedSymptoms:      sharedSymptoms(members, size, cfg.SharedSymptomRatio),
			GeographicSpread:    geographicSpread(members, loc),
			TravelCommonalities: travelCommonalities(members, cfg.MinTravelMembers),
			Alert:               severity >= cfg.AlertThreshold,
		})
	}
	return out
}

// recencyFactor is max(floor, 1/(1 + avgAgeHours/scale)). Intake times in
// the future count as age zero.
func recencyFactor(members []*patient.Node, now time.Time, cfg *Config) float64 {
	if len(members) == 0 {
		return cfg.RecencyFloor
	}
	var total float64
	for _, m := range members {
		hours := now.Sub(m.CreatedAt).Hours()
		if hours < 0 {
			hours = 0
		}
		total += hours
	}
	avgAge := total / float64(len(members))
	return math.Max(cfg.RecencyFloor, 1/(1+avgAge/cfg.RecencyScaleHours))
}

type counted struct {
	key   string
	count int
}

// tally counts each key once per member and returns keys with at least min
// occurrences, by count descending then key ascending
func tally(perMember [][]string, min int) []string {
	counts := make(map[string]int)
	for _, keys := range perMember {
		seen := make(map[string]bool, len(keys))
		for _, k := range keys {
			if seen[k] {
				continue
			}
			seen[k] = true
			counts[k]++
		}
	}

	var items []counted
	for k, c := range counts {
		if c >= min {
			items = append(items, counted{k, c})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].key < items[j].key
	})

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.key
	}
	return out
}

func sharedSymptoms(members []*patient.Node, size int, ratio float64) []string {
	perMember := make([][]string, len(members))
	for i, m := range members {
		perMember[i] = m.Terms()
	}
	min := int(math.Ceil(float64(size) * ratio))
	if min < 1 {
		min = 1
	}
	return tally(perMember, min)
}

func travelCommonalities(members []*patient.Node, minMembers int) []string {
	perMember := make([][]string, len(members))
	for i, m := range members {
		perMember[i] = geo.ExtractRegions(m.TravelHistory)
	}
	return tally(perMember, minMembers)
}

// geographicSpread unions travel regions and coordinate metros, in member order
func geographicSpread(members []*patient.Node, loc geo.Locator) []string {
	seen := make(map[string]bool)
	spread := make([]string, 0)
	add := func(place string) {
		key := strings.ToLower(place)
		if seen[key] {
			return
		}
		seen[key] = true
		spread = append(spread, place)
	}
	for _, m := range members {
		for _, r := range geo.ExtractRegions(m.TravelHistory) {
			add(r)
		}
		if pt, ok := m.Location(); ok {
			if name, ok := loc.Locate(pt); ok {
				add(name)
			}
		}
	}
	return spread
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
