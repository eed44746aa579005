package graph

import (
	"math"
	"strings"
	"time"

	"github.com/HenryLodge/viro-sub000/internal/geo"
	"github.com/HenryLodge/viro-sub000/internal/patient"
)

// Similarity is the linkage between two patients with its sub-scores
type Similarity struct {
	Weight      float64 `json:"weight"`
	Reason      string  `json:"reason"`
	Symptom     float64 `json:"symptom"`
	Travel      float64 `json:"travel"`
	GeoTemporal float64 `json:"geo_temporal"`
	Exposure    float64 `json:"exposure"`
}

// profile caches the per-patient features the scorer needs, so the
// pairwise pass does not re-derive them n times per patient
type profile struct {
	node      *patient.Node
	terms     []string
	termSet   map[string]bool
	regions   []string
	exposure  map[string]bool
	point     geo.Point
	hasPoint  bool
	createdAt time.Time
}

func newProfile(n *patient.Node, cfg *Config) *profile {
	p := &profile{
		node:      n,
		terms:     n.Terms(),
		regions:   geo.ExtractRegions(n.TravelHistory),
		exposure:  exposureTokens(n.ExposureHistory, cfg.ExposureMinLen),
		createdAt: n.CreatedAt,
	}
	p.termSet = make(map[string]bool, len(p.terms))
	for _, t := range p.terms {
		p.termSet[t] = true
	}
	p.point, p.hasPoint = n.Location()
	return p
}

func exposureTokens(text string, minLen int) map[string]bool {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if len(tok) > minLen {
			tokens[tok] = true
		}
	}
	return tokens
}

// Score computes the linkage between two eligible patients. It returns
// false when the combined weight falls below cfg.MinEdgeWeight.
func Score(a, b *patient.Node, cfg *Config) (Similarity, bool) {
	return scoreProfiles(newProfile(a, cfg), newProfile(b, cfg), cfg)
}

func scoreProfiles(a, b *profile, cfg *Config) (Similarity, bool) {
	symptom, shared := symptomScore(a, b, cfg)
	travel, regions := travelScore(a, b, cfg)
	geoTemporal := geoTemporalScore(a, b, cfg)
	exposure := exposureScore(a, b, cfg)

	weight := round(cfg.SymptomWeight*symptom+
		cfg.TravelWeight*travel+
		cfg.GeoTemporalWeight*geoTemporal+
		cfg.ExposureWeight*exposure, 3)
	if weight < cfg.MinEdgeWeight || weight <= 0 {
		return Similarity{}, false
	}

	var clauses []string
	if symptom > 0 {
		clauses = append(clauses, "shared symptoms: "+strings.Join(shared, ", "))
	}
	if travel > 0 {
		clauses = append(clauses, "shared travel: "+strings.Join(regions, ", "))
	}
	if geoTemporal > 0 {
		clauses = append(clauses, "geographic & temporal proximity")
	}
	if exposure > 0 {
		clauses = append(clauses, "exposure linkage")
	}

	return Similarity{
		Weight:      math.Min(weight, 1),
		Reason:      strings.Join(clauses, "; "),
		Symptom:     symptom,
		Travel:      travel,
		GeoTemporal: geoTemporal,
		Exposure:    exposure,
	}, true
}

// symptomScore is Jaccard over symptoms ∪ severity flags, doubled and capped.
// Weak overlaps (low Jaccard and few shared terms) score zero. Shared terms
// follow the term order of the patient with the smaller id.
func symptomScore(a, b *profile, cfg *Config) (float64, []string) {
	if len(a.terms) == 0 || len(b.terms) == 0 {
		return 0, nil
	}
	ref, other := a, b
	if b.node.ID < a.node.ID {
		ref, other = b, a
	}
	var shared []string
	for _, t := range ref.terms {
		if other.termSet[t] {
			shared = append(shared, t)
		}
	}
	union := len(a.terms) + len(b.terms) - len(shared)
	jaccard := float64(len(shared)) / float64(union)
	if jaccard < cfg.SymptomJaccardMin && len(shared) < cfg.SymptomMinShared {
		return 0, nil
	}
	if len(shared) == 0 {
		return 0, nil
	}
	return math.Min(1, jaccard*2), shared
}

func travelScore(a, b *profile, cfg *Config) (float64, []string) {
	if len(a.regions) == 0 || len(b.regions) == 0 {
		return 0, nil
	}
	var shared []string
	for _, r := range a.regions {
		for _, o := range b.regions {
			if r == o {
				shared = append(shared, r)
				break
			}
		}
	}
	if len(shared) == 0 {
		return 0, nil
	}
	return math.Min(1, float64(len(shared))*cfg.TravelPerRegion), shared
}

// geoTemporalScore averages linear distance and time closeness, unweighted
func geoTemporalScore(a, b *profile, cfg *Config) float64 {
	if !a.hasPoint || !b.hasPoint {
		return 0
	}
	dist := geo.HaversineKm(a.point, b.point)
	if dist > cfg.GeoRadiusKm {
		return 0
	}
	dt := a.createdAt.Sub(b.createdAt)
	if dt < 0 {
		dt = -dt
	}
	if dt > cfg.TimeWindow {
		return 0
	}
	distFactor := 1 - dist/cfg.GeoRadiusKm
	timeFactor := 1 - float64(dt)/float64(cfg.TimeWindow)
	return (distFactor + timeFactor) / 2
}

func exposureScore(a, b *profile, cfg *Config) float64 {
	if len(a.exposure) == 0 || len(b.exposure) == 0 {
		return 0
	}
	count := 0
	for tok := range a.exposure {
		if b.exposure[tok] {
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Min(1, float64(count)*cfg.ExposurePerToken)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
