package routing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/HenryLodge/viro-sub000/internal/geo"
	"github.com/HenryLodge/viro-sub000/internal/patient"
)

// Hospital is a candidate facility
type Hospital struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Lat           float64  `json:"lat" validate:"gte=-90,lte=90"`
	Lng           float64  `json:"lng" validate:"gte=-180,lte=180"`
	TotalCapacity int      `json:"total_capacity" validate:"gte=0"`
	AvailableBeds int      `json:"available_beds" validate:"gte=0"`
	Specialties   []string `json:"specialties"`
	WaitMinutes   int      `json:"wait_minutes" validate:"gte=0"`
	Phone         *string  `json:"phone,omitempty"`
	Address       *string  `json:"address,omitempty"`
}

var validate = validator.New()

// Validate checks coordinates and non-negative capacity figures
func (h *Hospital) Validate() error {
	if err := validate.Struct(h); err != nil {
		return fmt.Errorf("invalid hospital record %q: %w", h.ID, err)
	}
	return nil
}

// Breakdown holds the normalized per-criterion scores
type Breakdown struct {
	Beds      float64 `json:"beds"`
	Distance  float64 `json:"distance"`
	Specialty float64 `json:"specialty"`
	Wait      float64 `json:"wait"`
}

// RankedHospital is a hospital annotated for one patient
type RankedHospital struct {
	Hospital
	DistanceKm float64   `json:"distance_km"`
	Score      float64   `json:"score"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Weights are the composite score coefficients. Wait is subtracted.
type Weights struct {
	Beds      float64 `yaml:"beds" validate:"gte=0"`
	Distance  float64 `yaml:"distance" validate:"gte=0"`
	Specialty float64 `yaml:"specialty" validate:"gte=0"`
	Wait      float64 `yaml:"wait" validate:"gte=0"`
	// NeutralSpecialty is used when the tier requires no specialty
	NeutralSpecialty float64 `yaml:"neutral_specialty" validate:"gte=0,lte=1"`
}

// DefaultWeights returns the production ranking weights
func DefaultWeights() Weights {
	return Weights{
		Beds:             0.15,
		Distance:         0.50,
		Specialty:        0.25,
		Wait:             0.10,
		NeutralSpecialty: 0.5,
	}
}

// RequiredSpecialties maps each tier to the specialties that satisfy it
var RequiredSpecialties = map[patient.Tier][]string{
	patient.TierCritical: {"emergency", "trauma", "infectious_disease"},
	patient.TierUrgent:   {"emergency", "infectious_disease", "cardiology"},
	patient.TierRoutine:  {"infectious_disease", "internal_medicine", "gastroenterology"},
	patient.TierSelfCare: {},
}

// Rank scores every hospital for a patient at origin and returns them by
// descending score. Ties fall back to hospital id so the order is stable
// across calls. Inputs are not modified.
func Rank(origin geo.Point, tier patient.Tier, hospitals []Hospital, w Weights) []RankedHospital {
	if len(hospitals) == 0 {
		return []RankedHospital{}
	}

	distances := make([]float64, len(hospitals))
	maxBeds, maxDist, maxWait := 1.0, 1.0, 1.0
	for i, h := range hospitals {
		distances[i] = geo.HaversineKm(origin, geo.Point{Lat: h.Lat, Lng: h.Lng})
		maxBeds = math.Max(maxBeds, float64(h.AvailableBeds))
		maxDist = math.Max(maxDist, distances[i])
		maxWait = math.Max(maxWait, float64(h.WaitMinutes))
	}

	required := RequiredSpecialties[tier]

	ranked := make([]RankedHospital, len(hospitals))
	for i, h := range hospitals {
		b := Breakdown{
			Beds:      float64(h.AvailableBeds) / maxBeds,
			Distance:  1 - distances[i]/maxDist,
			Specialty: specialtyScore(h.Specialties, required, w.NeutralSpecialty),
			Wait:      float64(h.WaitMinutes) / maxWait,
		}
		score := w.Beds*b.Beds + w.Distance*b.Distance + w.Specialty*b.Specialty - w.Wait*b.Wait

		copied := h
		copied.Specialties = append([]string(nil), h.Specialties...)
		ranked[i] = RankedHospital{
			Hospital:   copied,
			DistanceKm: round(distances[i], 2),
			Score:      round(score, 4),
			Breakdown:  b,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// Top returns at most n entries from the head of ranked
func Top(ranked []RankedHospital, n int) []RankedHospital {
	if n < 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

func specialtyScore(have, required []string, neutral float64) float64 {
	if len(required) == 0 {
		return neutral
	}
	for _, s := range have {
		s = strings.ToLower(strings.TrimSpace(s))
		for _, r := range required {
			if s == r {
				return 1
			}
		}
	}
	return 0
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
