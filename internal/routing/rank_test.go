package routing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HenryLodge/viro-sub000/internal/geo"
	"github.com/HenryLodge/viro-sub000/internal/patient"
)

var origin = geo.Point{Lat: 0, Lng: 0}

func hospital(id string, lng float64, beds, wait int, specialties ...string) Hospital {
	return Hospital{
		ID:            id,
		Name:          "Hospital " + id,
		Lat:           0,
		Lng:           lng,
		TotalCapacity: 100,
		AvailableBeds: beds,
		WaitMinutes:   wait,
		Specialties:   specialties,
	}
}

func distTo(lng float64) float64 {
	return geo.HaversineKm(origin, geo.Point{Lat: 0, Lng: lng})
}

func TestRank_SpecialtyOutweighsModestDistanceGap(t *testing.T) {
	hospitals := []Hospital{
		hospital("trauma", 0.5, 10, 30, "trauma"),
		hospital("near", 0.1, 20, 60, "pediatrics"),
		hospital("far", 1.0, 5, 10, "internal_medicine"),
	}
	ranked := Rank(origin, patient.TierCritical, hospitals, DefaultWeights())
	require.Len(t, ranked, 3)

	maxDist := distTo(1.0)
	expect := map[string]float64{
		"trauma": 0.15*(10.0/20) + 0.50*(1-distTo(0.5)/maxDist) + 0.25*1 - 0.10*(30.0/60),
		"near":   0.15*(20.0/20) + 0.50*(1-distTo(0.1)/maxDist) + 0.25*0 - 0.10*(60.0/60),
		"far":    0.15*(5.0/20) + 0.50*(1-distTo(1.0)/maxDist) + 0.25*0 - 0.10*(10.0/60),
	}
	for _, r := range ranked {
		assert.InDelta(t, expect[r.ID], r.Score, 1e-4, "hospital %s", r.ID)
	}
	assert.InDelta(t, 0.525, ranked[0].Score, 1e-4)
	assert.Equal(t, []string{"trauma", "near", "far"}, ids(ranked))
}

func TestRank_DistanceDominatesWhenSpecialtyIsFar(t *testing.T) {
	hospitals := []Hospital{
		hospital("trauma", 0.9, 10, 30, "trauma"),
		hospital("near", 0.1, 20, 60, "pediatrics"),
		hospital("far", 1.0, 5, 10),
	}
	ranked := Rank(origin, patient.TierCritical, hospitals, DefaultWeights())

	// trauma: 0.075 + 0.05 + 0.25 - 0.05 = 0.325; near: 0.15 + 0.45 - 0.10 = 0.5
	assert.Equal(t, "near", ranked[0].ID)
	assert.InDelta(t, 0.5, ranked[0].Score, 1e-4)
	assert.InDelta(t, 0.325, ranked[1].Score, 1e-4)
}

func TestRank_NeutralSpecialtyWithoutRequirements(t *testing.T) {
	hospitals := []Hospital{hospital("a", 0, 0, 0, "trauma")}
	for _, tier := range []patient.Tier{patient.TierSelfCare, patient.TierPending} {
		ranked := Rank(origin, tier, hospitals, DefaultWeights())
		assert.Equal(t, 0.5, ranked[0].Breakdown.Specialty, "tier %q", tier)
	}
}

func TestRank_DegenerateDenominators(t *testing.T) {
	hospitals := []Hospital{
		hospital("a", 0, 0, 0, "emergency"),
		hospital("b", 0, 0, 0),
	}
	ranked := Rank(origin, patient.TierUrgent, hospitals, DefaultWeights())
	require.Len(t, ranked, 2)
	for _, r := range ranked {
		assert.False(t, math.IsNaN(r.Score) || math.IsInf(r.Score, 0), "score must be finite")
	}
	assert.InDelta(t, 0.75, ranked[0].Score, 1e-9)
	assert.InDelta(t, 0.5, ranked[1].Score, 1e-9)
}

func TestRank_DeterministicTies(t *testing.T) {
	hospitals := []Hospital{
		hospital("c", 0.2, 5, 5),
		hospital("a", 0.2, 5, 5),
		hospital("b", 0.2, 5, 5),
	}
	first := Rank(origin, patient.TierRoutine, hospitals, DefaultWeights())
	for i := 0; i < 10; i++ {
		again := Rank(origin, patient.TierRoutine, hospitals, DefaultWeights())
		assert.Equal(t, ids(first), ids(again))
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(first))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	hospitals := []Hospital{hospital("a", 0.3, 4, 20, "Emergency")}
	ranked := Rank(origin, patient.TierUrgent, hospitals, DefaultWeights())
	ranked[0].Specialties[0] = "changed"
	assert.Equal(t, "Emergency", hospitals[0].Specialties[0])
	assert.Equal(t, 1.0, ranked[0].Breakdown.Specialty, "specialty match is case-insensitive")
}

func TestRank_Empty(t *testing.T) {
	ranked := Rank(origin, patient.TierCritical, nil, DefaultWeights())
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestTop(t *testing.T) {
	ranked := []RankedHospital{{Score: 3}, {Score: 2}, {Score: 1}}
	assert.Len(t, Top(ranked, 2), 2)
	assert.Len(t, Top(ranked, 10), 3)
	assert.Len(t, Top(ranked, -1), 3)
}

func ids(ranked []RankedHospital) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.ID
	}
	return out
}

func TestHospitalValidate(t *testing.T) {
	h := hospital("a", 0, 1, 1)
	assert.NoError(t, h.Validate())

	h.Lat = 91
	assert.Error(t, h.Validate())

	h = hospital("b", 0, -1, 1)
	assert.Error(t, h.Validate())

	h = hospital("", 0, 1, 1)
	assert.Error(t, h.Validate())
}
