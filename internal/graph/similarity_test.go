package graph

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/HenryLodge/viro-sub000/internal/patient"
)

var baseTime = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func triaged(id string, symptoms ...string) *patient.Node {
	return &patient.Node{
		ID:        id,
		Symptoms:  symptoms,
		Tier:      patient.TierUrgent,
		Status:    "triaged",
		CreatedAt: baseTime,
	}
}

func at(n *patient.Node, lat, lng float64) *patient.Node {
	n.Lat = &lat
	n.Lng = &lng
	return n
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScore_IdenticalSymptoms(t *testing.T) {
	a := triaged("a", "fever", "cough")
	b := triaged("b", "fever", "cough")
	a.SeverityFlags = []string{}
	b.SeverityFlags = []string{}

	sim, ok := Score(a, b, DefaultConfig())
	if !ok {
		t.Fatal("expected a link for identical symptoms")
	}
	if sim.Symptom != 1.0 {
		t.Errorf("expected symptom score 1.0, got %f", sim.Symptom)
	}
	if !approx(sim.Weight, 0.35) {
		t.Errorf("expected weight 0.35, got %f", sim.Weight)
	}
	if !strings.Contains(sim.Reason, "fever, cough") {
		t.Errorf("reason should mention 'fever, cough', got %q", sim.Reason)
	}
	if sim.Travel != 0 || sim.GeoTemporal != 0 || sim.Exposure != 0 {
		t.Errorf("only the symptom term should contribute, got %+v", sim)
	}
}

func TestScore_SharedTravel(t *testing.T) {
	a := triaged("a")
	b := triaged("b")
	a.TravelHistory = "Returned from London via Dubai"
	b.TravelHistory = "dubai conference, then a week in london"

	sim, ok := Score(a, b, DefaultConfig())
	if !ok {
		t.Fatal("expected a link for two shared regions")
	}
	if sim.Travel != 1.0 {
		t.Errorf("expected travel score 1.0, got %f", sim.Travel)
	}
	if !approx(sim.Weight, 0.30) {
		t.Errorf("expected weight 0.30, got %f", sim.Weight)
	}
	if sim.Reason != "shared travel: london, dubai" {
		t.Errorf("unexpected reason %q", sim.Reason)
	}
}

func TestScore_OneSharedRegionBelowCutoff(t *testing.T) {
	a := triaged("a")
	b := triaged("b")
	a.TravelHistory = "paris"
	b.TravelHistory = "paris and rome"

	// 0.30 * 0.5 = 0.15 < 0.20
	if _, ok := Score(a, b, DefaultConfig()); ok {
		t.Error("a single shared region alone should not clear the cutoff")
	}
}

func TestScore_NoRecognizedRegion(t *testing.T) {
	a := triaged("a")
	b := triaged("b")
	a.TravelHistory = "went camping"
	b.TravelHistory = "went camping"
	pa, pb := newProfile(a, DefaultConfig()), newProfile(b, DefaultConfig())
	if s, _ := travelScore(pa, pb, DefaultConfig()); s != 0 {
		t.Errorf("expected 0 without recognized regions, got %f", s)
	}
}

func TestSymptomScore_Thresholds(t *testing.T) {
	cfg := DefaultConfig()

	// One shared term out of nine: Jaccard 0.11, fewer than 3 shared
	a := newProfile(triaged("a", "fever", "cough", "rash", "headache", "nausea"), cfg)
	b := newProfile(triaged("b", "fever", "fatigue", "chills", "vomiting", "diarrhea"), cfg)
	if s, _ := symptomScore(a, b, cfg); s != 0 {
		t.Errorf("weak overlap should score 0, got %f", s)
	}

	// Three shared terms rescue a low Jaccard: 3/13 * 2
	a = newProfile(triaged("a", "fever", "cough", "rash", "a1", "a2", "a3", "a4", "a5"), cfg)
	b = newProfile(triaged("b", "fever", "cough", "rash", "b1", "b2", "b3", "b4", "b5"), cfg)
	s, shared := symptomScore(a, b, cfg)
	if !approx(s, 6.0/13.0) {
		t.Errorf("expected %f, got %f", 6.0/13.0, s)
	}
	if len(shared) != 3 {
		t.Errorf("expected 3 shared terms, got %v", shared)
	}

	// Jaccard 0.5 doubles to 1.0
	a = newProfile(triaged("a", "fever", "cough"), cfg)
	b = newProfile(triaged("b", "fever", "cough", "rash", "chills"), cfg)
	if s, _ := symptomScore(a, b, cfg); s != 1.0 {
		t.Errorf("expected capped 1.0, got %f", s)
	}
}

func TestSymptomScore_SeverityFlagsCaseInsensitive(t *testing.T) {
	cfg := DefaultConfig()
	a := triaged("a", "Fever")
	a.SeverityFlags = []string{"HYPOXIA"}
	b := triaged("b", "fever")
	b.SeverityFlags = []string{"hypoxia"}
	s, _ := symptomScore(newProfile(a, cfg), newProfile(b, cfg), cfg)
	if s != 1.0 {
		t.Errorf("expected 1.0, got %f", s)
	}
}

func TestGeoTemporal_SamePlaceSameTime(t *testing.T) {
	a := at(triaged("a"), 40.75, -73.99)
	b := at(triaged("b"), 40.75, -73.99)

	sim, ok := Score(a, b, DefaultConfig())
	if !ok {
		t.Fatal("full geo-temporal proximity alone should reach the cutoff")
	}
	if sim.GeoTemporal != 1.0 {
		t.Errorf("expected 1.0, got %f", sim.GeoTemporal)
	}
	if !approx(sim.Weight, 0.20) {
		t.Errorf("expected 0.20, got %f", sim.Weight)
	}
	if sim.Reason != "geographic & temporal proximity" {
		t.Errorf("unexpected reason %q", sim.Reason)
	}
}

func TestGeoTemporal_LinearAverage(t *testing.T) {
	cfg := DefaultConfig()
	a := at(triaged("a"), 40.75, -73.99)
	b := at(triaged("b"), 40.75, -73.99)
	b.CreatedAt = a.CreatedAt.Add(24 * time.Hour)

	got := geoTemporalScore(newProfile(a, cfg), newProfile(b, cfg), cfg)
	if !approx(got, 0.75) {
		t.Errorf("expected (1 + 0.5)/2 = 0.75, got %f", got)
	}
}

func TestGeoTemporal_OutsideWindows(t *testing.T) {
	cfg := DefaultConfig()

	// New York vs Boston is ~300km
	a := at(triaged("a"), 40.75, -73.99)
	b := at(triaged("b"), 42.36, -71.06)
	if s := geoTemporalScore(newProfile(a, cfg), newProfile(b, cfg), cfg); s != 0 {
		t.Errorf("expected 0 beyond radius, got %f", s)
	}

	c := at(triaged("c"), 40.75, -73.99)
	c.CreatedAt = a.CreatedAt.Add(-49 * time.Hour)
	if s := geoTemporalScore(newProfile(a, cfg), newProfile(c, cfg), cfg); s != 0 {
		t.Errorf("expected 0 beyond time window, got %f", s)
	}
}

func TestGeoTemporal_HalfCoordinates(t *testing.T) {
	cfg := DefaultConfig()
	a := at(triaged("a"), 40.75, -73.99)
	b := triaged("b")
	lat := 40.75
	b.Lat = &lat

	if s := geoTemporalScore(newProfile(a, cfg), newProfile(b, cfg), cfg); s != 0 {
		t.Errorf("missing longitude should degrade to 0, got %f", s)
	}
}

func TestExposureScore(t *testing.T) {
	cfg := DefaultConfig()
	a := triaged("a")
	b := triaged("b")
	a.ExposureHistory = "Visited the Seafood market stall on Friday"
	b.ExposureHistory = "worked at the seafood MARKET all week"

	s := exposureScore(newProfile(a, cfg), newProfile(b, cfg), cfg)
	// shared tokens longer than 3: seafood, market
	if !approx(s, 0.5) {
		t.Errorf("expected 0.5, got %f", s)
	}

	b.ExposureHistory = ""
	if s := exposureScore(newProfile(a, cfg), newProfile(b, cfg), cfg); s != 0 {
		t.Errorf("empty exposure should score 0, got %f", s)
	}
}

func TestScore_ReasonOrder(t *testing.T) {
	a := at(triaged("a", "fever", "cough"), 40.75, -73.99)
	b := at(triaged("b", "fever", "cough"), 40.75, -73.99)
	a.TravelHistory, b.TravelHistory = "tokyo", "tokyo"
	a.ExposureHistory, b.ExposureHistory = "choir practice", "choir rehearsal"

	sim, ok := Score(a, b, DefaultConfig())
	if !ok {
		t.Fatal("expected a link")
	}
	want := "shared symptoms: fever, cough; shared travel: tokyo; geographic & temporal proximity; exposure linkage"
	if sim.Reason != want {
		t.Errorf("reason:\n got %q\nwant %q", sim.Reason, want)
	}
	if sim.Weight > 1 {
		t.Errorf("weight must not exceed 1, got %f", sim.Weight)
	}
}

func TestScore_Symmetric(t *testing.T) {
	a := at(triaged("a", "fever", "cough", "rash"), 40.71, -74.00)
	b := at(triaged("b", "fever", "rash", "joint_pain"), 40.80, -73.95)
	b.CreatedAt = baseTime.Add(7 * time.Hour)
	a.TravelHistory = "london, paris"
	b.TravelHistory = "Paris"
	a.ExposureHistory = "mosquito bites near the river"
	b.ExposureHistory = "river camping with mosquito nets"

	ab, okAB := Score(a, b, DefaultConfig())
	ba, okBA := Score(b, a, DefaultConfig())
	if okAB != okBA {
		t.Fatalf("link decision not symmetric: %v vs %v", okAB, okBA)
	}
	if ab.Weight != ba.Weight || ab.Symptom != ba.Symptom || ab.Travel != ba.Travel ||
		ab.GeoTemporal != ba.GeoTemporal || ab.Exposure != ba.Exposure {
		t.Errorf("scores not symmetric:\n%+v\n%+v", ab, ba)
	}
	if ab.Reason != ba.Reason {
		t.Errorf("reason not symmetric:\n%q\n%q", ab.Reason, ba.Reason)
	}
}

func TestScore_ReasonIndependentOfArgumentOrder(t *testing.T) {
	a := triaged("a", "fever", "cough", "rash")
	b := triaged("b", "rash", "cough", "fever")

	ab, okAB := Score(a, b, DefaultConfig())
	ba, okBA := Score(b, a, DefaultConfig())
	if !okAB || !okBA {
		t.Fatal("expected a link in both directions")
	}
	want := "shared symptoms: fever, cough, rash"
	if ab.Reason != want || ba.Reason != want {
		t.Errorf("reason: got %q and %q, want %q", ab.Reason, ba.Reason, want)
	}
}

func TestScore_NothingShared(t *testing.T) {
	if _, ok := Score(triaged("a", "fever"), triaged("b", "rash"), DefaultConfig()); ok {
		t.Error("unrelated patients should not be linked")
	}
}
