package graph

import (
	"time"

	"github.com/HenryLodge/viro-sub000/internal/geo"
)

// Config holds the similarity weights and cutoffs used to build the
// patient linkage graph
type Config struct {
	SymptomWeight     float64 `yaml:"symptom_weight" validate:"gte=0,lte=1"`
	TravelWeight      float64 `yaml:"travel_weight" validate:"gte=0,lte=1"`
	GeoTemporalWeight float64 `yaml:"geo_temporal_weight" validate:"gte=0,lte=1"`
	ExposureWeight    float64 `yaml:"exposure_weight" validate:"gte=0,lte=1"`

	// MinEdgeWeight is the cutoff below which a pair is not linked
	MinEdgeWeight float64 `yaml:"min_edge_weight" validate:"gte=0,lte=1"`

	SymptomJaccardMin float64 `yaml:"symptom_jaccard_min" validate:"gte=0,lte=1"`
	SymptomMinShared  int     `yaml:"symptom_min_shared" validate:"gte=0"`
	TravelPerRegion   float64 `yaml:"travel_per_region" validate:"gte=0"`
	ExposurePerToken  float64 `yaml:"exposure_per_token" validate:"gte=0"`
	ExposureMinLen    int     `yaml:"exposure_min_token_len" validate:"gte=0"`

	GeoRadiusKm float64       `yaml:"geo_radius_km" validate:"gt=0"`
	TimeWindow  time.Duration `yaml:"time_window" validate:"gt=0"`

	// Workers shards the pairwise pass; <= 1 runs it inline
	Workers int `yaml:"workers" validate:"gte=0"`

	HubThreshold int `yaml:"hub_threshold" validate:"gte=0"`
	TopN         int `yaml:"top_n" validate:"gte=0"`

	Locator geo.Locator `yaml:"-"`
}

// DefaultConfig returns the production weights and thresholds
func DefaultConfig() *Config {
	return &Config{
		SymptomWeight:     0.35,
		TravelWeight:      0.30,
		GeoTemporalWeight: 0.20,
		ExposureWeight:    0.15,
		MinEdgeWeight:     0.20,
		SymptomJaccardMin: 0.4,
		SymptomMinShared:  3,
		TravelPerRegion:   0.5,
		ExposurePerToken:  0.25,
		ExposureMinLen:    3,
		GeoRadiusKm:       80,
		TimeWindow:        48 * time.Hour,
		Workers:           1,
		HubThreshold:      5,
		TopN:              10,
		Locator:           geo.DefaultLocator(),
	}
}

func (c *Config) locator() geo.Locator {
	if c.Locator == nil {
		return geo.DefaultLocator()
	}
	return c.Locator
}
