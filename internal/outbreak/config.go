package outbreak

import (
	"time"

	"github.com/HenryLodge/viro-sub000/internal/geo"
)

// Config holds cluster scoring and alerting parameters
type Config struct {
	// AlertThreshold is the severity at or above which a cluster alerts
	AlertThreshold float64 `yaml:"alert_threshold" validate:"gt=0"`
	// RecencyScaleHours controls how fast severity decays with member age
	RecencyScaleHours float64 `yaml:"recency_scale_hours" validate:"gt=0"`
	RecencyFloor      float64 `yaml:"recency_floor" validate:"gte=0,lte=1"`
	// SharedSymptomRatio is the member share a term needs to count as shared
	SharedSymptomRatio float64 `yaml:"shared_symptom_ratio" validate:"gt=0,lte=1"`
	MinTravelMembers   int     `yaml:"min_travel_members" validate:"gte=1"`
	RapidSize          int     `yaml:"rapid_size" validate:"gte=1"`
	ModerateSize       int     `yaml:"moderate_size" validate:"gte=1"`

	Now     func() time.Time `yaml:"-"`
	Locator geo.Locator      `yaml:"-"`
}

// DefaultConfig returns the production scoring parameters
func DefaultConfig() *Config {
	return &Config{
		AlertThreshold:     2.5,
		RecencyScaleHours:  72,
		RecencyFloor:       0.1,
		SharedSymptomRatio: 0.5,
		MinTravelMembers:   2,
		RapidSize:          5,
		ModerateSize:       3,
		Now:                time.Now,
		Locator:            geo.DefaultLocator(),
	}
}

func (c *Config) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Config) locator() geo.Locator {
	if c.Locator == nil {
		return geo.DefaultLocator()
	}
	return c.Locator
}
