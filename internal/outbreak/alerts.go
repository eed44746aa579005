package outbreak

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GrowthRate is a coarse size-based classification of a cluster
type GrowthRate string

const (
	GrowthEmerging GrowthRate = "Emerging"
	GrowthModerate GrowthRate = "Moderate"
	GrowthRapid    GrowthRate = "Rapid"
)

const defaultAction = "Continue monitoring cluster growth."

// Alert is the operator-facing summary of an alerting cluster. Callers that
// persist alerts upsert them by ClusterID.
type Alert struct {
	ClusterID           string     `json:"cluster_id"`
	Label               string     `json:"label"`
	PatientCount        int        `json:"patient_count"`
	PatientIDs          []string   `json:"patient_ids"`
	Severity            float64    `json:"severity"`
	SharedSymptoms      []string   `json:"shared_symptoms"`
	GeographicSpread    string     `json:"geographic_spread"`
	TravelCommonalities string     `json:"travel_commonalities"`
	GrowthRate          GrowthRate `json:"growth_rate"`
	RecommendedAction   string     `json:"recommended_action"`
}

// GenerateAlerts builds an alert for every cluster whose alert flag is set,
// most severe first
func GenerateAlerts(clusters []Cluster, cfg *Config) []Alert {
	title := titleCaser()

	alerts := make([]Alert, 0)
	for _, c := range clusters {
		if !c.Alert {
			continue
		}
		alerts = append(alerts, Alert{
			ClusterID:           c.ID,
			Label:               alertLabel(c, title),
			PatientCount:        c.Size,
			PatientIDs:          c.PatientIDs,
			Severity:            c.SeverityScore,
			SharedSymptoms:      c.SharedSymptoms,
			GeographicSpread:    summarize(c.GeographicSpread, title, "No geographic data"),
			TravelCommonalities: summarize(c.TravelCommonalities, title, "None identified"),
			GrowthRate:          growthRate(c.Size, cfg),
			RecommendedAction:   recommendedAction(c, title, cfg),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity > alerts[j].Severity
	})
	return alerts
}

// titleCaser capitalizes place names without lowercasing acronyms such as DC.
// A Caser is stateful, so each run gets its own.
func titleCaser() cases.Caser {
	return cases.Title(language.English, cases.NoLower)
}

func alertLabel(c Cluster, title cases.Caser) string {
	var base string
	switch {
	case len(c.TravelCommonalities) > 0:
		base = title.String(c.TravelCommonalities[0]) + " travel"
	case len(c.GeographicSpread) > 0:
		base = title.String(c.GeographicSpread[0]) + " local"
	default:
		return fmt.Sprintf("Cluster of %d patients", c.Size)
	}
	if top := firstN(c.SharedSymptoms, 2); len(top) > 0 {
		base += " - " + strings.Join(top, "/")
	}
	return base
}

func growthRate(size int, cfg *Config) GrowthRate {
	switch {
	case size >= cfg.RapidSize:
		return GrowthRapid
	case size >= cfg.ModerateSize:
		return GrowthModerate
	default:
		return GrowthEmerging
	}
}

func recommendedAction(c Cluster, title cases.Caser, cfg *Config) string {
	var sentences []string
	if len(c.TravelCommonalities) > 0 {
		sentences = append(sentences, fmt.Sprintf(
			"Screen recent arrivals from %s.", titled(c.TravelCommonalities, title)))
	}
	if len(c.SharedSymptoms) > 0 {
		sentences = append(sentences, fmt.Sprintf(
			"Monitor incoming patients for %s.", strings.Join(firstN(c.SharedSymptoms, 3), ", ")))
	}
	// one or two places counts as geographically concentrated
	if n := len(c.GeographicSpread); n > 0 && n <= 2 {
		sentences = append(sentences, fmt.Sprintf(
			"Pre-position beds and staff in %s.", titled(c.GeographicSpread, title)))
	}
	if c.Size >= cfg.RapidSize {
		sentences = append(sentences, "Issue a public health advisory for the affected area.")
	}
	if len(sentences) == 0 {
		return defaultAction
	}
	return strings.Join(sentences, " ")
}

func summarize(items []string, title cases.Caser, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return titled(items, title)
}

func titled(items []string, title cases.Caser) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = title.String(s)
	}
	return strings.Join(out, ", ")
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
