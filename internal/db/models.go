package db

import (
	"encoding/json"

	"github.com/HenryLodge/viro-sub000/internal/patient"
)

// StoredPatient is a row in the patients table
type StoredPatient struct {
	patient.Node
	AssignedHospitalID *string `json:"assigned_hospital_id"`
}

// StoredAlert is a row in the cluster_alerts table
type StoredAlert struct {
	ClusterID           string   `json:"cluster_id"`
	Label               string   `json:"label"`
	PatientCount        int      `json:"patient_count"`
	PatientIDs          []string `json:"patient_ids"`
	Severity            float64  `json:"severity"`
	SharedSymptoms      []string `json:"shared_symptoms"`
	GeographicSpread    string   `json:"geographic_spread"`
	TravelCommonalities string   `json:"travel_commonalities"`
	GrowthRate          string   `json:"growth_rate"`
	RecommendedAction   string   `json:"recommended_action"`
	UpdatedAt           int64    `json:"updated_at"` // Unix millis
}

// encodeList stores a list column as a JSON array; nil becomes "[]"
func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decodeList reads a list column. Legacy rows written by other tools may
// hold comma-separated text, which CoerceList also accepts.
func decodeList(s string) []string {
	return patient.CoerceList(s)
}
