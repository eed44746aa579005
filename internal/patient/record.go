package patient

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Record is the wire shape of an intake record as delivered by the intake
// system. List fields are kept raw because they arrive either as arrays or
// as JSON-encoded strings; ToNode normalizes them.
type Record struct {
	ID              string          `json:"id" validate:"omitempty,max=128"`
	Name            *string         `json:"name"`
	Age             *int            `json:"age" validate:"omitempty,gte=0,lte=130"`
	Symptoms        json.RawMessage `json:"symptoms"`
	SeverityFlags   json.RawMessage `json:"severity_flags"`
	RiskFactors     json.RawMessage `json:"risk_factors"`
	TravelHistory   *string         `json:"travel_history"`
	ExposureHistory *string         `json:"exposure_history"`
	Tier            string          `json:"tier" validate:"omitempty,oneof=critical urgent routine self-care"`
	Lat             *float64        `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng             *float64        `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	CreatedAt       *time.Time      `json:"created_at"`
	Status          string          `json:"status" validate:"max=32"`
}

// Validate checks field ranges and enumerations
func (r *Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid patient record %q: %w", r.ID, err)
	}
	return nil
}

// ToNode converts the record into a core Node. Missing ids get a fresh uuid
// and a missing creation time falls back to now.
func (r *Record) ToNode(now time.Time) *Node {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = uuid.NewString()
	}
	created := now
	if r.CreatedAt != nil && !r.CreatedAt.IsZero() {
		created = *r.CreatedAt
	}
	return &Node{
		ID:              id,
		Name:            r.Name,
		Age:             r.Age,
		Symptoms:        CoerceList(r.Symptoms),
		SeverityFlags:   CoerceList(r.SeverityFlags),
		RiskFactors:     CoerceList(r.RiskFactors),
		TravelHistory:   deref(r.TravelHistory),
		ExposureHistory: deref(r.ExposureHistory),
		Tier:            Tier(strings.ToLower(strings.TrimSpace(r.Tier))),
		Lat:             r.Lat,
		Lng:             r.Lng,
		CreatedAt:       created,
		Status:          strings.TrimSpace(r.Status),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
