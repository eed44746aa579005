package db

import (
	"fmt"
	"time"

	"github.com/HenryLodge/viro-sub000/internal/outbreak"
)

// UpsertAlerts writes alerts keyed by cluster id, replacing any earlier
// alert for the same cluster
func (d *DB) UpsertAlerts(alerts []outbreak.Alert, now time.Time) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO cluster_alerts (cluster_id, label, patient_count, patient_ids, severity,
		                            shared_symptoms, geographic_spread, travel_commonalities,
		                            growth_rate, recommended_action, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cluster_id) DO UPDATE SET
			label = excluded.label, patient_count = excluded.patient_count,
			patient_ids = excluded.patient_ids, severity = excluded.severity,
			shared_symptoms = excluded.shared_symptoms, geographic_spread = excluded.geographic_spread,
			travel_commonalities = excluded.travel_commonalities, growth_rate = excluded.growth_rate,
			recommended_action = excluded.recommended_action, updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing alert upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range alerts {
		_, err := stmt.Exec(
			a.ClusterID, a.Label, a.PatientCount, encodeList(a.PatientIDs), a.Severity,
			encodeList(a.SharedSymptoms), a.GeographicSpread, a.TravelCommonalities,
			string(a.GrowthRate), a.RecommendedAction, now.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("upserting alert %s: %w", a.ClusterID, err)
		}
	}
	return tx.Commit()
}

// AllAlerts returns stored alerts, most severe first
func (d *DB) AllAlerts() ([]StoredAlert, error) {
	rows, err := d.conn.Query(`
		SELECT cluster_id, label, patient_count, patient_ids, severity, shared_symptoms,
		       geographic_spread, travel_commonalities, growth_rate, recommended_action, updated_at
		FROM cluster_alerts ORDER BY severity DESC, cluster_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredAlert
	for rows.Next() {
		var (
			a             StoredAlert
			ids, symptoms string
		)
		err := rows.Scan(
			&a.ClusterID, &a.Label, &a.PatientCount, &ids, &a.Severity, &symptoms,
			&a.GeographicSpread, &a.TravelCommonalities, &a.GrowthRate, &a.RecommendedAction, &a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		a.PatientIDs = decodeList(ids)
		a.SharedSymptoms = decodeList(symptoms)
		out = append(out, a)
	}
	return out, rows.Err()
}
