package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HenryLodge/viro-sub000/internal/patient"
)

const patientColumns = `id, name, age, symptoms, severity_flags, risk_factors,
	travel_history, exposure_history, tier, lat, lng, created_at, status,
	assigned_hospital_id`

// scanPatient scans a row into a StoredPatient. The row must have all
// patientColumns in order.
func scanPatient(scanner interface{ Scan(dest ...any) error }) (StoredPatient, error) {
	var (
		p                      StoredPatient
		name                   sql.NullString
		age                    sql.NullInt64
		symptoms, flags, risks string
		tier                   string
		lat, lng               sql.NullFloat64
		createdAt              int64
	)
	err := scanner.Scan(
		&p.ID, &name, &age, &symptoms, &flags, &risks,
		&p.TravelHistory, &p.ExposureHistory, &tier, &lat, &lng, &createdAt, &p.Status,
		&p.AssignedHospitalID,
	)
	if err != nil {
		return p, err
	}
	if name.Valid {
		p.Name = &name.String
	}
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if lat.Valid {
		p.Lat = &lat.Float64
	}
	if lng.Valid {
		p.Lng = &lng.Float64
	}
	p.Symptoms = decodeList(symptoms)
	p.SeverityFlags = decodeList(flags)
	p.RiskFactors = decodeList(risks)
	p.Tier = patient.Tier(tier)
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	return p, nil
}

// InsertPatients upserts intake records in a single transaction. Re-importing
// a record keeps its facility assignment.
func (d *DB) InsertPatients(nodes []*patient.Node) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO patients (id, name, age, symptoms, severity_flags, risk_factors,
		                      travel_history, exposure_history, tier, lat, lng, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, age = excluded.age, symptoms = excluded.symptoms,
			severity_flags = excluded.severity_flags, risk_factors = excluded.risk_factors,
			travel_history = excluded.travel_history, exposure_history = excluded.exposure_history,
			tier = excluded.tier, lat = excluded.lat, lng = excluded.lng,
			created_at = excluded.created_at, status = excluded.status
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing patient insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		_, err := stmt.Exec(
			n.ID, n.Name, n.Age,
			encodeList(n.Symptoms), encodeList(n.SeverityFlags), encodeList(n.RiskFactors),
			n.TravelHistory, n.ExposureHistory, string(n.Tier), n.Lat, n.Lng,
			n.CreatedAt.UnixMilli(), n.Status,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting patient %s: %w", n.ID, err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing patients: %w", err)
	}
	return count, nil
}

// RecentPatients returns non-pending patients created at or after since,
// newest first. A non-positive limit means no limit.
func (d *DB) RecentPatients(since time.Time, limit int) ([]*patient.Node, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.conn.Query(`
		SELECT `+patientColumns+`
		FROM patients
		WHERE created_at >= ? AND lower(status) != ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`, since.UnixMilli(), patient.StatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*patient.Node
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		node := p.Node
		nodes = append(nodes, &node)
	}
	return nodes, rows.Err()
}

// GetPatient returns a single patient by ID, or ErrNotFound
func (d *DB) GetPatient(id string) (*StoredPatient, error) {
	row := d.conn.QueryRow(`SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchByIDPrefix finds patients whose ID starts with the given prefix
func (d *DB) SearchByIDPrefix(prefix string, limit int) ([]StoredPatient, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := d.conn.Query(`
		SELECT `+patientColumns+`
		FROM patients WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT ?
	`, escaped+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredPatient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ResolvePatient finds a patient by full ID or unique ID prefix
func (d *DB) ResolvePatient(reference string) (*StoredPatient, error) {
	p, err := d.GetPatient(reference)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	matches, err := d.SearchByIDPrefix(reference, 10)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("patient %s: %w", reference, ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		lines := make([]string, len(matches))
		for i, m := range matches {
			lines[i] = "  " + m.ID
		}
		return nil, fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a full patient ID instead.",
			reference, len(matches), strings.Join(lines, "\n"))
	}
}

// AssignFacility records the facility chosen for a patient
func (d *DB) AssignFacility(patientID, hospitalID string) error {
	res, err := d.conn.Exec(`UPDATE patients SET assigned_hospital_id = ? WHERE id = ?`, hospitalID, patientID)
	if err != nil {
		return fmt.Errorf("assigning facility: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("assigning facility: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("patient %s: %w", patientID, ErrNotFound)
	}
	return nil
}
