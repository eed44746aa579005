package db

import (
	"fmt"

	"github.com/HenryLodge/viro-sub000/internal/routing"
)

// InsertHospitals upserts facility records in a single transaction
func (d *DB) InsertHospitals(hospitals []routing.Hospital) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO hospitals (id, name, lat, lng, total_capacity, available_beds,
		                       specialties, wait_minutes, phone, address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, lat = excluded.lat, lng = excluded.lng,
			total_capacity = excluded.total_capacity, available_beds = excluded.available_beds,
			specialties = excluded.specialties, wait_minutes = excluded.wait_minutes,
			phone = excluded.phone, address = excluded.address
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing hospital insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range hospitals {
		_, err := stmt.Exec(
			h.ID, h.Name, h.Lat, h.Lng, h.TotalCapacity, h.AvailableBeds,
			encodeList(h.Specialties), h.WaitMinutes, h.Phone, h.Address,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting hospital %s: %w", h.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing hospitals: %w", err)
	}
	return len(hospitals), nil
}

// AllHospitals returns every facility ordered by id
func (d *DB) AllHospitals() ([]routing.Hospital, error) {
	rows, err := d.conn.Query(`
		SELECT id, name, lat, lng, total_capacity, available_beds,
		       specialties, wait_minutes, phone, address
		FROM hospitals ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []routing.Hospital
	for rows.Next() {
		var (
			h           routing.Hospital
			specialties string
		)
		err := rows.Scan(
			&h.ID, &h.Name, &h.Lat, &h.Lng, &h.TotalCapacity, &h.AvailableBeds,
			&specialties, &h.WaitMinutes, &h.Phone, &h.Address,
		)
		if err != nil {
			return nil, err
		}
		h.Specialties = decodeList(specialties)
		out = append(out, h)
	}
	return out, rows.Err()
}
