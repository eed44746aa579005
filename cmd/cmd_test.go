package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HenryLodge/viro-sub000/internal/db"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverDB(t *testing.T) {
	dir := t.TempDir()
	envDB := filepath.Join(dir, "env.db")
	flagDB := filepath.Join(dir, "flag.db")
	touch(t, envDB)
	touch(t, flagDB)

	t.Cleanup(func() { dbPath = "" })

	t.Run("env wins over flag", func(t *testing.T) {
		t.Setenv("VIRO_DB", envDB)
		dbPath = flagDB
		got, err := DiscoverDB()
		if err != nil {
			t.Fatal(err)
		}
		if got != envDB {
			t.Errorf("got %s, want %s", got, envDB)
		}
	})

	t.Run("missing flag path is an error", func(t *testing.T) {
		t.Setenv("VIRO_DB", "")
		dbPath = filepath.Join(dir, "absent.db")
		if _, err := DiscoverDB(); err == nil {
			t.Error("expected error for missing --db path")
		}
	})

	t.Run("walks up from working directory", func(t *testing.T) {
		t.Setenv("VIRO_DB", "")
		dbPath = ""
		root := t.TempDir()
		touch(t, filepath.Join(root, dbFileName))
		nested := filepath.Join(root, "a", "b")
		if err := os.MkdirAll(nested, 0o755); err != nil {
			t.Fatal(err)
		}
		t.Chdir(nested)

		got, err := DiscoverDB()
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(got) != dbFileName {
			t.Errorf("got %s", got)
		}
	})
}

func TestImportRankAssign(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "viro.db")
	t.Setenv("VIRO_DB", dbFile)
	t.Cleanup(func() {
		rankAssign = false
		rankTop = 3
		rootCmd.SetArgs(nil)
	})

	patients := filepath.Join(dir, "patients.json")
	if err := os.WriteFile(patients, []byte(`[
		{"id": "p-0001", "symptoms": "[\"fever\"]", "tier": "critical", "status": "triaged", "lat": 0, "lng": 0},
		{"id": "p-0002", "tier": "nonsense"}
	]`), 0o644); err != nil {
		t.Fatal(err)
	}
	hospitals := filepath.Join(dir, "hospitals.json")
	if err := os.WriteFile(hospitals, []byte(`[
		{"id": "near", "name": "Near Clinic", "lat": 0, "lng": 0.1, "available_beds": 20, "wait_minutes": 60, "specialties": ["pediatrics"]},
		{"id": "trauma", "name": "Trauma Center", "lat": 0, "lng": 0.5, "available_beds": 10, "wait_minutes": 30, "specialties": ["trauma"]},
		{"id": "far", "name": "Far General", "lat": 0, "lng": 1.0, "available_beds": 5, "wait_minutes": 10}
	]`), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"import", "patients", patients},
		{"import", "hospitals", hospitals},
		{"rank", "p-0001", "--top", "1", "--assign"},
	} {
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("viro %s: %v", strings.Join(args, " "), err)
		}
	}

	d, err := db.OpenDB(dbFile)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	if _, err := d.GetPatient("p-0002"); err == nil {
		t.Error("invalid record should have been skipped")
	}
	p, err := d.GetPatient("p-0001")
	if err != nil {
		t.Fatal(err)
	}
	if p.AssignedHospitalID == nil || *p.AssignedHospitalID != "trauma" {
		t.Errorf("assigned = %v, want trauma", p.AssignedHospitalID)
	}
}

func TestTruncTitle(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"34y · fever, cough", 5, "34y ..."},
	}
	for _, tt := range tests {
		if got := truncTitle(tt.in, tt.max); got != tt.want {
			t.Errorf("truncTitle(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
