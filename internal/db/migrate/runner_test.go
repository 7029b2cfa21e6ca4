package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"zeno-access/internal/db"
)

func TestRun_EmptyDSN(t *testing.T) {
	err := Run("", Up)
	if err == nil {
		t.Fatal("Run with empty DSN should return error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL is not set") {
		t.Errorf("error = %q, should mention DATABASE_URL", err.Error())
	}
}

func TestParseDirection(t *testing.T) {
	testCases := []struct {
		in      string
		wantErr bool
	}{
		{"up", false},
		{"down", false},
		{"", true},
		{"UP", true},
		{"Up", true},
		{"sideways", true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			d, err := ParseDirection(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParseDirection(%q) should fail", tc.in)
				}
				return
			}
			if err != nil || string(d) != tc.in {
				t.Errorf("ParseDirection(%q) = %q, %v", tc.in, d, err)
			}
		})
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	err := Run("postgres://localhost/test", Direction("left"))
	if err == nil || !strings.Contains(err.Error(), "direction") {
		t.Errorf("Run with bad direction: err = %v", err)
	}
}

func TestRun_InvalidDSN(t *testing.T) {
	for _, dsn := range []string{"invalid-dsn", "://localhost/test", "postgres://localhost with spaces/test"} {
		if err := Run(dsn, Up); err == nil {
			t.Errorf("Run with invalid DSN %q should return error", dsn)
		}
	}
}

func TestMigrationFS_PairsUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(db.MigrationFS, "migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
	body, err := fs.ReadFile(db.MigrationFS, "migrations/000001_business_users.up.sql")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(body), "UNIQUE (business_id, admin_user_id)") {
		t.Error("business_users must be unique per (business_id, admin_user_id)")
	}
	if !strings.Contains(string(body), "org_id     BIGINT      NOT NULL") {
		t.Error("businesses must belong to an organization")
	}
	if !strings.Contains(string(body), "REFERENCES businesses (id)") {
		t.Error("business_users must reference businesses")
	}
}
