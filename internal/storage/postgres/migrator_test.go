package postgres

import (
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsFromFS_Embedded(t *testing.T) {
	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	for _, m := range migrations {
		if m.UpSQL == "" || m.DownSQL == "" {
			t.Fatalf("migration %d_%s must have both directions", m.Version, m.Name)
		}
	}
}

func TestLoadMigrationsFromFS_SortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/0002_add_index.up.sql":      {Data: []byte("CREATE INDEX x ON t (a);")},
		"sql/migrations/0002_add_index.down.sql":    {Data: []byte("DROP INDEX x;")},
		"sql/migrations/0001_create_table.up.sql":   {Data: []byte("CREATE TABLE t (a INT);")},
		"sql/migrations/0001_create_table.down.sql": {Data: []byte("DROP TABLE t;")},
	}

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Fatalf("migrations must be sorted by version, got %d,%d", migrations[0].Version, migrations[1].Version)
	}
}

func TestLoadMigrationsFromFS_Errors(t *testing.T) {
	cases := []struct {
		name string
		fsys fstest.MapFS
	}{
		{
			name: "missing down",
			fsys: fstest.MapFS{
				"sql/migrations/0001_create_table.up.sql": {Data: []byte("CREATE TABLE t (a INT);")},
			},
		},
		{
			name: "empty body",
			fsys: fstest.MapFS{
				"sql/migrations/0001_create_table.up.sql":   {Data: []byte("   ")},
				"sql/migrations/0001_create_table.down.sql": {Data: []byte("DROP TABLE t;")},
			},
		},
		{
			name: "bad file name",
			fsys: fstest.MapFS{
				"sql/migrations/create_table.sql": {Data: []byte("CREATE TABLE t (a INT);")},
			},
		},
		{
			name: "name mismatch",
			fsys: fstest.MapFS{
				"sql/migrations/0001_create_table.up.sql": {Data: []byte("CREATE TABLE t (a INT);")},
				"sql/migrations/0001_other_name.down.sql": {Data: []byte("DROP TABLE t;")},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadMigrationsFromFS(tc.fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
