package shared

import (
	"testing"
)

func TestRunMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tables := []string{"accounts", "songs", "playlists", "playlist_songs", "accounts_sequence", "songs_sequence", "playlists_sequence"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}

	t.Run("Idempotent", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Fatalf("re-running migrations should be a no-op: %v", err)
		}
	})

	t.Run("Sequence Tables Seeded", func(t *testing.T) {
		var value int
		if err := db.QueryRow("SELECT value FROM songs_sequence WHERE id = 1").Scan(&value); err != nil {
			t.Fatalf("failed to read songs_sequence: %v", err)
		}
		if value != 0 {
			t.Errorf("expected initial sequence value 0, got %d", value)
		}
	})
}

func TestRollbackMigration(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()

	t.Run("Nothing To Rollback", func(t *testing.T) {
		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when no migrations applied")
		}
	})

	t.Run("Rollback Applied Migration", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = 'songs'").Scan(&name)
		if err == nil {
			t.Error("expected songs table to be dropped")
		}
	})
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("failed to load migrations: %v", err)
	}

	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}

	for _, m := range migrations {
		if m.Up == "" {
			t.Errorf("migration %d missing up script", m.Version)
		}
		if m.Down == "" {
			t.Errorf("migration %d missing down script", m.Version)
		}
	}
}
