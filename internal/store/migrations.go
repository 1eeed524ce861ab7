package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per period of cursor mode
		`CREATE TABLE IF NOT EXISTS cursor_sessions (
			id TEXT PRIMARY KEY,
			entered_by TEXT NOT NULL CHECK(entered_by IN ('gesture', 'manual')),
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			exit_reason TEXT CHECK(exit_reason IN ('gesture', 'inactivity', 'manual')),
			clicks INTEGER NOT NULL DEFAULT 0,
			scrolls INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cursor_sessions_started_at ON cursor_sessions(started_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
