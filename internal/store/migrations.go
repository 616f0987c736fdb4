package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Poses table - built-in catalog entries and user-defined poses
		`CREATE TABLE IF NOT EXISTS poses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			sanskrit_name TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			difficulty INTEGER NOT NULL DEFAULT 1 CHECK(difficulty BETWEEN 1 AND 5),
			description TEXT NOT NULL DEFAULT '',
			builtin INTEGER NOT NULL DEFAULT 0,
			samples INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Pose keypoints table - reference skeleton for each pose
		`CREATE TABLE IF NOT EXISTS pose_keypoints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pose_id TEXT NOT NULL REFERENCES poses(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			confidence REAL NOT NULL,
			UNIQUE(pose_id, name)
		)`,

		// Pose samples table - raw recorded detections for training
		`CREATE TABLE IF NOT EXISTS pose_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pose_id TEXT NOT NULL REFERENCES poses(id) ON DELETE CASCADE,
			sample_index INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Pose slots table - the ordered training sequence
		`CREATE TABLE IF NOT EXISTS pose_slots (
			slot INTEGER PRIMARY KEY,
			pose_id TEXT NOT NULL REFERENCES poses(id),
			active INTEGER NOT NULL DEFAULT 1
		)`,

		// Cues table - plugin actions run on training events
		`CREATE TABLE IF NOT EXISTS cues (
			id TEXT PRIMARY KEY,
			pose_id TEXT REFERENCES poses(id) ON DELETE CASCADE,
			event_kind TEXT NOT NULL,
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sessions table - one row per training session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			frames INTEGER NOT NULL DEFAULT 0,
			average_accuracy REAL NOT NULL DEFAULT 0,
			completions INTEGER NOT NULL DEFAULT 0,
			best_pose TEXT NOT NULL DEFAULT ''
		)`,

		// Pose performance table - cumulative statistics across sessions
		`CREATE TABLE IF NOT EXISTS pose_performance (
			pose_id TEXT PRIMARY KEY,
			attempts INTEGER NOT NULL DEFAULT 0,
			average_accuracy REAL NOT NULL DEFAULT 0,
			best_accuracy REAL NOT NULL DEFAULT 0,
			completions INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_pose_keypoints_pose_id ON pose_keypoints(pose_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pose_samples_pose_id ON pose_samples(pose_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cues_event_kind ON cues(event_kind)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
