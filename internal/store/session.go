package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/asana/internal/session"
)

// SessionRepository persists session summaries.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Save inserts or replaces a session summary.
func (r *SessionRepository) Save(sum session.Summary) error {
	var ended sql.NullTime
	if !sum.EndedAt.IsZero() {
		ended = sql.NullTime{Time: sum.EndedAt, Valid: true}
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, ended_at, frames, average_accuracy, completions, best_pose)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			ended_at = excluded.ended_at,
			frames = excluded.frames,
			average_accuracy = excluded.average_accuracy,
			completions = excluded.completions,
			best_pose = excluded.best_pose`,
		sum.ID, sum.StartedAt, ended, sum.Frames, sum.AverageAccuracy, sum.Completions, sum.BestPose,
	)
	return err
}

const sessionColumns = `id, started_at, ended_at, frames, average_accuracy, completions, best_pose`

func scanSession(row rowScanner) (session.Summary, error) {
	var sum session.Summary
	var ended sql.NullTime
	err := row.Scan(&sum.ID, &sum.StartedAt, &ended, &sum.Frames, &sum.AverageAccuracy, &sum.Completions, &sum.BestPose)
	if err != nil {
		return session.Summary{}, err
	}
	if ended.Valid {
		sum.EndedAt = ended.Time
	}
	return sum, nil
}

// Get retrieves a session summary by ID. Per-pose statistics are not stored
// per session; see PerformanceRepository.
func (r *SessionRepository) Get(id string) (session.Summary, error) {
	sum, err := scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return session.Summary{}, ErrNotFound
	}
	return sum, err
}

// List returns the most recent sessions, newest first. A limit of zero or
// less returns every session.
func (r *SessionRepository) List(limit int) ([]session.Summary, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []session.Summary
	for rows.Next() {
		sum, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Performance is the cumulative record of one pose across sessions.
type Performance struct {
	PoseID          string    `json:"pose_id"`
	Attempts        int       `json:"attempts"`
	AverageAccuracy float64   `json:"average_accuracy"`
	BestAccuracy    float64   `json:"best_accuracy"`
	Completions     int       `json:"completions"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PerformanceRepository aggregates per-pose statistics.
type PerformanceRepository struct {
	db *sql.DB
}

// Performance returns the performance repository for this store.
func (s *Store) Performance() *PerformanceRepository {
	return &PerformanceRepository{db: s.db}
}

// Record merges the per-pose statistics of a session into the cumulative
// record. Attempts count scored frames.
func (r *PerformanceRepository) Record(stats []session.PoseStats) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, st := range stats {
		if st.Frames == 0 && st.Completions == 0 {
			continue
		}

		var cur Performance
		err := tx.QueryRow(
			`SELECT attempts, average_accuracy, best_accuracy, completions FROM pose_performance WHERE pose_id = ?`,
			st.PoseID,
		).Scan(&cur.Attempts, &cur.AverageAccuracy, &cur.BestAccuracy, &cur.Completions)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		total := cur.Attempts + st.Frames
		avg := cur.AverageAccuracy
		if total > 0 {
			avg = (cur.AverageAccuracy*float64(cur.Attempts) + st.AverageAccuracy*float64(st.Frames)) / float64(total)
		}
		best := cur.BestAccuracy
		if st.BestAccuracy > best {
			best = st.BestAccuracy
		}

		_, err = tx.Exec(
			`INSERT INTO pose_performance (pose_id, attempts, average_accuracy, best_accuracy, completions, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(pose_id) DO UPDATE SET
				attempts = excluded.attempts,
				average_accuracy = excluded.average_accuracy,
				best_accuracy = excluded.best_accuracy,
				completions = excluded.completions,
				updated_at = excluded.updated_at`,
			st.PoseID, total, avg, best, cur.Completions+st.Completions, now,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List returns every pose record, best average first.
func (r *PerformanceRepository) List() ([]Performance, error) {
	rows, err := r.db.Query(
		`SELECT pose_id, attempts, average_accuracy, best_accuracy, completions, updated_at
		 FROM pose_performance
		 ORDER BY average_accuracy DESC, pose_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Performance
	for rows.Next() {
		var p Performance
		if err := rows.Scan(&p.PoseID, &p.Attempts, &p.AverageAccuracy, &p.BestAccuracy, &p.Completions, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the record for one pose.
func (r *PerformanceRepository) Get(poseID string) (Performance, error) {
	var p Performance
	err := r.db.QueryRow(
		`SELECT pose_id, attempts, average_accuracy, best_accuracy, completions, updated_at
		 FROM pose_performance WHERE pose_id = ?`,
		poseID,
	).Scan(&p.PoseID, &p.Attempts, &p.AverageAccuracy, &p.BestAccuracy, &p.Completions, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Performance{}, ErrNotFound
	}
	return p, err
}
