package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Cue binds a training event to a plugin action. An empty PoseID matches
// every pose.
type Cue struct {
	ID         string
	PoseID     string
	EventKind  string
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// CueRepository provides CRUD operations for cues.
type CueRepository struct {
	db *sql.DB
}

// Cues returns the cue repository for this store.
func (s *Store) Cues() *CueRepository {
	return &CueRepository{db: s.db}
}

const cueColumns = `id, pose_id, event_kind, plugin_name, action_name, config, enabled, created_at`

func scanCue(row rowScanner) (*Cue, error) {
	c := &Cue{}
	var poseID sql.NullString
	var config string
	var enabled int

	err := row.Scan(&c.ID, &poseID, &c.EventKind, &c.PluginName, &c.ActionName, &config, &enabled, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	c.PoseID = poseID.String
	c.Config = json.RawMessage(config)
	c.Enabled = enabled != 0
	return c, nil
}

func nullablePose(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

func cueConfig(c *Cue) string {
	if len(c.Config) == 0 {
		return "{}"
	}
	return string(c.Config)
}

// Create inserts a new cue into the database.
func (r *CueRepository) Create(c *Cue) error {
	c.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO cues (`+cueColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, nullablePose(c.PoseID), c.EventKind, c.PluginName, c.ActionName,
		cueConfig(c), boolToInt(c.Enabled), c.CreatedAt,
	)
	return err
}

// GetByID retrieves a cue by its ID.
func (r *CueRepository) GetByID(id string) (*Cue, error) {
	c, err := scanCue(r.db.QueryRow(`SELECT `+cueColumns+` FROM cues WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// List retrieves all cues, newest first.
func (r *CueRepository) List() ([]*Cue, error) {
	return r.query(`SELECT ` + cueColumns + ` FROM cues ORDER BY created_at DESC`)
}

// ListFor returns the enabled cues for an event kind on a pose, including
// cues bound to every pose.
func (r *CueRepository) ListFor(eventKind, poseID string) ([]*Cue, error) {
	return r.query(
		`SELECT `+cueColumns+` FROM cues
		 WHERE enabled = 1 AND event_kind = ? AND (pose_id IS NULL OR pose_id = ?)
		 ORDER BY created_at`,
		eventKind, poseID,
	)
}

func (r *CueRepository) query(q string, args ...any) ([]*Cue, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cues []*Cue
	for rows.Next() {
		c, err := scanCue(rows)
		if err != nil {
			return nil, err
		}
		cues = append(cues, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cues, nil
}

// Update updates an existing cue in the database.
func (r *CueRepository) Update(c *Cue) error {
	result, err := r.db.Exec(
		`UPDATE cues SET pose_id = ?, event_kind = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		nullablePose(c.PoseID), c.EventKind, c.PluginName, c.ActionName, cueConfig(c), boolToInt(c.Enabled), c.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a cue from the database by its ID.
func (r *CueRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM cues WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
