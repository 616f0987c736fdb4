package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/asana/internal/skeleton"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInUse is returned when deleting a pose that a slot still refers to.
	ErrInUse = errors.New("pose is used by a training slot")
)

// Pose represents a pose definition stored in the database.
type Pose struct {
	ID           string
	Name         string
	SanskritName string
	Category     string
	Difficulty   int
	Description  string
	Builtin      bool
	Samples      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PoseRepository provides CRUD operations for poses and their reference
// skeletons.
type PoseRepository struct {
	db *sql.DB
}

// Poses returns the pose repository for this store.
func (s *Store) Poses() *PoseRepository {
	return &PoseRepository{db: s.db}
}

const poseColumns = `id, name, sanskrit_name, category, difficulty, description, builtin, samples, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPose(row rowScanner) (*Pose, error) {
	p := &Pose{}
	var builtin int
	err := row.Scan(&p.ID, &p.Name, &p.SanskritName, &p.Category, &p.Difficulty,
		&p.Description, &builtin, &p.Samples, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Builtin = builtin != 0
	return p, nil
}

// Create inserts a new pose into the database.
func (r *PoseRepository) Create(p *Pose) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Difficulty == 0 {
		p.Difficulty = 1
	}

	_, err := r.db.Exec(
		`INSERT INTO poses (`+poseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.SanskritName, p.Category, p.Difficulty, p.Description,
		boolToInt(p.Builtin), p.Samples, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a pose by its ID.
func (r *PoseRepository) GetByID(id string) (*Pose, error) {
	p, err := scanPose(r.db.QueryRow(`SELECT `+poseColumns+` FROM poses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// GetByName retrieves a pose by its name.
func (r *PoseRepository) GetByName(name string) (*Pose, error) {
	p, err := scanPose(r.db.QueryRow(`SELECT `+poseColumns+` FROM poses WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// List retrieves all poses ordered by difficulty then name.
func (r *PoseRepository) List() ([]*Pose, error) {
	rows, err := r.db.Query(`SELECT ` + poseColumns + ` FROM poses ORDER BY difficulty, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var poses []*Pose
	for rows.Next() {
		p, err := scanPose(rows)
		if err != nil {
			return nil, err
		}
		poses = append(poses, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return poses, nil
}

// Update updates an existing pose in the database.
func (r *PoseRepository) Update(p *Pose) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE poses SET name = ?, sanskrit_name = ?, category = ?, difficulty = ?, description = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.SanskritName, p.Category, p.Difficulty, p.Description, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a pose and its keypoints, samples and cues. Poses referenced
// by a training slot cannot be deleted.
func (r *PoseRepository) Delete(id string) error {
	var slots int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM pose_slots WHERE pose_id = ?`, id).Scan(&slots); err != nil {
		return err
	}
	if slots > 0 {
		return ErrInUse
	}

	result, err := r.db.Exec(`DELETE FROM poses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// SetReference replaces the reference skeleton of a pose.
func (r *PoseRepository) SetReference(poseID string, ref skeleton.Skeleton) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE poses SET updated_at = ? WHERE id = ?`, time.Now(), poseID)
	if err != nil {
		return err
	}
	if err := checkAffected(result); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM pose_keypoints WHERE pose_id = ?`, poseID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO pose_keypoints (pose_id, name, x, y, confidence) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range ref.Names() {
		kp, _ := ref.Get(name)
		if _, err := stmt.Exec(poseID, string(name), kp.X, kp.Y, kp.Confidence); err != nil {
			return fmt.Errorf("insert keypoint %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// Reference returns the reference skeleton of a pose. A pose without stored
// keypoints yields an empty skeleton.
func (r *PoseRepository) Reference(poseID string) (skeleton.Skeleton, error) {
	rows, err := r.db.Query(`SELECT name, x, y, confidence FROM pose_keypoints WHERE pose_id = ?`, poseID)
	if err != nil {
		return skeleton.Skeleton{}, err
	}
	defer rows.Close()

	points := make(map[skeleton.Name]skeleton.Keypoint)
	for rows.Next() {
		var name string
		var kp skeleton.Keypoint
		if err := rows.Scan(&name, &kp.X, &kp.Y, &kp.Confidence); err != nil {
			return skeleton.Skeleton{}, err
		}
		points[skeleton.Name(name)] = kp
	}
	if err := rows.Err(); err != nil {
		return skeleton.Skeleton{}, err
	}

	return skeleton.New(points), nil
}

// EnsureBuiltin inserts p with its reference skeleton unless a pose with the
// same ID already exists. It reports whether the pose was inserted.
func (r *PoseRepository) EnsureBuiltin(p *Pose, ref skeleton.Skeleton) (bool, error) {
	if _, err := r.GetByID(p.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	p.Builtin = true
	if err := r.Create(p); err != nil {
		return false, fmt.Errorf("create pose %s: %w", p.ID, err)
	}
	if err := r.SetReference(p.ID, ref); err != nil {
		return false, fmt.Errorf("store reference for %s: %w", p.ID, err)
	}
	return true, nil
}
