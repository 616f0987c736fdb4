package store

import (
	"database/sql"
	"fmt"
)

// Slot is one position in the stored training sequence.
type Slot struct {
	Index  int    `json:"index"`
	PoseID string `json:"pose_id"`
	Active bool   `json:"active"`
}

// SlotRepository manages the training sequence.
type SlotRepository struct {
	db *sql.DB
}

// Slots returns the slot repository for this store.
func (s *Store) Slots() *SlotRepository {
	return &SlotRepository{db: s.db}
}

// List returns the slots ordered by index.
func (r *SlotRepository) List() ([]Slot, error) {
	rows, err := r.db.Query(`SELECT slot, pose_id, active FROM pose_slots ORDER BY slot`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var s Slot
		var active int
		if err := rows.Scan(&s.Index, &s.PoseID, &active); err != nil {
			return nil, err
		}
		s.Active = active != 0
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// Replace stores slots as the whole sequence, renumbering them from zero.
func (r *SlotRepository) Replace(slots []Slot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pose_slots`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO pose_slots (slot, pose_id, active) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range slots {
		if _, err := stmt.Exec(i, s.PoseID, boolToInt(s.Active)); err != nil {
			return fmt.Errorf("insert slot %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// SetActive toggles one slot.
func (r *SlotRepository) SetActive(index int, active bool) error {
	result, err := r.db.Exec(`UPDATE pose_slots SET active = ? WHERE slot = ?`, boolToInt(active), index)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
