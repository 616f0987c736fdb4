package similarity

import (
	"sort"
	"sync"

	"github.com/ayusman/asana/internal/skeleton"
)

// Reference is a named reference skeleton registered with a Matcher.
type Reference struct {
	ID       string            // Unique identifier, usually the pose ID
	Name     string            // Human-readable name
	Skeleton skeleton.Skeleton // Target keypoints
}

// Match is the result of comparing a detected skeleton against one reference.
type Match struct {
	Reference *Reference
	Result    Result
}

// Matcher ranks a detected skeleton against every registered reference.
// It is safe for concurrent use.
type Matcher struct {
	mu         sync.RWMutex
	references []*Reference
}

// NewMatcher creates an empty Matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		references: make([]*Reference, 0),
	}
}

// AddReference registers r, replacing any reference with the same ID.
func (m *Matcher) AddReference(r *Reference) {
	if r == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.references {
		if existing.ID == r.ID {
			m.references[i] = r
			return
		}
	}
	m.references = append(m.references, r)
}

// RemoveReference removes the reference with the given ID.
func (m *Matcher) RemoveReference(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.references {
		if r.ID == id {
			m.references = append(m.references[:i], m.references[i+1:]...)
			return
		}
	}
}

// Reference returns the registered reference with the given ID.
func (m *Matcher) Reference(id string) (*Reference, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.references {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Len returns the number of registered references.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.references)
}

// Match compares detected against every reference and returns those scoring
// at or above threshold, best first.
func (m *Matcher) Match(detected skeleton.Skeleton, threshold float64) []Match {
	if detected.Empty() {
		return nil
	}

	m.mu.RLock()
	refs := make([]*Reference, len(m.references))
	copy(refs, m.references)
	m.mu.RUnlock()

	var matches []Match
	for _, ref := range refs {
		result := Compare(ref.Skeleton, detected, threshold)
		if !result.Matched {
			continue
		}
		matches = append(matches, Match{Reference: ref, Result: result})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Result.Overall > matches[j].Result.Overall
	})

	return matches
}
