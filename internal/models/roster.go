package models

import (
	"encoding/json"
	"sort"
)

// StudentSet is a set of student identifiers.
type StudentSet map[string]struct{}

// NewStudentSet builds a set from ids, ignoring blanks.
func NewStudentSet(ids ...string) StudentSet {
	set := make(StudentSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

// Add inserts id unless it is blank.
func (s StudentSet) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

// Remove deletes id. Removing an absent id is a no-op.
func (s StudentSet) Remove(id string) {
	delete(s, id)
}

// Contains reports membership.
func (s StudentSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the set size.
func (s StudentSet) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order.
func (s StudentSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalJSON encodes the set as a sorted array.
func (s StudentSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array of ids.
func (s *StudentSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewStudentSet(ids...)
	return nil
}

// RosterResolution is a resolved roster with the counts behind it.
type RosterResolution struct {
	OfferingID string     `json:"offering_id"`
	CycleID    string     `json:"cycle_id"`
	Subgroup   bool       `json:"subgroup"`
	Students   StudentSet `json:"students"`
	Regular    int        `json:"regular"`
	// Retaking counts retaking students not already regular, and Released
	// only releases that removed someone, so Students.Len() equals
	// Regular + Retaking - Released.
	Retaking int `json:"retaking"`
	Released int `json:"released"`
}
