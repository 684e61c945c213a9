package models

import "strings"

// MaxOfferingTeachers bounds the co-assigned teacher list of an offering.
const MaxOfferingTeachers = 3

// Subject represents a catalog entry independent of any course.
type Subject struct {
	ID   string `db:"id" json:"id" validate:"required"`
	Name string `db:"name" json:"name" validate:"required"`
	Code string `db:"code" json:"code"`
}

// SubjectOffering is a subject as taught in one specific course. Statistics
// are always computed against offerings.
type SubjectOffering struct {
	ID               string   `db:"id" json:"id" validate:"required"`
	SubjectID        string   `db:"subject_id" json:"subject_id" validate:"required"`
	CourseID         string   `db:"course_id" json:"course_id" validate:"required"`
	TeacherIDs       []string `db:"-" json:"teacher_ids" validate:"max=3,dive,required"`
	RequiresSubgroup bool     `db:"requires_subgroup" json:"requires_subgroup"`
	SubjectName      string   `db:"subject_name" json:"subject_name,omitempty"`
	SubjectCode      string   `db:"subject_code" json:"subject_code,omitempty"`
	CourseName       string   `db:"course_name" json:"course_name,omitempty"`
	CourseYear       int      `db:"course_year" json:"course_year,omitempty"`
}

// HasTeacher reports whether teacherID is one of the offering's assigned teachers.
func (o SubjectOffering) HasTeacher(teacherID string) bool {
	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return false
	}
	for _, id := range o.TeacherIDs {
		if id == teacherID {
			return true
		}
	}
	return false
}

// CompactTeacherIDs collapses the nullable teacher slots stored per offering
// into an ordered list, dropping empty and duplicate slots.
func CompactTeacherIDs(slots ...*string) []string {
	ids := make([]string, 0, MaxOfferingTeachers)
	seen := make(map[string]struct{}, MaxOfferingTeachers)
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		id := strings.TrimSpace(*slot)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if len(ids) == MaxOfferingTeachers {
			break
		}
	}
	return ids
}
