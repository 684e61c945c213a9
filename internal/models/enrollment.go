package models

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive      EnrollmentStatus = "active"
	EnrollmentStatusInactive    EnrollmentStatus = "inactive"
	EnrollmentStatusGraduated   EnrollmentStatus = "graduated"
	EnrollmentStatusTransferred EnrollmentStatus = "transferred"
)

// Enrollment captures a student's registration to a course.
type Enrollment struct {
	StudentID string           `db:"student_id" json:"student_id" validate:"required"`
	CourseID  string           `db:"course_id" json:"course_id" validate:"required"`
	Status    EnrollmentStatus `db:"status" json:"status" validate:"required,oneof=active inactive graduated transferred"`
}

// SubgroupAssignment places a student in an offering that is taught in subgroups.
type SubgroupAssignment struct {
	StudentID  string `db:"student_id" json:"student_id" validate:"required"`
	OfferingID string `db:"offering_id" json:"offering_id" validate:"required"`
	CycleID    string `db:"cycle_id" json:"cycle_id" validate:"required"`
	Active     bool   `db:"is_active" json:"active"`
}

// RetakeStatus tracks the lifecycle of a retake.
type RetakeStatus string

// Possible retake statuses.
const (
	RetakeStatusActive    RetakeStatus = "active"
	RetakeStatusFinalized RetakeStatus = "finalized"
	RetakeStatusCancelled RetakeStatus = "cancelled"
)

// RetakeAssignment records a student repeating an offering from an earlier
// year level, optionally released from one current-year offering in exchange.
type RetakeAssignment struct {
	ID                 string       `db:"id" json:"id" validate:"required"`
	StudentID          string       `db:"student_id" json:"student_id" validate:"required"`
	OfferingID         string       `db:"offering_id" json:"offering_id" validate:"required"`
	ReleasedOfferingID *string      `db:"released_offering_id" json:"released_offering_id,omitempty"`
	CycleID            string       `db:"cycle_id" json:"cycle_id" validate:"required"`
	Status             RetakeStatus `db:"status" json:"status" validate:"required,oneof=active finalized cancelled"`
}

// Releases reports whether the retake excuses the student from offeringID.
func (r RetakeAssignment) Releases(offeringID string) bool {
	return r.ReleasedOfferingID != nil && *r.ReleasedOfferingID != "" && *r.ReleasedOfferingID == offeringID
}

// RetakeFilter scopes retake lookups either by offering or by student. An
// offering filter matches both the retaken and the released offering.
type RetakeFilter struct {
	OfferingID string
	StudentID  string
}
