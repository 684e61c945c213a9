package models

import "time"

// AttendanceStatus represents the mark recorded for a student on a day.
type AttendanceStatus string

const (
	AttendanceStatusPresent             AttendanceStatus = "present"
	AttendanceStatusQuarterAbsence      AttendanceStatus = "quarter_absence"
	AttendanceStatusHalfAbsence         AttendanceStatus = "half_absence"
	AttendanceStatusThreeQuarterAbsence AttendanceStatus = "three_quarter_absence"
	AttendanceStatusAbsent              AttendanceStatus = "absent"
	AttendanceStatusJustified           AttendanceStatus = "justified"
	AttendanceStatusExcluded            AttendanceStatus = "excluded"
)

// AttendanceStatuses lists every status in display order.
var AttendanceStatuses = []AttendanceStatus{
	AttendanceStatusPresent,
	AttendanceStatusQuarterAbsence,
	AttendanceStatusHalfAbsence,
	AttendanceStatusThreeQuarterAbsence,
	AttendanceStatusAbsent,
	AttendanceStatusJustified,
	AttendanceStatusExcluded,
}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusQuarterAbsence, AttendanceStatusHalfAbsence,
		AttendanceStatusThreeQuarterAbsence, AttendanceStatusAbsent, AttendanceStatusJustified,
		AttendanceStatusExcluded:
		return true
	default:
		return false
	}
}

// AbsenceWeight returns the fixed contribution of the status to the absence
// tally. Justified marks weigh zero here; whether they count as a full
// absence is an aggregation policy.
func (s AttendanceStatus) AbsenceWeight() float64 {
	switch s {
	case AttendanceStatusAbsent:
		return 1.0
	case AttendanceStatusThreeQuarterAbsence:
		return 0.75
	case AttendanceStatusHalfAbsence:
		return 0.5
	case AttendanceStatusQuarterAbsence:
		return 0.25
	default:
		return 0
	}
}

// Counted reports whether the status belongs in the attendance denominator.
func (s AttendanceStatus) Counted() bool {
	return s != AttendanceStatusExcluded
}

// AttendanceRecord is a single per-day mark for a student in a course.
type AttendanceRecord struct {
	StudentID  string           `db:"student_id" json:"student_id" validate:"required"`
	CourseID   string           `db:"course_id" json:"course_id" validate:"required"`
	Date       time.Time        `db:"date" json:"date" validate:"required"`
	TermIndex  int              `db:"term_index" json:"term_index" validate:"min=0,max=2"`
	Status     AttendanceStatus `db:"status" json:"status" validate:"required,attendance_status"`
	ReasonCode *string          `db:"reason_code" json:"reason_code,omitempty"`
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether the calendar day of t falls inside the range.
// Days are compared by their own year, month and day, so a bound at local
// midnight and a UTC-midnight DATE column name the same day. A zero bound
// leaves that side open.
func (r DateRange) Contains(t time.Time) bool {
	day := CivilDay(t)
	if !r.From.IsZero() && day.Before(CivilDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && day.After(CivilDay(r.To)) {
		return false
	}
	return true
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Inverted reports whether both bounds are set and From is a later day than To.
func (r DateRange) Inverted() bool {
	return !r.From.IsZero() && !r.To.IsZero() && CivilDay(r.From).After(CivilDay(r.To))
}

// CivilDay returns midnight UTC of the year, month and day t shows in its
// own location.
func CivilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
