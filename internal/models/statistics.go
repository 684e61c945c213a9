package models

// RegularityTier is the three-level attendance standing.
type RegularityTier string

const (
	TierRegular RegularityTier = "regular"
	TierAtRisk  RegularityTier = "at_risk"
	TierFree    RegularityTier = "free"
)

// AttendanceCounts tallies marks per status.
type AttendanceCounts struct {
	Present             int `json:"present"`
	QuarterAbsence      int `json:"quarter_absence"`
	HalfAbsence         int `json:"half_absence"`
	ThreeQuarterAbsence int `json:"three_quarter_absence"`
	Absent              int `json:"absent"`
	Justified           int `json:"justified"`
	Excluded            int `json:"excluded"`
}

// Add counts one mark. Unknown statuses are ignored.
func (c *AttendanceCounts) Add(status AttendanceStatus) {
	switch status {
	case AttendanceStatusPresent:
		c.Present++
	case AttendanceStatusQuarterAbsence:
		c.QuarterAbsence++
	case AttendanceStatusHalfAbsence:
		c.HalfAbsence++
	case AttendanceStatusThreeQuarterAbsence:
		c.ThreeQuarterAbsence++
	case AttendanceStatusAbsent:
		c.Absent++
	case AttendanceStatusJustified:
		c.Justified++
	case AttendanceStatusExcluded:
		c.Excluded++
	}
}

// Merge adds other into c.
func (c *AttendanceCounts) Merge(other AttendanceCounts) {
	c.Present += other.Present
	c.QuarterAbsence += other.QuarterAbsence
	c.HalfAbsence += other.HalfAbsence
	c.ThreeQuarterAbsence += other.ThreeQuarterAbsence
	c.Absent += other.Absent
	c.Justified += other.Justified
	c.Excluded += other.Excluded
}

// Total returns the number of marks counted.
func (c AttendanceCounts) Total() int {
	return c.Present + c.QuarterAbsence + c.HalfAbsence + c.ThreeQuarterAbsence + c.Absent + c.Justified + c.Excluded
}

// StudentAttendance is the per-student attendance result.
type StudentAttendance struct {
	StudentID     string           `json:"student_id"`
	Counts        AttendanceCounts `json:"counts"`
	TotalAbsences float64          `json:"total_absences"`
	EffectiveDays int              `json:"effective_days"`
	Percentage    float64          `json:"percentage"`
	Tier          RegularityTier   `json:"tier"`
}

// AttendanceRollup aggregates students of a course.
type AttendanceRollup struct {
	Students   int              `json:"students"`
	Counts     AttendanceCounts `json:"counts"`
	Regular    int              `json:"regular"`
	AtRisk     int              `json:"at_risk"`
	Free       int              `json:"free"`
	RegularPct float64          `json:"regular_pct"`
	AtRiskPct  float64          `json:"at_risk_pct"`
	FreePct    float64          `json:"free_pct"`
}

// WeekdayAttendance groups marks by school weekday.
type WeekdayAttendance struct {
	Weekday string           `json:"weekday"`
	Counts  AttendanceCounts `json:"counts"`
}

// ReasonCount is the number of marks carrying a reason code.
type ReasonCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// AttendanceReport is the attendance aggregation for a course and range.
type AttendanceReport struct {
	CourseID      string              `json:"course_id"`
	Range         DateRange           `json:"range"`
	Students      []StudentAttendance `json:"students"`
	Course        AttendanceRollup    `json:"course"`
	ByWeekday     []WeekdayAttendance `json:"by_weekday"`
	CommonReasons []ReasonCount       `json:"common_reasons,omitempty"`
}

// GradeOutcome is the classification of one student's grade.
type GradeOutcome string

const (
	OutcomePassed   GradeOutcome = "passed"
	OutcomeFailed   GradeOutcome = "failed"
	OutcomeUngraded GradeOutcome = "ungraded"
)

// StudentGrade is a classified grade for one student.
type StudentGrade struct {
	StudentID string       `json:"student_id"`
	Field     GradeField   `json:"field,omitempty"`
	Raw       string       `json:"raw,omitempty"`
	Value     *float64     `json:"value,omitempty"`
	Outcome   GradeOutcome `json:"outcome"`
}

// GradeClassification holds pass/fail/ungraded counts for an offering.
type GradeClassification struct {
	OfferingID string         `json:"offering_id"`
	Field      GradeField     `json:"field"`
	Threshold  float64        `json:"threshold"`
	Passed     int            `json:"passed"`
	Failed     int            `json:"failed"`
	Ungraded   int            `json:"ungraded"`
	Students   []StudentGrade `json:"students"`
}

// Graded returns the number of students with a valid numeric grade.
func (g GradeClassification) Graded() int {
	return g.Passed + g.Failed
}

// RatingCounts tallies preliminary ratings.
type RatingCounts struct {
	Advanced     int `json:"tea"`
	InProcess    int `json:"tep"`
	Discontinued int `json:"ted"`
	Unrated      int `json:"unrated"`
}

// Rated returns the number of students with a valid rating.
func (c RatingCounts) Rated() int {
	return c.Advanced + c.InProcess + c.Discontinued
}

// StudentRating is one student's preliminary rating; Rating is empty when unrated.
type StudentRating struct {
	StudentID string            `json:"student_id"`
	Rating    PreliminaryRating `json:"rating,omitempty"`
}

// RatingClassification holds TEA/TEP/TED counts for an offering.
type RatingClassification struct {
	OfferingID string     `json:"offering_id"`
	Field      GradeField `json:"field"`
	RatingCounts
	Students []StudentRating `json:"students"`
}

// CompletionState describes how far grading has progressed for an offering.
type CompletionState string

const (
	CompletionComplete   CompletionState = "complete"
	CompletionPartial    CompletionState = "partial"
	CompletionNoneGraded CompletionState = "none_graded"
	CompletionNoStudents CompletionState = "no_students"
)

// DeriveCompletion compares graded against total.
func DeriveCompletion(total, graded int) CompletionState {
	switch {
	case total == 0:
		return CompletionNoStudents
	case graded >= total:
		return CompletionComplete
	case graded == 0:
		return CompletionNoneGraded
	default:
		return CompletionPartial
	}
}

// OfferingSummary is the statistics record for one offering.
type OfferingSummary struct {
	OfferingID      string            `json:"offering_id"`
	CourseID        string            `json:"course_id"`
	SubjectName     string            `json:"subject_name"`
	SubjectCode     string            `json:"subject_code,omitempty"`
	TeacherIDs      []string          `json:"teacher_ids,omitempty"`
	Subgroup        bool              `json:"subgroup"`
	TotalStudents   int               `json:"total_students"`
	Graded          int               `json:"graded"`
	Ungraded        int               `json:"ungraded"`
	Passed          int               `json:"passed"`
	Failed          int               `json:"failed"`
	CompletionState CompletionState   `json:"completion_state"`
	Regular         int               `json:"regular"`
	Retaking        int               `json:"retaking"`
	Released        int               `json:"released"`
	Ratings         *RatingCounts     `json:"ratings,omitempty"`
	Attendance      *AttendanceRollup `json:"attendance,omitempty"`
}

// SummaryTotals sums offering summaries.
type SummaryTotals struct {
	Offerings     int `json:"offerings"`
	TotalStudents int `json:"total_students"`
	Graded        int `json:"graded"`
	Ungraded      int `json:"ungraded"`
	Passed        int `json:"passed"`
	Failed        int `json:"failed"`
	Complete      int `json:"complete"`
	Partial       int `json:"partial"`
	NoneGraded    int `json:"none_graded"`
	NoStudents    int `json:"no_students"`
}

// Add accumulates one offering summary.
func (t *SummaryTotals) Add(s OfferingSummary) {
	t.Offerings++
	t.TotalStudents += s.TotalStudents
	t.Graded += s.Graded
	t.Ungraded += s.Ungraded
	t.Passed += s.Passed
	t.Failed += s.Failed
	switch s.CompletionState {
	case CompletionComplete:
		t.Complete++
	case CompletionPartial:
		t.Partial++
	case CompletionNoneGraded:
		t.NoneGraded++
	case CompletionNoStudents:
		t.NoStudents++
	}
}

// Merge accumulates another totals record.
func (t *SummaryTotals) Merge(other SummaryTotals) {
	t.Offerings += other.Offerings
	t.TotalStudents += other.TotalStudents
	t.Graded += other.Graded
	t.Ungraded += other.Ungraded
	t.Passed += other.Passed
	t.Failed += other.Failed
	t.Complete += other.Complete
	t.Partial += other.Partial
	t.NoneGraded += other.NoneGraded
	t.NoStudents += other.NoStudents
}

// CourseSummary sums offering summaries of one course.
type CourseSummary struct {
	CourseID  string            `json:"course_id"`
	Name      string            `json:"name"`
	YearLevel int               `json:"year_level"`
	Period    PeriodInfo        `json:"period"`
	Threshold float64           `json:"threshold,omitempty"`
	Offerings []OfferingSummary `json:"offerings"`
	Totals    SummaryTotals     `json:"totals"`
}

// CycleSummary sums course summaries of the active cycle.
type CycleSummary struct {
	CycleID string          `json:"cycle_id"`
	Year    int             `json:"year"`
	Period  PeriodInfo      `json:"period"`
	Courses []CourseSummary `json:"courses"`
	Totals  SummaryTotals   `json:"totals"`
}
