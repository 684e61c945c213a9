package models

// WorkloadOffering is one offering of a teacher's workload with the course
// it belongs to.
type WorkloadOffering struct {
	CourseName string `json:"course_name"`
	YearLevel  int    `json:"year_level"`
	OfferingSummary
}

// TeacherWorkload is the teacher-facing view of the offerings they teach in
// the active cycle, classified against the satisfactory threshold.
type TeacherWorkload struct {
	TeacherID   string             `json:"teacher_id"`
	Date        string             `json:"date"`
	CycleID     string             `json:"cycle_id"`
	Year        int                `json:"year"`
	Period      PeriodInfo         `json:"period"`
	Threshold   float64            `json:"threshold"`
	Offerings   []WorkloadOffering `json:"offerings"`
	Pending     []string           `json:"pending_offering_ids"`
	Totals      SummaryTotals      `json:"totals"`
	GeneratedAt string             `json:"generated_at"`
}
