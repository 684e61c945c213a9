package models

// PeriodFamily selects which calendar a caller resolves against.
type PeriodFamily string

const (
	// PeriodFamilyQuarter covers ordinary terms and intensification windows.
	PeriodFamilyQuarter PeriodFamily = "quarter"
	// PeriodFamilyBimester covers the preliminary-rating bimesters.
	PeriodFamilyBimester PeriodFamily = "bimester"
)

// Valid reports whether the family is supported.
func (f PeriodFamily) Valid() bool {
	return f == PeriodFamilyQuarter || f == PeriodFamilyBimester
}

// Phase distinguishes ordinary teaching from remedial windows.
type Phase string

const (
	PhaseOrdinary        Phase = "ordinary"
	PhaseIntensification Phase = "intensification"
)

// GradeField names the grade record field that is authoritative for a period.
type GradeField string

const (
	GradeFieldTerm1           GradeField = "term1"
	GradeFieldTerm2           GradeField = "term2"
	GradeFieldIntensification GradeField = "intensification"
	GradeFieldBimester1       GradeField = "bimester1"
	GradeFieldBimester3       GradeField = "bimester3"
	GradeFieldFinal           GradeField = "final"
)

// Valid reports whether the field is one of the known selectors.
func (f GradeField) Valid() bool {
	switch f {
	case GradeFieldTerm1, GradeFieldTerm2, GradeFieldIntensification,
		GradeFieldBimester1, GradeFieldBimester3, GradeFieldFinal:
		return true
	default:
		return false
	}
}

// IsRating reports whether the field holds TEA/TEP/TED ratings rather than
// numeric grades.
func (f GradeField) IsRating() bool {
	return f == GradeFieldBimester1 || f == GradeFieldBimester3
}

// Fallback returns the field consulted when f holds no value.
func (f GradeField) Fallback() (GradeField, bool) {
	if f == GradeFieldIntensification {
		return GradeFieldTerm1, true
	}
	return "", false
}

// PeriodInfo describes the grading period a date falls in.
type PeriodInfo struct {
	Family     PeriodFamily `json:"family"`
	Term       int          `json:"term"`
	Phase      Phase        `json:"phase"`
	Bimester   int          `json:"bimester,omitempty"`
	Label      string       `json:"label"`
	GradeField GradeField   `json:"grade_field"`
	Window     DateRange    `json:"window"`
	Defaulted  bool         `json:"defaulted"`
}
