package models

import "strings"

// GradeRecord stores the raw grade fields of a student for one offering and
// cycle. Values stay as entered; parsing happens during classification.
type GradeRecord struct {
	StudentID            string  `db:"student_id" json:"student_id" validate:"required"`
	OfferingID           string  `db:"offering_id" json:"offering_id" validate:"required"`
	CycleID              string  `db:"cycle_id" json:"cycle_id" validate:"required"`
	Bimester1Rating      *string `db:"bimester1_rating" json:"bimester1_rating"`
	Bimester3Rating      *string `db:"bimester3_rating" json:"bimester3_rating"`
	Term1Grade           *string `db:"term1_grade" json:"term1_grade"`
	Term2Grade           *string `db:"term2_grade" json:"term2_grade"`
	IntensificationGrade *string `db:"intensification_grade" json:"intensification_grade"`
	FinalGrade           *string `db:"final_grade" json:"final_grade"`
}

// Raw returns the trimmed stored value for field, or "" when the field is
// empty or unknown.
func (g GradeRecord) Raw(field GradeField) string {
	var value *string
	switch field {
	case GradeFieldTerm1:
		value = g.Term1Grade
	case GradeFieldTerm2:
		value = g.Term2Grade
	case GradeFieldIntensification:
		value = g.IntensificationGrade
	case GradeFieldFinal:
		value = g.FinalGrade
	case GradeFieldBimester1:
		value = g.Bimester1Rating
	case GradeFieldBimester3:
		value = g.Bimester3Rating
	}
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

// PreliminaryRating is the three-valued bimester assessment.
type PreliminaryRating string

const (
	RatingAdvanced     PreliminaryRating = "TEA"
	RatingInProcess    PreliminaryRating = "TEP"
	RatingDiscontinued PreliminaryRating = "TED"
)

// ParsePreliminaryRating normalises a raw rating. ok is false when raw is not
// one of TEA, TEP or TED.
func ParsePreliminaryRating(raw string) (PreliminaryRating, bool) {
	switch rating := PreliminaryRating(strings.ToUpper(strings.TrimSpace(raw))); rating {
	case RatingAdvanced, RatingInProcess, RatingDiscontinued:
		return rating, true
	default:
		return "", false
	}
}
