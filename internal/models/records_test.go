package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecordGrade(t *testing.T) {
	var record GradeRecord
	err := DecodeRecord(map[string]interface{}{
		"student_id":            "s1",
		"offering_id":           "off-1",
		"cycle_id":              "cycle-1",
		"bimester1_rating":      "TEA",
		"bimester3_rating":      nil,
		"term1_grade":           "7,5",
		"term2_grade":           nil,
		"intensification_grade": nil,
		"final_grade":           nil,
	}, &record)
	require.NoError(t, err)
	assert.Equal(t, "7,5", record.Raw(GradeFieldTerm1))
	assert.Nil(t, record.Term2Grade)
}

func TestDecodeRecordRejectsShapeErrors(t *testing.T) {
	var record GradeRecord

	err := DecodeRecord(map[string]interface{}{"student_id": "s1"}, &record)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing keys")
	assert.Contains(t, err.Error(), "offering_id")

	err = DecodeRecord(map[string]interface{}{
		"student_id": "s1", "offering_id": "off-1", "cycle_id": "cycle-1",
		"bimester1_rating": nil, "bimester3_rating": nil, "term1_grade": nil,
		"term2_grade": nil, "intensification_grade": nil, "final_grade": nil,
		"comment": "extra",
	}, &record)
	require.Error(t, err)

	err = DecodeRecord(map[string]interface{}{}, record)
	require.Error(t, err)
}

func TestDecodeRecordEnforcesValidateTags(t *testing.T) {
	var record AttendanceRecord
	err := DecodeRecord(map[string]interface{}{
		"student_id": "s1",
		"course_id":  "course-1",
		"date":       "2025-03-10T00:00:00Z",
		"term_index": 1,
		"status":     "late",
	}, &record)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AttendanceRecord")

	err = DecodeRecord(map[string]interface{}{
		"student_id": "s1",
		"course_id":  "course-1",
		"date":       "2025-03-10T00:00:00Z",
		"term_index": 1,
		"status":     string(AttendanceStatusHalfAbsence),
	}, &record)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), record.Date)
}

func TestValidateRecordCycle(t *testing.T) {
	require.NoError(t, ValidateRecord(&AcademicCycle{ID: "cycle-1", Year: 2025}))
	require.Error(t, ValidateRecord(&AcademicCycle{ID: "cycle-1", Year: 1850}))
	require.Error(t, ValidateRecord(Course{ID: "c1", CycleID: "cycle-1", YearLevel: 9}))
}
