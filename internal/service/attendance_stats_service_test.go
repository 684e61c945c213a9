package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

type fakeAttendanceRepo struct {
	records  []models.AttendanceRecord
	err      error
	calls    int
	students []string
}

func (f *fakeAttendanceRepo) List(_ context.Context, studentIDs []string, _ string, _ models.DateRange) ([]models.AttendanceRecord, error) {
	f.calls++
	f.students = studentIDs
	return f.records, f.err
}

// schoolDays returns n consecutive weekdays starting on Monday 2025-03-10.
func schoolDays(n int) []time.Time {
	days := make([]time.Time, 0, n)
	current := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for len(days) < n {
		if wd := current.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, current)
		}
		current = current.AddDate(0, 0, 1)
	}
	return days
}

func mark(studentID string, date time.Time, status models.AttendanceStatus) models.AttendanceRecord {
	return models.AttendanceRecord{StudentID: studentID, CourseID: "course-1", Date: date, TermIndex: 1, Status: status}
}

func TestAttendanceStatsTwentyDaysTwoAbsencesTwoHalves(t *testing.T) {
	var records []models.AttendanceRecord
	for i, date := range schoolDays(20) {
		status := models.AttendanceStatusPresent
		switch i {
		case 3, 7:
			status = models.AttendanceStatusAbsent
		case 11, 15:
			status = models.AttendanceStatusHalfAbsence
		}
		records = append(records, mark("s1", date, status))
	}
	svc := NewAttendanceStatsService(&fakeAttendanceRepo{records: records}, DefaultAttendancePolicy(), nil)

	report, err := svc.Aggregate(context.Background(), []string{"s1"}, "course-1", models.DateRange{})
	require.NoError(t, err)
	require.Len(t, report.Students, 1)

	student := report.Students[0]
	assert.Equal(t, 20, student.EffectiveDays)
	assert.Equal(t, 3.0, student.TotalAbsences)
	assert.Equal(t, 85.0, student.Percentage)
	assert.Equal(t, models.TierRegular, student.Tier)
	assert.Equal(t, 2, student.Counts.Absent)
	assert.Equal(t, 2, student.Counts.HalfAbsence)
}

func TestAttendanceStatsZeroEffectiveDaysIsFree(t *testing.T) {
	days := schoolDays(2)
	repo := &fakeAttendanceRepo{records: []models.AttendanceRecord{
		mark("s1", days[0], models.AttendanceStatusExcluded),
		mark("s1", days[1], models.AttendanceStatusExcluded),
	}}
	svc := NewAttendanceStatsService(repo, DefaultAttendancePolicy(), nil)

	report, err := svc.Aggregate(context.Background(), []string{"s1", "s2"}, "course-1", models.DateRange{})
	require.NoError(t, err)
	require.Len(t, report.Students, 2)
	for _, student := range report.Students {
		assert.Equal(t, 0, student.EffectiveDays)
		assert.Equal(t, 0.0, student.Percentage)
		assert.Equal(t, models.TierFree, student.Tier)
	}
	assert.Equal(t, 2, report.Course.Free)
	assert.Equal(t, 100.0, report.Course.FreePct)
}

func TestAttendanceStatsJustifiedPolicy(t *testing.T) {
	var records []models.AttendanceRecord
	for i, date := range schoolDays(10) {
		status := models.AttendanceStatusPresent
		if i < 2 {
			status = models.AttendanceStatusJustified
		}
		records = append(records, mark("s1", date, status))
	}

	counting := NewAttendanceStatsService(&fakeAttendanceRepo{records: records}, DefaultAttendancePolicy(), nil)
	report, err := counting.Aggregate(context.Background(), []string{"s1"}, "course-1", models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 80.0, report.Students[0].Percentage)
	assert.Equal(t, models.TierAtRisk, report.Students[0].Tier)

	policy := DefaultAttendancePolicy()
	policy.JustifiedCountsAsAbsence = false
	lenient := NewAttendanceStatsService(&fakeAttendanceRepo{records: records}, policy, nil)
	report, err = lenient.Aggregate(context.Background(), []string{"s1"}, "course-1", models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.Students[0].Percentage)
	assert.Equal(t, models.TierRegular, report.Students[0].Tier)
}

func TestAttendanceStatsIgnoresOutsiders(t *testing.T) {
	days := schoolDays(4)
	other := mark("s1", days[2], models.AttendanceStatusAbsent)
	other.CourseID = "course-9"
	repo := &fakeAttendanceRepo{records: []models.AttendanceRecord{
		mark("s1", days[0], models.AttendanceStatusPresent),
		mark("intruder", days[0], models.AttendanceStatusAbsent),
		other,
		mark("s1", days[3], models.AttendanceStatus("late")),
	}}
	svc := NewAttendanceStatsService(repo, DefaultAttendancePolicy(), nil)

	report, err := svc.Aggregate(context.Background(), []string{"s1"}, "course-1", models.DateRange{})
	require.NoError(t, err)
	require.Len(t, report.Students, 1)
	assert.Equal(t, 1, report.Students[0].EffectiveDays)
	assert.Equal(t, 100.0, report.Students[0].Percentage)
	assert.Equal(t, 1, report.Course.Counts.Total())
}

func TestAttendanceStatsClampsPercentage(t *testing.T) {
	assert.Equal(t, 0.0, attendancePercentage(2, 3))
	assert.Equal(t, 100.0, attendancePercentage(4, 0))
	assert.Equal(t, 0.0, attendancePercentage(0, 0))
	assert.InDelta(t, 66.6667, attendancePercentage(3, 1), 0.0001)
}

func TestAttendanceStatsTierUsesUnroundedPercentage(t *testing.T) {
	days := schoolDays(3)
	repo := &fakeAttendanceRepo{records: []models.AttendanceRecord{
		mark("s1", days[0], models.AttendanceStatusPresent),
		mark("s1", days[1], models.AttendanceStatusAbsent),
		mark("s1", days[2], models.AttendanceStatusPresent),
	}}
	policy := DefaultAttendancePolicy()
	policy.RegularMinPercentage = 66.67
	policy.AtRiskMinPercentage = 50
	svc := NewAttendanceStatsService(repo, policy, nil)

	report, err := svc.Aggregate(context.Background(), []string{"s1"}, "course-1", models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 66.67, report.Students[0].Percentage)
	assert.Equal(t, models.TierAtRisk, report.Students[0].Tier)
}

func TestAttendanceStatsLocalRangeMatchesDateColumns(t *testing.T) {
	local := time.FixedZone("ART", -3*60*60)
	dateColumn := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	records := []models.AttendanceRecord{
		mark("s1", dateColumn(9), models.AttendanceStatusAbsent),
		mark("s1", dateColumn(10), models.AttendanceStatusAbsent),
		mark("s1", dateColumn(14), models.AttendanceStatusPresent),
		mark("s1", dateColumn(15), models.AttendanceStatusPresent),
	}
	svc := NewAttendanceStatsService(nil, DefaultAttendancePolicy(), nil)
	dateRange := models.DateRange{
		From: time.Date(2025, 3, 10, 0, 0, 0, 0, local),
		To:   time.Date(2025, 3, 14, 0, 0, 0, 0, local),
	}

	report := svc.Summarize("course-1", dateRange, models.NewStudentSet("s1"), records)
	require.Len(t, report.Students, 1)
	student := report.Students[0]
	assert.Equal(t, 1, student.Counts.Absent)
	assert.Equal(t, 1, student.Counts.Present)
	assert.Equal(t, 2, student.EffectiveDays)
	assert.Equal(t, 50.0, student.Percentage)
}

func TestAttendanceStatsTermRangeIncludesFirstDay(t *testing.T) {
	local := time.FixedZone("ART", -3*60*60)
	periods := NewPeriodService(nil, local, nil)
	termRange, err := periods.TermRange(models.AcademicCycle{ID: "cycle-1", Year: 2025}, 1)
	require.NoError(t, err)

	repo := &fakeAttendanceRepo{records: []models.AttendanceRecord{
		mark("s1", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), models.AttendanceStatusPresent),
		mark("s1", time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), models.AttendanceStatusAbsent),
	}}
	svc := NewAttendanceStatsService(repo, DefaultAttendancePolicy(), nil)

	report, err := svc.Aggregate(context.Background(), []string{"s1"}, "course-1", termRange)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Students[0].EffectiveDays)
	assert.Equal(t, 100.0, report.Students[0].Percentage)
}

func TestAttendanceStatsWeekdayRollupAndReasons(t *testing.T) {
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	withReason := func(r models.AttendanceRecord, code string) models.AttendanceRecord {
		r.ReasonCode = &code
		return r
	}
	repo := &fakeAttendanceRepo{records: []models.AttendanceRecord{
		withReason(mark("s1", monday, models.AttendanceStatusAbsent), "illness"),
		withReason(mark("s2", monday, models.AttendanceStatusAbsent), "illness"),
		withReason(mark("s1", monday.AddDate(0, 0, 1), models.AttendanceStatusHalfAbsence), "transport"),
		withReason(mark("s2", monday.AddDate(0, 0, 1), models.AttendanceStatusJustified), "appointment"),
		withReason(mark("s1", monday.AddDate(0, 0, 2), models.AttendanceStatusPresent), "ignored"),
		mark("s1", saturday, models.AttendanceStatusPresent),
	}}
	policy := DefaultAttendancePolicy()
	policy.TopReasons = 2
	svc := NewAttendanceStatsService(repo, policy, nil)

	report, err := svc.Aggregate(context.Background(), []string{"s1", "s2"}, "course-1", models.DateRange{})
	require.NoError(t, err)

	require.Len(t, report.ByWeekday, 5)
	assert.Equal(t, "Monday", report.ByWeekday[0].Weekday)
	assert.Equal(t, 2, report.ByWeekday[0].Counts.Absent)
	assert.Equal(t, 1, report.ByWeekday[1].Counts.HalfAbsence)
	assert.Equal(t, "Friday", report.ByWeekday[4].Weekday)
	weekdayTotal := 0
	for _, wd := range report.ByWeekday {
		weekdayTotal += wd.Counts.Total()
	}
	assert.Equal(t, 5, weekdayTotal)
	assert.Equal(t, 6, report.Course.Counts.Total())

	assert.Equal(t, []models.ReasonCount{{Code: "illness", Count: 2}, {Code: "appointment", Count: 1}}, report.CommonReasons)
}

func TestAttendanceStatsRangeFilter(t *testing.T) {
	days := schoolDays(5)
	repo := &fakeAttendanceRepo{records: []models.AttendanceRecord{
		mark("s1", days[0], models.AttendanceStatusAbsent),
		mark("s1", days[2].Add(15*time.Hour), models.AttendanceStatusPresent),
		mark("s1", days[4], models.AttendanceStatusAbsent),
	}}
	svc := NewAttendanceStatsService(repo, DefaultAttendancePolicy(), nil)

	report, err := svc.Aggregate(context.Background(), []string{"s1"}, "course-1", models.DateRange{From: days[1], To: days[3]})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Students[0].EffectiveDays)
	assert.Equal(t, 100.0, report.Students[0].Percentage)
}

func TestAttendanceStatsValidation(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := NewAttendanceStatsService(repo, DefaultAttendancePolicy(), nil)

	_, err := svc.Aggregate(context.Background(), []string{"s1"}, "", models.DateRange{})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Aggregate(context.Background(), []string{"s1"}, "course-1", models.DateRange{
		From: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)

	report, err := svc.Aggregate(context.Background(), nil, "course-1", models.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, report.Students)
	assert.Zero(t, repo.calls)
}

func TestAttendanceStatsDeduplicatesStudents(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := NewAttendanceStatsService(repo, DefaultAttendancePolicy(), nil)

	report, err := svc.Aggregate(context.Background(), []string{"s2", "s1", "s2", ""}, "course-1", models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, repo.students)
	assert.Len(t, report.Students, 2)
}

func TestAttendanceStatsStorageError(t *testing.T) {
	svc := NewAttendanceStatsService(&fakeAttendanceRepo{err: errors.New("db down")}, DefaultAttendancePolicy(), nil)
	_, err := svc.Aggregate(context.Background(), []string{"s1"}, "course-1", models.DateRange{})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))
}
