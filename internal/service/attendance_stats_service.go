package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

type attendanceRecordReader interface {
	List(ctx context.Context, studentIDs []string, courseID string, dateRange models.DateRange) ([]models.AttendanceRecord, error)
}

// AttendancePolicy tunes how marks turn into regularity tiers.
type AttendancePolicy struct {
	JustifiedCountsAsAbsence bool
	RegularMinPercentage     float64
	AtRiskMinPercentage      float64
	TopReasons               int
}

// DefaultAttendancePolicy returns the school's standing policy.
func DefaultAttendancePolicy() AttendancePolicy {
	return AttendancePolicy{
		JustifiedCountsAsAbsence: true,
		RegularMinPercentage:     85,
		AtRiskMinPercentage:      75,
		TopReasons:               5,
	}
}

// Weight returns the absence contribution of a mark under the policy.
func (p AttendancePolicy) Weight(status models.AttendanceStatus) float64 {
	if status == models.AttendanceStatusJustified {
		if p.JustifiedCountsAsAbsence {
			return 1.0
		}
		return 0
	}
	return status.AbsenceWeight()
}

// Tier maps a percentage to its regularity tier.
func (p AttendancePolicy) Tier(percentage float64) models.RegularityTier {
	switch {
	case percentage >= p.RegularMinPercentage:
		return models.TierRegular
	case percentage >= p.AtRiskMinPercentage:
		return models.TierAtRisk
	default:
		return models.TierFree
	}
}

var schoolWeekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// AttendanceStatsService aggregates attendance marks into weighted totals
// and regularity tiers.
type AttendanceStatsService struct {
	repo   attendanceRecordReader
	policy AttendancePolicy
	logger *zap.Logger
}

// NewAttendanceStatsService constructs the aggregator. Zero tier bounds fall
// back to the default policy.
func NewAttendanceStatsService(repo attendanceRecordReader, policy AttendancePolicy, logger *zap.Logger) *AttendanceStatsService {
	defaults := DefaultAttendancePolicy()
	if policy.RegularMinPercentage <= 0 {
		policy.RegularMinPercentage = defaults.RegularMinPercentage
	}
	if policy.AtRiskMinPercentage <= 0 {
		policy.AtRiskMinPercentage = defaults.AtRiskMinPercentage
	}
	if policy.AtRiskMinPercentage > policy.RegularMinPercentage {
		policy.AtRiskMinPercentage = policy.RegularMinPercentage
	}
	if policy.TopReasons < 0 {
		policy.TopReasons = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceStatsService{repo: repo, policy: policy, logger: logger}
}

// Policy returns the effective policy.
func (s *AttendanceStatsService) Policy() AttendancePolicy {
	return s.policy
}

// Aggregate loads the marks of studentIDs in courseID within dateRange and
// summarises them.
func (s *AttendanceStatsService) Aggregate(ctx context.Context, studentIDs []string, courseID string, dateRange models.DateRange) (*models.AttendanceReport, error) {
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	if dateRange.Inverted() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range start is after its end")
	}
	students := models.NewStudentSet(studentIDs...)
	var records []models.AttendanceRecord
	if students.Len() > 0 {
		var err error
		records, err = s.repo.List(ctx, students.Sorted(), courseID, dateRange)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
	}
	return s.Summarize(courseID, dateRange, students, records), nil
}

// Summarize computes the report from already loaded records. Records of
// students outside the set, of another course, outside a bounded range or
// with an unknown status contribute nothing.
func (s *AttendanceStatsService) Summarize(courseID string, dateRange models.DateRange, students models.StudentSet, records []models.AttendanceRecord) *models.AttendanceReport {
	perStudent := make(map[string]*models.StudentAttendance, students.Len())
	for _, id := range students.Sorted() {
		perStudent[id] = &models.StudentAttendance{StudentID: id}
	}

	weekdays := make(map[time.Weekday]*models.AttendanceCounts, len(schoolWeekdays))
	for _, wd := range schoolWeekdays {
		weekdays[wd] = &models.AttendanceCounts{}
	}
	reasons := make(map[string]int)

	for _, record := range records {
		entry, ok := perStudent[record.StudentID]
		if !ok {
			continue
		}
		if record.CourseID != courseID {
			s.logger.Warn("skipping attendance of another course",
				zap.String("student_id", record.StudentID),
				zap.String("course_id", record.CourseID),
			)
			continue
		}
		if !record.Status.Valid() {
			s.logger.Warn("skipping attendance with unknown status",
				zap.String("student_id", record.StudentID),
				zap.String("status", string(record.Status)),
			)
			continue
		}
		if !dateRange.Contains(record.Date) {
			continue
		}

		entry.Counts.Add(record.Status)
		entry.TotalAbsences += s.policy.Weight(record.Status)
		if record.Status.Counted() {
			entry.EffectiveDays++
		}
		if counts, ok := weekdays[record.Date.Weekday()]; ok {
			counts.Add(record.Status)
		}
		if record.ReasonCode != nil && *record.ReasonCode != "" &&
			record.Status != models.AttendanceStatusPresent && record.Status.Counted() {
			reasons[*record.ReasonCode]++
		}
	}

	report := &models.AttendanceReport{
		CourseID: courseID,
		Range:    dateRange,
		Students: make([]models.StudentAttendance, 0, len(perStudent)),
	}
	for _, id := range students.Sorted() {
		entry := perStudent[id]
		pct := attendancePercentage(entry.EffectiveDays, entry.TotalAbsences)
		entry.Tier = s.policy.Tier(pct)
		entry.Percentage = round2(pct)
		report.Students = append(report.Students, *entry)
	}
	report.Course = rollupAttendance(report.Students)

	for _, wd := range schoolWeekdays {
		report.ByWeekday = append(report.ByWeekday, models.WeekdayAttendance{
			Weekday: wd.String(),
			Counts:  *weekdays[wd],
		})
	}
	report.CommonReasons = topReasons(reasons, s.policy.TopReasons)
	return report
}

// attendancePercentage is (effective - absences) / effective * 100 clamped
// to [0, 100]; zero effective days yield 0. Tiers are decided on this value
// and only the reported figure is rounded.
func attendancePercentage(effectiveDays int, absences float64) float64 {
	if effectiveDays <= 0 {
		return 0
	}
	pct := (float64(effectiveDays) - absences) * 100 / float64(effectiveDays)
	return math.Max(0, math.Min(100, pct))
}

func rollupAttendance(students []models.StudentAttendance) models.AttendanceRollup {
	rollup := models.AttendanceRollup{Students: len(students)}
	for _, student := range students {
		rollup.Counts.Merge(student.Counts)
		switch student.Tier {
		case models.TierRegular:
			rollup.Regular++
		case models.TierAtRisk:
			rollup.AtRisk++
		default:
			rollup.Free++
		}
	}
	if rollup.Students > 0 {
		total := float64(rollup.Students)
		rollup.RegularPct = round2(float64(rollup.Regular) * 100 / total)
		rollup.AtRiskPct = round2(float64(rollup.AtRisk) * 100 / total)
		rollup.FreePct = round2(float64(rollup.Free) * 100 / total)
	}
	return rollup
}

func topReasons(counts map[string]int, limit int) []models.ReasonCount {
	if limit == 0 || len(counts) == 0 {
		return nil
	}
	result := make([]models.ReasonCount, 0, len(counts))
	for code, count := range counts {
		result = append(result, models.ReasonCount{Code: code, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Code < result[j].Code
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
