package service

import (
	"context"
	"time"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

// OfferingRoster resolves the roster of an offering against the active cycle.
func (s *StatisticsService) OfferingRoster(ctx context.Context, offeringID string) (*models.RosterResolution, error) {
	if offeringID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "offeringId is required")
	}
	var resolution *models.RosterResolution
	err := s.snapshot.Run(ctx, func(ctx context.Context) error {
		cycle, err := s.periods.ActiveCycle(ctx)
		if err != nil {
			return err
		}
		offering, err := s.offerings.FindByID(ctx, offeringID)
		if err != nil {
			return notFoundOr(err, "offering not found", "failed to load offering")
		}
		resolution, err = s.roster.ResolveDetailed(ctx, *offering, cycle.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resolution, nil
}

// StudentOfferings lists the offerings studentID is accountable for in the
// active cycle.
func (s *StatisticsService) StudentOfferings(ctx context.Context, studentID string) ([]models.SubjectOffering, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}
	var offerings []models.SubjectOffering
	err := s.snapshot.Run(ctx, func(ctx context.Context) error {
		cycle, err := s.periods.ActiveCycle(ctx)
		if err != nil {
			return err
		}
		offerings, err = s.roster.OfferingsForStudent(ctx, studentID, cycle.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return offerings, nil
}

// CourseAttendance aggregates the attendance of the students enrolled in a
// course of the active cycle. Without a range the term containing now is
// used, or the whole cycle when now falls outside both terms.
func (s *StatisticsService) CourseAttendance(ctx context.Context, courseID string, dateRange models.DateRange) (*models.AttendanceReport, error) {
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	start := time.Now()
	var report *models.AttendanceReport
	err := s.snapshot.Run(ctx, func(ctx context.Context) error {
		cycle, err := s.periods.ActiveCycle(ctx)
		if err != nil {
			return err
		}
		course, err := s.courses.FindCourse(ctx, courseID)
		if err != nil {
			return notFoundOr(err, "course not found", "failed to load course")
		}
		if course.CycleID != cycle.ID {
			return appErrors.Clone(appErrors.ErrNotFound, "course does not belong to the active cycle")
		}
		if dateRange.IsZero() {
			dateRange = s.defaultAttendanceRange(*cycle)
		}
		students, err := s.roster.CourseStudents(ctx, course.ID)
		if err != nil {
			return err
		}
		report, err = s.attendance.Aggregate(ctx, students.Sorted(), course.ID, dateRange)
		return err
	})
	s.metrics.ObserveStatistics("attendance", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *StatisticsService) defaultAttendanceRange(cycle models.AcademicCycle) models.DateRange {
	now := s.now()
	for _, term := range []int{1, 2} {
		if termRange, err := s.periods.TermRange(cycle, term); err == nil && termRange.Contains(now.In(s.periods.Location())) {
			return termRange
		}
	}
	return s.periods.CycleRange(cycle)
}
