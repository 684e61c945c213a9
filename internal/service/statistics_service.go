package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

type snapshotRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

type courseReader interface {
	ListCourses(ctx context.Context, cycleID string) ([]models.Course, error)
	FindCourse(ctx context.Context, id string) (*models.Course, error)
}

type offeringReader interface {
	FindByID(ctx context.Context, id string) (*models.SubjectOffering, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.SubjectOffering, error)
	ListByCycle(ctx context.Context, cycleID string) ([]models.SubjectOffering, error)
}

// StatisticsRequest scopes a statistics computation. Period, or else Field,
// overrides calendar resolution of Date. Threshold is required unless the
// period selects preliminary ratings. TeacherID restricts the result to
// offerings the teacher is assigned to.
type StatisticsRequest struct {
	OfferingID        string
	CourseID          string
	Date              time.Time
	Period            *models.PeriodInfo
	Field             models.GradeField
	Family            models.PeriodFamily
	Threshold         float64
	TeacherID         string
	IncludeAttendance bool
	AttendanceRange   models.DateRange
}

// StatisticsService composes calendar, roster, attendance and grade
// aggregation into offering, course and cycle summaries. Every computation
// reads from a single snapshot.
type StatisticsService struct {
	snapshot   snapshotRunner
	courses    courseReader
	offerings  offeringReader
	periods    *PeriodService
	roster     *RosterService
	attendance *AttendanceStatsService
	grades     *GradeStatsService
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// StatisticsServiceParams groups constructor dependencies.
type StatisticsServiceParams struct {
	Snapshot   snapshotRunner
	Courses    courseReader
	Offerings  offeringReader
	Periods    *PeriodService
	Roster     *RosterService
	Attendance *AttendanceStatsService
	Grades     *GradeStatsService
	Metrics    *MetricsService
	Logger     *zap.Logger
}

// NewStatisticsService constructs the reporter.
func NewStatisticsService(params StatisticsServiceParams) *StatisticsService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{
		snapshot:   params.Snapshot,
		courses:    params.Courses,
		offerings:  params.Offerings,
		periods:    params.Periods,
		roster:     params.Roster,
		attendance: params.Attendance,
		grades:     params.Grades,
		metrics:    params.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// statisticsScope carries what every summary of one request shares.
type statisticsScope struct {
	cycle  *models.AcademicCycle
	period models.PeriodInfo
	req    StatisticsRequest
}

// OfferingSummary summarises a single offering of the active cycle.
func (s *StatisticsService) OfferingSummary(ctx context.Context, req StatisticsRequest) (*models.OfferingSummary, error) {
	if req.OfferingID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "offeringId is required")
	}
	var summary *models.OfferingSummary
	err := s.run(ctx, "offering", req, func(ctx context.Context, scope statisticsScope) error {
		offering, err := s.offerings.FindByID(ctx, req.OfferingID)
		if err != nil {
			return notFoundOr(err, "offering not found", "failed to load offering")
		}
		if req.TeacherID != "" && !offering.HasTeacher(req.TeacherID) {
			return appErrors.Clone(appErrors.ErrForbidden, "offering is not assigned to the teacher")
		}
		summary, err = s.summarizeOffering(ctx, scope, *offering)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// CourseSummary summarises every offering of a course of the active cycle.
func (s *StatisticsService) CourseSummary(ctx context.Context, req StatisticsRequest) (*models.CourseSummary, error) {
	if req.CourseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	var summary *models.CourseSummary
	err := s.run(ctx, "course", req, func(ctx context.Context, scope statisticsScope) error {
		course, err := s.courses.FindCourse(ctx, req.CourseID)
		if err != nil {
			return notFoundOr(err, "course not found", "failed to load course")
		}
		if course.CycleID != scope.cycle.ID {
			return appErrors.Clone(appErrors.ErrNotFound, "course does not belong to the active cycle")
		}
		offerings, err := s.offerings.ListByCourse(ctx, course.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offerings")
		}
		summary, err = s.summarizeCourse(ctx, scope, *course, offerings)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// CycleSummary summarises every course of the active cycle. With a teacher
// filter, courses without any of the teacher's offerings are left out.
func (s *StatisticsService) CycleSummary(ctx context.Context, req StatisticsRequest) (*models.CycleSummary, error) {
	var summary *models.CycleSummary
	err := s.run(ctx, "cycle", req, func(ctx context.Context, scope statisticsScope) error {
		courses, err := s.courses.ListCourses(ctx, scope.cycle.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
		}
		offerings, err := s.offerings.ListByCycle(ctx, scope.cycle.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offerings")
		}
		byCourse := make(map[string][]models.SubjectOffering, len(courses))
		for _, offering := range offerings {
			byCourse[offering.CourseID] = append(byCourse[offering.CourseID], offering)
		}

		summary = &models.CycleSummary{
			CycleID: scope.cycle.ID,
			Year:    scope.cycle.Year,
			Period:  scope.period,
			Courses: make([]models.CourseSummary, 0, len(courses)),
		}
		for _, course := range courses {
			courseSummary, err := s.summarizeCourse(ctx, scope, course, byCourse[course.ID])
			if err != nil {
				return err
			}
			if req.TeacherID != "" && len(courseSummary.Offerings) == 0 {
				continue
			}
			summary.Courses = append(summary.Courses, *courseSummary)
			summary.Totals.Merge(courseSummary.Totals)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// run opens the snapshot, loads the active cycle, resolves the period and
// hands the shared scope to fn.
func (s *StatisticsService) run(ctx context.Context, scopeName string, req StatisticsRequest, fn func(ctx context.Context, scope statisticsScope) error) error {
	start := time.Now()
	err := s.snapshot.Run(ctx, func(ctx context.Context) error {
		defer func() { s.metrics.ObserveSnapshot(scopeName, time.Since(start)) }()

		cycle, err := s.periods.ActiveCycle(ctx)
		if err != nil {
			return err
		}
		period, err := s.resolvePeriod(*cycle, req)
		if err != nil {
			return err
		}
		if !period.GradeField.IsRating() {
			if err := ValidateThreshold(req.Threshold); err != nil {
				return err
			}
		}
		return fn(ctx, statisticsScope{cycle: cycle, period: period, req: req})
	})
	s.metrics.ObserveStatistics(scopeName, time.Since(start), err)
	if err != nil {
		var appErr *appErrors.Error
		if !errors.As(err, &appErr) {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute statistics")
		}
		if appErrors.FromError(err).Status >= 500 {
			s.logger.Error("statistics computation failed", zap.String("scope", scopeName), zap.Error(err))
		}
		return err
	}
	return nil
}

func (s *StatisticsService) resolvePeriod(cycle models.AcademicCycle, req StatisticsRequest) (models.PeriodInfo, error) {
	if req.Period != nil {
		if !req.Period.GradeField.Valid() {
			return models.PeriodInfo{}, appErrors.Clone(appErrors.ErrValidation, "invalid grade field")
		}
		return *req.Period, nil
	}
	if req.Field != "" {
		return s.periods.ForField(cycle, req.Field)
	}
	family := req.Family
	if family == "" {
		family = models.PeriodFamilyQuarter
	}
	if !family.Valid() {
		return models.PeriodInfo{}, appErrors.Clone(appErrors.ErrValidation, "invalid period family")
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}
	return s.periods.Resolve(date, cycle, family), nil
}

func (s *StatisticsService) summarizeCourse(ctx context.Context, scope statisticsScope, course models.Course, offerings []models.SubjectOffering) (*models.CourseSummary, error) {
	summary := &models.CourseSummary{
		CourseID:  course.ID,
		Name:      course.Name,
		YearLevel: course.YearLevel,
		Period:    scope.period,
		Offerings: make([]models.OfferingSummary, 0, len(offerings)),
	}
	if !scope.period.GradeField.IsRating() {
		summary.Threshold = scope.req.Threshold
	}
	for _, offering := range offerings {
		if scope.req.TeacherID != "" && !offering.HasTeacher(scope.req.TeacherID) {
			continue
		}
		offeringSummary, err := s.summarizeOffering(ctx, scope, offering)
		if err != nil {
			return nil, err
		}
		summary.Offerings = append(summary.Offerings, *offeringSummary)
		summary.Totals.Add(*offeringSummary)
	}
	return summary, nil
}

func (s *StatisticsService) summarizeOffering(ctx context.Context, scope statisticsScope, offering models.SubjectOffering) (*models.OfferingSummary, error) {
	roster, err := s.roster.ResolveDetailed(ctx, offering, scope.cycle.ID)
	if err != nil {
		return nil, err
	}
	studentIDs := roster.Students.Sorted()

	summary := &models.OfferingSummary{
		OfferingID:    offering.ID,
		CourseID:      offering.CourseID,
		SubjectName:   offering.SubjectName,
		SubjectCode:   offering.SubjectCode,
		TeacherIDs:    offering.TeacherIDs,
		Subgroup:      roster.Subgroup,
		TotalStudents: roster.Students.Len(),
		Regular:       roster.Regular,
		Retaking:      roster.Retaking,
		Released:      roster.Released,
	}

	if scope.period.GradeField.IsRating() {
		ratings, err := s.grades.ClassifyRatings(ctx, studentIDs, offering, scope.cycle.ID, scope.period)
		if err != nil {
			return nil, err
		}
		counts := ratings.RatingCounts
		summary.Ratings = &counts
		summary.Graded = counts.Rated()
		summary.Ungraded = counts.Unrated
	} else {
		classification, err := s.grades.Classify(ctx, studentIDs, offering, scope.cycle.ID, scope.period, scope.req.Threshold)
		if err != nil {
			return nil, err
		}
		summary.Passed = classification.Passed
		summary.Failed = classification.Failed
		summary.Graded = classification.Graded()
		summary.Ungraded = classification.Ungraded
	}
	summary.CompletionState = models.DeriveCompletion(summary.TotalStudents, summary.Graded)

	if scope.req.IncludeAttendance {
		dateRange, err := s.attendanceRange(*scope.cycle, scope.period, scope.req.AttendanceRange)
		if err != nil {
			return nil, err
		}
		report, err := s.attendance.Aggregate(ctx, studentIDs, offering.CourseID, dateRange)
		if err != nil {
			return nil, err
		}
		rollup := report.Course
		summary.Attendance = &rollup
	}
	return summary, nil
}

// attendanceRange defaults to the span of the period's term.
func (s *StatisticsService) attendanceRange(cycle models.AcademicCycle, period models.PeriodInfo, requested models.DateRange) (models.DateRange, error) {
	if !requested.IsZero() {
		return requested, nil
	}
	if period.GradeField == models.GradeFieldFinal {
		return s.periods.CycleRange(cycle), nil
	}
	return s.periods.TermRange(cycle, period.Term)
}

func notFoundOr(err error, notFoundMessage, internalMessage string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMessage)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMessage)
}
