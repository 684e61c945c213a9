package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

type rosterEnrollmentReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID, cycleID string) ([]models.Enrollment, error)
}

type rosterSubgroupReader interface {
	ListByOffering(ctx context.Context, offeringID, cycleID string) ([]models.SubgroupAssignment, error)
	ListByStudent(ctx context.Context, studentID, cycleID string) ([]models.SubgroupAssignment, error)
}

type rosterRetakeReader interface {
	List(ctx context.Context, cycleID string, filter models.RetakeFilter) ([]models.RetakeAssignment, error)
}

type rosterOfferingReader interface {
	FindByID(ctx context.Context, id string) (*models.SubjectOffering, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.SubjectOffering, error)
}

// RosterService decides which students are accountable for an offering.
type RosterService struct {
	enrollments rosterEnrollmentReader
	subgroups   rosterSubgroupReader
	retakes     rosterRetakeReader
	offerings   rosterOfferingReader
	logger      *zap.Logger
}

// NewRosterService constructs a RosterService.
func NewRosterService(enrollments rosterEnrollmentReader, subgroups rosterSubgroupReader, retakes rosterRetakeReader, offerings rosterOfferingReader, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{enrollments: enrollments, subgroups: subgroups, retakes: retakes, offerings: offerings, logger: logger}
}

// Resolve returns the students accountable for offering in cycleID.
func (s *RosterService) Resolve(ctx context.Context, offering models.SubjectOffering, cycleID string) (models.StudentSet, error) {
	resolution, err := s.ResolveDetailed(ctx, offering, cycleID)
	if err != nil {
		return nil, err
	}
	return resolution.Students, nil
}

// ResolveDetailed returns the roster with the counts behind it. Subgroup
// offerings take their members from subgroup assignments only; every other
// offering is (active enrollments of its course ∪ active retakes targeting
// it) minus active retakes releasing it.
func (s *RosterService) ResolveDetailed(ctx context.Context, offering models.SubjectOffering, cycleID string) (*models.RosterResolution, error) {
	if offering.ID == "" || cycleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "offering and cycle are required")
	}
	if offering.RequiresSubgroup {
		return s.resolveSubgroup(ctx, offering, cycleID)
	}

	enrollments, err := s.enrollments.ListByCourse(ctx, offering.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	regular := models.NewStudentSet()
	for _, enrollment := range enrollments {
		if !s.usableEnrollment(enrollment, offering.CourseID) {
			continue
		}
		regular.Add(enrollment.StudentID)
	}

	retakes, err := s.retakes.List(ctx, cycleID, models.RetakeFilter{OfferingID: offering.ID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load retakes")
	}
	retaking := models.NewStudentSet()
	released := models.NewStudentSet()
	for _, retake := range retakes {
		if !s.usableRetake(retake, cycleID) {
			continue
		}
		if retake.OfferingID == offering.ID {
			retaking.Add(retake.StudentID)
		}
		if retake.Releases(offering.ID) {
			released.Add(retake.StudentID)
		}
	}

	students := models.NewStudentSet()
	for id := range regular {
		students.Add(id)
	}
	extra := 0
	for id := range retaking {
		if !students.Contains(id) {
			extra++
		}
		students.Add(id)
	}
	removed := 0
	for id := range released {
		if students.Contains(id) {
			students.Remove(id)
			removed++
		}
	}

	return &models.RosterResolution{
		OfferingID: offering.ID,
		CycleID:    cycleID,
		Students:   students,
		Regular:    regular.Len(),
		Retaking:   extra,
		Released:   removed,
	}, nil
}

// CourseStudents returns the students actively enrolled in courseID.
func (s *RosterService) CourseStudents(ctx context.Context, courseID string) (models.StudentSet, error) {
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	students := models.NewStudentSet()
	for _, enrollment := range enrollments {
		if s.usableEnrollment(enrollment, courseID) {
			students.Add(enrollment.StudentID)
		}
	}
	return students, nil
}

func (s *RosterService) resolveSubgroup(ctx context.Context, offering models.SubjectOffering, cycleID string) (*models.RosterResolution, error) {
	assignments, err := s.subgroups.ListByOffering(ctx, offering.ID, cycleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subgroup assignments")
	}
	students := models.NewStudentSet()
	for _, assignment := range assignments {
		if !s.usableAssignment(assignment, cycleID) || assignment.OfferingID != offering.ID {
			continue
		}
		students.Add(assignment.StudentID)
	}
	return &models.RosterResolution{
		OfferingID: offering.ID,
		CycleID:    cycleID,
		Subgroup:   true,
		Students:   students,
		Regular:    students.Len(),
	}, nil
}

// OfferingsForStudent lists the offerings the student is accountable for in
// cycleID. An offering is listed exactly when Resolve would place the
// student in its roster.
func (s *RosterService) OfferingsForStudent(ctx context.Context, studentID, cycleID string) ([]models.SubjectOffering, error) {
	if studentID == "" || cycleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student and cycle are required")
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID, cycleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	assignments, err := s.subgroups.ListByStudent(ctx, studentID, cycleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subgroup assignments")
	}
	retakes, err := s.retakes.List(ctx, cycleID, models.RetakeFilter{StudentID: studentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load retakes")
	}

	subgroupIDs := make(map[string]struct{})
	for _, assignment := range assignments {
		if s.usableAssignment(assignment, cycleID) && assignment.StudentID == studentID {
			subgroupIDs[assignment.OfferingID] = struct{}{}
		}
	}
	targetIDs := make(map[string]struct{})
	releasedIDs := make(map[string]struct{})
	for _, retake := range retakes {
		if !s.usableRetake(retake, cycleID) || retake.StudentID != studentID {
			continue
		}
		targetIDs[retake.OfferingID] = struct{}{}
		if retake.ReleasedOfferingID != nil && *retake.ReleasedOfferingID != "" {
			releasedIDs[*retake.ReleasedOfferingID] = struct{}{}
		}
	}

	selected := make(map[string]models.SubjectOffering)
	consider := func(offering models.SubjectOffering, viaCourse bool) {
		if _, done := selected[offering.ID]; done {
			return
		}
		if offering.RequiresSubgroup {
			if _, ok := subgroupIDs[offering.ID]; ok {
				selected[offering.ID] = offering
			}
			return
		}
		if _, ok := releasedIDs[offering.ID]; ok {
			return
		}
		_, retaking := targetIDs[offering.ID]
		if viaCourse || retaking {
			selected[offering.ID] = offering
		}
	}

	seenCourses := make(map[string]struct{})
	for _, enrollment := range enrollments {
		if enrollment.StudentID != studentID || !s.usableEnrollment(enrollment, enrollment.CourseID) {
			continue
		}
		if _, done := seenCourses[enrollment.CourseID]; done {
			continue
		}
		seenCourses[enrollment.CourseID] = struct{}{}
		offerings, err := s.offerings.ListByCourse(ctx, enrollment.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offerings")
		}
		for _, offering := range offerings {
			consider(offering, true)
		}
	}

	for _, id := range sortedKeys(targetIDs, subgroupIDs) {
		if _, done := selected[id]; done {
			continue
		}
		offering, err := s.offerings.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("roster references missing offering", zap.String("offering_id", id), zap.String("student_id", studentID))
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
		}
		_, viaCourse := seenCourses[offering.CourseID]
		consider(*offering, viaCourse)
	}

	result := make([]models.SubjectOffering, 0, len(selected))
	for _, offering := range selected {
		result = append(result, offering)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CourseYear != result[j].CourseYear {
			return result[i].CourseYear < result[j].CourseYear
		}
		if result[i].SubjectName != result[j].SubjectName {
			return result[i].SubjectName < result[j].SubjectName
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *RosterService) usableEnrollment(enrollment models.Enrollment, courseID string) bool {
	switch {
	case enrollment.StudentID == "":
		s.logger.Warn("skipping enrollment without student", zap.String("course_id", enrollment.CourseID))
		return false
	case enrollment.CourseID != courseID:
		s.logger.Warn("skipping enrollment of another course",
			zap.String("student_id", enrollment.StudentID),
			zap.String("course_id", enrollment.CourseID),
			zap.String("expected_course_id", courseID),
		)
		return false
	case enrollment.Status != models.EnrollmentStatusActive:
		s.logger.Warn("skipping inactive enrollment",
			zap.String("student_id", enrollment.StudentID),
			zap.String("course_id", enrollment.CourseID),
			zap.String("status", string(enrollment.Status)),
		)
		return false
	}
	return true
}

func (s *RosterService) usableRetake(retake models.RetakeAssignment, cycleID string) bool {
	switch {
	case retake.StudentID == "":
		s.logger.Warn("skipping retake without student", zap.String("retake_id", retake.ID))
		return false
	case retake.CycleID != cycleID:
		s.logger.Warn("skipping retake of another cycle",
			zap.String("retake_id", retake.ID),
			zap.String("cycle_id", retake.CycleID),
			zap.String("expected_cycle_id", cycleID),
		)
		return false
	case retake.Status != models.RetakeStatusActive:
		s.logger.Warn("skipping inactive retake",
			zap.String("retake_id", retake.ID),
			zap.String("status", string(retake.Status)),
		)
		return false
	}
	return true
}

func (s *RosterService) usableAssignment(assignment models.SubgroupAssignment, cycleID string) bool {
	switch {
	case assignment.StudentID == "":
		s.logger.Warn("skipping subgroup assignment without student", zap.String("offering_id", assignment.OfferingID))
		return false
	case assignment.CycleID != cycleID:
		s.logger.Warn("skipping subgroup assignment of another cycle",
			zap.String("student_id", assignment.StudentID),
			zap.String("cycle_id", assignment.CycleID),
			zap.String("expected_cycle_id", cycleID),
		)
		return false
	case !assignment.Active:
		s.logger.Warn("skipping inactive subgroup assignment",
			zap.String("student_id", assignment.StudentID),
			zap.String("offering_id", assignment.OfferingID),
		)
		return false
	}
	return true
}

func sortedKeys(sets ...map[string]struct{}) []string {
	merged := make(map[string]struct{})
	for _, set := range sets {
		for key := range set {
			merged[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
