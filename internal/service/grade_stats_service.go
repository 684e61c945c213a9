package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

// Pass threshold presets. ApprovalThreshold is the promotion rule, while
// SatisfactoryThreshold is the bar used by teacher-facing views.
const (
	ApprovalThreshold     = 4.0
	SatisfactoryThreshold = 7.0

	minGrade = 1.0
	maxGrade = 10.0
)

var gradePattern = regexp.MustCompile(`^\d{1,2}(\.\d+)?$`)

type gradeRecordReader interface {
	List(ctx context.Context, studentIDs []string, offeringID, cycleID string) ([]models.GradeRecord, error)
}

// GradeStatsService classifies stored grades of a roster.
type GradeStatsService struct {
	repo   gradeRecordReader
	logger *zap.Logger
}

// NewGradeStatsService constructs the classifier.
func NewGradeStatsService(repo gradeRecordReader, logger *zap.Logger) *GradeStatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeStatsService{repo: repo, logger: logger}
}

// ParseGrade parses a stored numeric grade. Comma decimals are accepted and
// only values within 1 to 10 are valid.
func ParseGrade(raw string) (float64, bool) {
	normalised := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	if !gradePattern.MatchString(normalised) {
		return 0, false
	}
	value, err := strconv.ParseFloat(normalised, 64)
	if err != nil || value < minGrade || value > maxGrade {
		return 0, false
	}
	return value, true
}

// ValidateThreshold rejects thresholds outside the grading scale.
func ValidateThreshold(threshold float64) error {
	if threshold < minGrade || threshold > maxGrade {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("threshold must be between %.0f and %.0f", minGrade, maxGrade))
	}
	return nil
}

// Classify sorts the students into passed, failed and ungraded using the
// grade field selected by period. A grade passes when it is at least
// threshold.
func (s *GradeStatsService) Classify(ctx context.Context, studentIDs []string, offering models.SubjectOffering, cycleID string, period models.PeriodInfo, threshold float64) (*models.GradeClassification, error) {
	field := period.GradeField
	if !field.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid grade field")
	}
	if field.IsRating() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade field holds preliminary ratings")
	}
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	students := models.NewStudentSet(studentIDs...)
	records, err := s.load(ctx, students, offering.ID, cycleID)
	if err != nil {
		return nil, err
	}

	result := &models.GradeClassification{
		OfferingID: offering.ID,
		Field:      field,
		Threshold:  threshold,
		Students:   make([]models.StudentGrade, 0, students.Len()),
	}
	for _, id := range students.Sorted() {
		grade := models.StudentGrade{StudentID: id, Outcome: models.OutcomeUngraded}
		if record, ok := records[id]; ok {
			used, raw := field, record.Raw(field)
			if raw == "" {
				if fallback, ok := field.Fallback(); ok {
					used, raw = fallback, record.Raw(fallback)
				}
			}
			if raw != "" {
				grade.Field = used
				grade.Raw = raw
				if value, ok := ParseGrade(raw); ok {
					grade.Value = &value
					if value >= threshold {
						grade.Outcome = models.OutcomePassed
					} else {
						grade.Outcome = models.OutcomeFailed
					}
				} else {
					s.logger.Debug("unparseable grade treated as ungraded",
						zap.String("student_id", id),
						zap.String("offering_id", offering.ID),
						zap.String("raw", raw),
					)
				}
			}
		}
		switch grade.Outcome {
		case models.OutcomePassed:
			result.Passed++
		case models.OutcomeFailed:
			result.Failed++
		default:
			result.Ungraded++
		}
		result.Students = append(result.Students, grade)
	}
	return result, nil
}

// ClassifyRatings counts TEA, TEP and TED preliminary ratings for a
// bimester period.
func (s *GradeStatsService) ClassifyRatings(ctx context.Context, studentIDs []string, offering models.SubjectOffering, cycleID string, period models.PeriodInfo) (*models.RatingClassification, error) {
	field := period.GradeField
	if !field.IsRating() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade field does not hold preliminary ratings")
	}

	students := models.NewStudentSet(studentIDs...)
	records, err := s.load(ctx, students, offering.ID, cycleID)
	if err != nil {
		return nil, err
	}

	result := &models.RatingClassification{
		OfferingID: offering.ID,
		Field:      field,
		Students:   make([]models.StudentRating, 0, students.Len()),
	}
	for _, id := range students.Sorted() {
		entry := models.StudentRating{StudentID: id}
		if record, ok := records[id]; ok {
			if rating, ok := models.ParsePreliminaryRating(record.Raw(field)); ok {
				entry.Rating = rating
			}
		}
		switch entry.Rating {
		case models.RatingAdvanced:
			result.Advanced++
		case models.RatingInProcess:
			result.InProcess++
		case models.RatingDiscontinued:
			result.Discontinued++
		default:
			result.Unrated++
		}
		result.Students = append(result.Students, entry)
	}
	return result, nil
}

func (s *GradeStatsService) load(ctx context.Context, students models.StudentSet, offeringID, cycleID string) (map[string]models.GradeRecord, error) {
	if students.Len() == 0 {
		return map[string]models.GradeRecord{}, nil
	}
	records, err := s.repo.List(ctx, students.Sorted(), offeringID, cycleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	byStudent := make(map[string]models.GradeRecord, len(records))
	for _, record := range records {
		if !students.Contains(record.StudentID) {
			continue
		}
		if record.OfferingID != offeringID || record.CycleID != cycleID {
			s.logger.Warn("skipping grade record of another offering or cycle",
				zap.String("student_id", record.StudentID),
				zap.String("offering_id", record.OfferingID),
				zap.String("cycle_id", record.CycleID),
			)
			continue
		}
		if _, dup := byStudent[record.StudentID]; dup {
			s.logger.Warn("duplicate grade record, keeping the first",
				zap.String("student_id", record.StudentID),
				zap.String("offering_id", offeringID),
			)
			continue
		}
		byStudent[record.StudentID] = record
	}
	return byStudent, nil
}
