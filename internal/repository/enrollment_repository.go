package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
)

const (
	selectEnrollmentsByCourse  = `SELECT student_id, course_id, status FROM enrollments WHERE course_id = $1 ORDER BY student_id ASC`
	selectEnrollmentsByStudent = `SELECT e.student_id, e.course_id, e.status FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 AND c.cycle_id = $2`
)

// EnrollmentRepository reads course enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByCourse returns every enrollment of a course regardless of status.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &enrollments, selectEnrollmentsByCourse, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudent returns the student's enrollments in courses of the cycle.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID, cycleID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &enrollments, selectEnrollmentsByStudent, studentID, cycleID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}
