package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
)

const (
	selectActiveCycle = `SELECT id, year, is_active, start_date, end_date FROM academic_cycles WHERE is_active = TRUE ORDER BY year DESC LIMIT 1`
	selectCycleByID   = `SELECT id, year, is_active, start_date, end_date FROM academic_cycles WHERE id = $1`
	selectCourses     = `SELECT id, cycle_id, year_level, name FROM courses WHERE cycle_id = $1 ORDER BY year_level ASC, name ASC`
	selectCourseByID  = `SELECT id, cycle_id, year_level, name FROM courses WHERE id = $1`
)

// CycleRepository reads academic cycles and their courses.
type CycleRepository struct {
	db *sqlx.DB
}

// NewCycleRepository instantiates a cycle repository.
func NewCycleRepository(db *sqlx.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

// FindActive returns the active cycle. sql.ErrNoRows is returned unwrapped
// when no cycle is active; a stored cycle failing validation is an error.
func (r *CycleRepository) FindActive(ctx context.Context) (*models.AcademicCycle, error) {
	return r.getCycle(ctx, selectActiveCycle)
}

// FindByID returns a cycle by its ID.
func (r *CycleRepository) FindByID(ctx context.Context, id string) (*models.AcademicCycle, error) {
	return r.getCycle(ctx, selectCycleByID, id)
}

func (r *CycleRepository) getCycle(ctx context.Context, query string, args ...interface{}) (*models.AcademicCycle, error) {
	var cycle models.AcademicCycle
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &cycle, query, args...); err != nil {
		return nil, err
	}
	if err := models.ValidateRecord(&cycle); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// ListCourses returns the courses of a cycle ordered by year level.
func (r *CycleRepository) ListCourses(ctx context.Context, cycleID string) ([]models.Course, error) {
	var courses []models.Course
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &courses, selectCourses, cycleID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	for i := range courses {
		if err := models.ValidateRecord(&courses[i]); err != nil {
			return nil, err
		}
	}
	return courses, nil
}

// FindCourse returns a course by its ID.
func (r *CycleRepository) FindCourse(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &course, selectCourseByID, id); err != nil {
		return nil, err
	}
	if err := models.ValidateRecord(&course); err != nil {
		return nil, err
	}
	return &course, nil
}
