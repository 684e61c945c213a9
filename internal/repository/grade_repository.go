package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
)

const selectGrades = `SELECT student_id, offering_id, cycle_id, bimester1_rating, bimester3_rating, term1_grade, term2_grade, intensification_grade, final_grade
        FROM grade_records WHERE offering_id = $1 AND cycle_id = $2 AND student_id = ANY($3)`

// GradeRepository reads stored grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns the grade records of the given students for an offering and cycle.
func (r *GradeRepository) List(ctx context.Context, studentIDs []string, offeringID, cycleID string) ([]models.GradeRecord, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	var grades []models.GradeRecord
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &grades, selectGrades, offeringID, cycleID, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}
