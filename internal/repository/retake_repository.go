package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
)

const selectRetakes = `SELECT id, student_id, offering_id, released_offering_id, cycle_id, status FROM retake_assignments WHERE cycle_id = $1`

// RetakeRepository reads retake assignments.
type RetakeRepository struct {
	db *sqlx.DB
}

// NewRetakeRepository constructs the repository.
func NewRetakeRepository(db *sqlx.DB) *RetakeRepository {
	return &RetakeRepository{db: db}
}

// List returns retakes of a cycle regardless of status. An offering filter
// matches rows that either target or release the offering.
func (r *RetakeRepository) List(ctx context.Context, cycleID string, filter models.RetakeFilter) ([]models.RetakeAssignment, error) {
	query := selectRetakes
	args := []interface{}{cycleID}
	if filter.OfferingID != "" {
		query += fmt.Sprintf(" AND (offering_id = $%d OR released_offering_id = $%d)", len(args)+1, len(args)+1)
		args = append(args, filter.OfferingID)
	}
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	query += " ORDER BY student_id ASC, id ASC"

	var retakes []models.RetakeAssignment
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &retakes, query, args...); err != nil {
		return nil, fmt.Errorf("list retakes: %w", err)
	}
	return retakes, nil
}
