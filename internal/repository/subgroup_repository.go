package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
)

const (
	selectSubgroupByOffering = `SELECT student_id, offering_id, cycle_id, is_active FROM subgroup_assignments WHERE offering_id = $1 AND cycle_id = $2 ORDER BY student_id ASC`
	selectSubgroupByStudent  = `SELECT student_id, offering_id, cycle_id, is_active FROM subgroup_assignments WHERE student_id = $1 AND cycle_id = $2`
)

// SubgroupRepository reads subgroup assignments.
type SubgroupRepository struct {
	db *sqlx.DB
}

// NewSubgroupRepository constructs the repository.
func NewSubgroupRepository(db *sqlx.DB) *SubgroupRepository {
	return &SubgroupRepository{db: db}
}

// ListByOffering returns all assignments of an offering in a cycle, active or not.
func (r *SubgroupRepository) ListByOffering(ctx context.Context, offeringID, cycleID string) ([]models.SubgroupAssignment, error) {
	var assignments []models.SubgroupAssignment
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &assignments, selectSubgroupByOffering, offeringID, cycleID); err != nil {
		return nil, fmt.Errorf("list subgroup assignments: %w", err)
	}
	return assignments, nil
}

// ListByStudent returns the student's assignments in a cycle.
func (r *SubgroupRepository) ListByStudent(ctx context.Context, studentID, cycleID string) ([]models.SubgroupAssignment, error) {
	var assignments []models.SubgroupAssignment
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &assignments, selectSubgroupByStudent, studentID, cycleID); err != nil {
		return nil, fmt.Errorf("list student subgroup assignments: %w", err)
	}
	return assignments, nil
}
