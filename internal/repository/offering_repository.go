package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
)

const offeringColumns = `SELECT o.id, o.subject_id, o.course_id, o.teacher_id, o.teacher_id_2, o.teacher_id_3, o.requires_subgroup,
        s.name AS subject_name, s.code AS subject_code, c.name AS course_name, c.year_level AS course_year
        FROM subject_offerings o
        JOIN subjects s ON s.id = o.subject_id
        JOIN courses c ON c.id = o.course_id`

// offeringRow mirrors the storage layout where co-teachers occupy fixed slots.
type offeringRow struct {
	ID               string  `db:"id"`
	SubjectID        string  `db:"subject_id"`
	CourseID         string  `db:"course_id"`
	TeacherID        *string `db:"teacher_id"`
	TeacherID2       *string `db:"teacher_id_2"`
	TeacherID3       *string `db:"teacher_id_3"`
	RequiresSubgroup bool    `db:"requires_subgroup"`
	SubjectName      string  `db:"subject_name"`
	SubjectCode      *string `db:"subject_code"`
	CourseName       string  `db:"course_name"`
	CourseYear       int     `db:"course_year"`
}

func (row offeringRow) toModel() models.SubjectOffering {
	offering := models.SubjectOffering{
		ID:               row.ID,
		SubjectID:        row.SubjectID,
		CourseID:         row.CourseID,
		TeacherIDs:       models.CompactTeacherIDs(row.TeacherID, row.TeacherID2, row.TeacherID3),
		RequiresSubgroup: row.RequiresSubgroup,
		SubjectName:      row.SubjectName,
		CourseName:       row.CourseName,
		CourseYear:       row.CourseYear,
	}
	if row.SubjectCode != nil {
		offering.SubjectCode = *row.SubjectCode
	}
	return offering
}

// OfferingRepository reads subject offerings with their subject and course labels.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs the repository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// FindByID returns a single offering.
func (r *OfferingRepository) FindByID(ctx context.Context, id string) (*models.SubjectOffering, error) {
	query := offeringColumns + " WHERE o.id = $1"
	var row offeringRow
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &row, query, id); err != nil {
		return nil, err
	}
	offering := row.toModel()
	return &offering, nil
}

// ListByCourse returns the offerings taught in a course.
func (r *OfferingRepository) ListByCourse(ctx context.Context, courseID string) ([]models.SubjectOffering, error) {
	query := offeringColumns + " WHERE o.course_id = $1 ORDER BY s.name ASC, o.id ASC"
	return r.list(ctx, "list offerings by course", query, courseID)
}

// ListByCycle returns every offering of the courses belonging to a cycle.
func (r *OfferingRepository) ListByCycle(ctx context.Context, cycleID string) ([]models.SubjectOffering, error) {
	query := offeringColumns + " WHERE c.cycle_id = $1 ORDER BY c.year_level ASC, c.name ASC, s.name ASC, o.id ASC"
	return r.list(ctx, "list offerings by cycle", query, cycleID)
}

func (r *OfferingRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]models.SubjectOffering, error) {
	var rows []offeringRow
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	offerings := make([]models.SubjectOffering, 0, len(rows))
	for _, row := range rows {
		offerings = append(offerings, row.toModel())
	}
	return offerings, nil
}
