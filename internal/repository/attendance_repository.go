package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
)

const dayLayout = "2006-01-02"

// AttendanceRepository reads per-day attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns the marks of the given students in a course. Zero range
// bounds leave that side open. Bounds are bound as calendar days so the
// session time zone never shifts them.
func (r *AttendanceRepository) List(ctx context.Context, studentIDs []string, courseID string, dateRange models.DateRange) ([]models.AttendanceRecord, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	query := `SELECT student_id, course_id, date, term_index, status, reason_code FROM attendance_records WHERE course_id = $1 AND student_id = ANY($2)`
	args := []interface{}{courseID, pq.Array(studentIDs)}
	if !dateRange.From.IsZero() {
		query += fmt.Sprintf(" AND date >= $%d::date", len(args)+1)
		args = append(args, dateRange.From.Format(dayLayout))
	}
	if !dateRange.To.IsZero() {
		query += fmt.Sprintf(" AND date <= $%d::date", len(args)+1)
		args = append(args, dateRange.To.Format(dayLayout))
	}
	query += " ORDER BY date ASC, student_id ASC"

	var records []models.AttendanceRecord
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}
