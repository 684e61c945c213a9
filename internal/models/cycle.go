package models

import "time"

// AcademicCycle models one academic year's administrative container.
type AcademicCycle struct {
	ID        string    `db:"id" json:"id" validate:"required"`
	Year      int       `db:"year" json:"year" validate:"required,min=2000,max=2100"`
	Active    bool      `db:"is_active" json:"active"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

// Course is a year-level section belonging to a single cycle.
type Course struct {
	ID        string `db:"id" json:"id" validate:"required"`
	CycleID   string `db:"cycle_id" json:"cycle_id" validate:"required"`
	YearLevel int    `db:"year_level" json:"year_level" validate:"required,min=1,max=7"`
	Name      string `db:"name" json:"name"`
}
