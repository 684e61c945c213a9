package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

type activeCycleReader interface {
	FindActive(ctx context.Context) (*models.AcademicCycle, error)
}

type termPhase struct {
	term  int
	phase models.Phase
}

// gradeFieldByPeriod is the closed (term, phase) selector for numeric grades.
var gradeFieldByPeriod = map[termPhase]models.GradeField{
	{1, models.PhaseOrdinary}:        models.GradeFieldTerm1,
	{1, models.PhaseIntensification}: models.GradeFieldIntensification,
	{2, models.PhaseOrdinary}:        models.GradeFieldTerm2,
	{2, models.PhaseIntensification}: models.GradeFieldTerm2,
}

// gradeFieldByBimester selects the preliminary rating field per bimester.
var gradeFieldByBimester = map[int]models.GradeField{
	1: models.GradeFieldBimester1,
	2: models.GradeFieldBimester1,
	3: models.GradeFieldBimester3,
	4: models.GradeFieldBimester3,
}

// PeriodService resolves dates to grading periods of an academic cycle.
type PeriodService struct {
	cycles activeCycleReader
	loc    *time.Location
	logger *zap.Logger
}

// NewPeriodService constructs a PeriodService. Dates are compared by calendar
// day in loc, UTC when nil.
func NewPeriodService(cycles activeCycleReader, loc *time.Location, logger *zap.Logger) *PeriodService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{cycles: cycles, loc: loc, logger: logger}
}

// Location returns the time zone calendar days are evaluated in.
func (s *PeriodService) Location() *time.Location {
	return s.loc
}

// ActiveCycle loads the single active cycle.
func (s *PeriodService) ActiveCycle(ctx context.Context) (*models.AcademicCycle, error) {
	if s.cycles == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "cycle repository unavailable")
	}
	cycle, err := s.cycles.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoActiveCycle
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active cycle")
	}
	if cycle == nil {
		return nil, appErrors.ErrNoActiveCycle
	}
	return cycle, nil
}

// Current resolves date against the active cycle.
func (s *PeriodService) Current(ctx context.Context, date time.Time, family models.PeriodFamily) (*models.AcademicCycle, models.PeriodInfo, error) {
	if family == "" {
		family = models.PeriodFamilyQuarter
	}
	if !family.Valid() {
		return nil, models.PeriodInfo{}, appErrors.Clone(appErrors.ErrValidation, "invalid period family")
	}
	cycle, err := s.ActiveCycle(ctx)
	if err != nil {
		return nil, models.PeriodInfo{}, err
	}
	return cycle, s.Resolve(date, *cycle, family), nil
}

// Resolve returns the period of the given family that date falls in. A date
// outside every window resolves to the family's first window with Defaulted
// set; it never fails.
func (s *PeriodService) Resolve(date time.Time, cycle models.AcademicCycle, family models.PeriodFamily) models.PeriodInfo {
	windows := s.Windows(cycle, family)
	day := date.In(s.loc)
	for _, window := range windows {
		if window.Window.Contains(day) {
			return window
		}
	}
	info := windows[0]
	info.Defaulted = true
	s.logger.Debug("date outside calendar windows",
		zap.String("cycle_id", cycle.ID),
		zap.String("family", string(family)),
		zap.String("date", day.Format("2006-01-02")),
	)
	return info
}

// Windows lists the calendar of a family in chronological order. Unknown
// families list the quarter calendar.
func (s *PeriodService) Windows(cycle models.AcademicCycle, family models.PeriodFamily) []models.PeriodInfo {
	year := s.cycleYear(cycle)
	start := s.termOneStart(cycle, year)

	if family == models.PeriodFamilyBimester {
		return []models.PeriodInfo{
			s.bimester(1, "1st bimester", start, s.date(year, time.May, 15)),
			s.bimester(2, "2nd bimester", s.date(year, time.May, 16), s.date(year, time.July, 11)),
			s.bimester(3, "3rd bimester", s.date(year, time.August, 1), s.date(year, time.August, 31)),
			s.bimester(4, "4th bimester", s.date(year, time.September, 1), s.date(year, time.November, 20)),
		}
	}

	return []models.PeriodInfo{
		s.quarter(1, models.PhaseOrdinary, "1st term", start, s.date(year, time.July, 11)),
		s.quarter(1, models.PhaseIntensification, "1st term intensification", s.date(year, time.July, 12), s.date(year, time.July, 31)),
		s.quarter(2, models.PhaseOrdinary, "2nd term", s.date(year, time.August, 1), s.date(year, time.November, 20)),
		s.quarter(2, models.PhaseIntensification, "December intensification", s.date(year, time.December, 9), s.date(year, time.December, 20)),
		s.quarter(2, models.PhaseIntensification, "February intensification", s.date(year+1, time.February, 10), s.lastDayOf(year+1, time.February)),
	}
}

// TermRange spans a term from its ordinary start to the end of its last
// intensification window.
func (s *PeriodService) TermRange(cycle models.AcademicCycle, term int) (models.DateRange, error) {
	var first, last *models.PeriodInfo
	windows := s.Windows(cycle, models.PeriodFamilyQuarter)
	for i := range windows {
		if windows[i].Term != term {
			continue
		}
		if first == nil {
			first = &windows[i]
		}
		last = &windows[i]
	}
	if first == nil {
		return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown term %d", term))
	}
	return models.DateRange{From: first.Window.From, To: last.Window.To}, nil
}

// CycleRange spans the whole quarter calendar of the cycle.
func (s *PeriodService) CycleRange(cycle models.AcademicCycle) models.DateRange {
	windows := s.Windows(cycle, models.PeriodFamilyQuarter)
	return models.DateRange{From: windows[0].Window.From, To: windows[len(windows)-1].Window.To}
}

// ForField builds a period explicitly selecting field, used when callers
// override calendar resolution. The final field has no calendar window.
func (s *PeriodService) ForField(cycle models.AcademicCycle, field models.GradeField) (models.PeriodInfo, error) {
	if !field.Valid() {
		return models.PeriodInfo{}, appErrors.Clone(appErrors.ErrValidation, "invalid grade field")
	}
	if field == models.GradeFieldFinal {
		return models.PeriodInfo{
			Family:     models.PeriodFamilyQuarter,
			Term:       2,
			Phase:      models.PhaseOrdinary,
			Label:      "final",
			GradeField: models.GradeFieldFinal,
			Window:     s.CycleRange(cycle),
		}, nil
	}
	family := models.PeriodFamilyQuarter
	if field.IsRating() {
		family = models.PeriodFamilyBimester
	}
	for _, window := range s.Windows(cycle, family) {
		if window.GradeField == field {
			return window, nil
		}
	}
	return models.PeriodInfo{}, appErrors.Clone(appErrors.ErrValidation, "grade field has no calendar window")
}

func (s *PeriodService) quarter(term int, phase models.Phase, label string, from, to time.Time) models.PeriodInfo {
	return models.PeriodInfo{
		Family:     models.PeriodFamilyQuarter,
		Term:       term,
		Phase:      phase,
		Label:      label,
		GradeField: gradeFieldByPeriod[termPhase{term, phase}],
		Window:     models.DateRange{From: from, To: to},
	}
}

func (s *PeriodService) bimester(number int, label string, from, to time.Time) models.PeriodInfo {
	term := 1
	if number > 2 {
		term = 2
	}
	return models.PeriodInfo{
		Family:     models.PeriodFamilyBimester,
		Term:       term,
		Phase:      models.PhaseOrdinary,
		Bimester:   number,
		Label:      label,
		GradeField: gradeFieldByBimester[number],
		Window:     models.DateRange{From: from, To: to},
	}
}

func (s *PeriodService) cycleYear(cycle models.AcademicCycle) int {
	if cycle.Year > 0 {
		return cycle.Year
	}
	if !cycle.StartDate.IsZero() {
		return cycle.StartDate.Year()
	}
	return time.Now().In(s.loc).Year()
}

func (s *PeriodService) termOneStart(cycle models.AcademicCycle, year int) time.Time {
	// StartDate is a DATE column; its own fields name the day.
	if !cycle.StartDate.IsZero() {
		start := cycle.StartDate
		if start.Year() == year {
			return s.date(year, start.Month(), start.Day())
		}
	}
	return s.date(year, time.March, 10)
}

func (s *PeriodService) date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, s.loc)
}

func (s *PeriodService) lastDayOf(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, s.loc)
}
