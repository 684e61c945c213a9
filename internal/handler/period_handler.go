package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	"github.com/noah-isme/sma-cohort-engine/pkg/response"
)

type periodService interface {
	Location() *time.Location
	Current(ctx context.Context, date time.Time, family models.PeriodFamily) (*models.AcademicCycle, models.PeriodInfo, error)
	ActiveCycle(ctx context.Context) (*models.AcademicCycle, error)
	Windows(cycle models.AcademicCycle, family models.PeriodFamily) []models.PeriodInfo
}

// PeriodHandler exposes the academic calendar.
type PeriodHandler struct {
	service periodService
	now     func() time.Time
}

// NewPeriodHandler constructs the handler.
func NewPeriodHandler(service periodService) *PeriodHandler {
	return &PeriodHandler{service: service, now: time.Now}
}

type currentPeriodResponse struct {
	Cycle  *models.AcademicCycle `json:"cycle"`
	Period models.PeriodInfo     `json:"period"`
}

type calendarResponse struct {
	Cycle   *models.AcademicCycle `json:"cycle"`
	Family  models.PeriodFamily   `json:"family"`
	Windows []models.PeriodInfo   `json:"windows"`
}

// Current godoc
// @Summary Resolve the grading period of a date
// @Tags Periods
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param family query string false "quarter or bimester"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /periods/current [get]
func (h *PeriodHandler) Current(c *gin.Context) {
	family, err := parseFamilyQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	date, err := parseDateQuery(c, "date", h.service.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	if date.IsZero() {
		date = h.now()
	}
	cycle, period, err := h.service.Current(c.Request.Context(), date, family)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, currentPeriodResponse{Cycle: cycle, Period: period})
}

// Calendar godoc
// @Summary List the calendar windows of the active cycle
// @Tags Periods
// @Produce json
// @Param family query string false "quarter or bimester"
// @Success 200 {object} response.Envelope
// @Router /periods/calendar [get]
func (h *PeriodHandler) Calendar(c *gin.Context) {
	family, err := parseFamilyQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	cycle, err := h.service.ActiveCycle(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendarResponse{
		Cycle:   cycle,
		Family:  family,
		Windows: h.service.Windows(*cycle, family),
	})
}
