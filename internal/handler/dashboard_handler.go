package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-cohort-engine/internal/middleware"
	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
	"github.com/noah-isme/sma-cohort-engine/pkg/response"
)

type dashboardService interface {
	Workload(ctx context.Context, teacherID string, date time.Time) (*models.TeacherWorkload, bool, error)
	ScheduleRefresh(teacherID string, date time.Time) (string, error)
}

type refreshResponse struct {
	JobID     string `json:"job_id"`
	TeacherID string `json:"teacher_id"`
	Date      string `json:"date"`
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
	loc     *time.Location
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{service: service, loc: loc}
}

// Workload godoc
// @Summary Teacher workload dashboard
// @Tags Dashboard
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /dashboard/workload [get]
func (h *DashboardHandler) Workload(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	date, err := parseDateQuery(c, "date", h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	if date.IsZero() {
		date = time.Now().In(h.loc)
	}
	workload, cacheHit, err := h.service.Workload(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, workload, middleware.Meta(c))
}

// Refresh godoc
// @Summary Recompute the caller's workload in the background
// @Tags Dashboard
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 202 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /dashboard/workload/refresh [post]
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	date, err := parseDateQuery(c, "date", h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	if date.IsZero() {
		date = time.Now().In(h.loc)
	}
	jobID, err := h.service.ScheduleRefresh(claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, refreshResponse{JobID: jobID, TeacherID: claims.UserID, Date: date.Format(dateLayout)})
}
