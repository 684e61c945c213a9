package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-cohort-engine/internal/middleware"
	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

type fakeDashboardSrv struct {
	resp      *models.TeacherWorkload
	hit       bool
	err       error
	teacherID string
	date      time.Time
}

func (f *fakeDashboardSrv) Workload(_ context.Context, teacherID string, date time.Time) (*models.TeacherWorkload, bool, error) {
	f.teacherID = teacherID
	f.date = date
	return f.resp, f.hit, f.err
}

func (f *fakeDashboardSrv) ScheduleRefresh(teacherID string, date time.Time) (string, error) {
	f.teacherID = teacherID
	f.date = date
	if f.err != nil {
		return "", f.err
	}
	return "job-9", nil
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

func TestDashboardHandlerWorkloadRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/workload", nil)

	handler.Workload(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerWorkloadInvalidDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/workload?date=99-99-9999", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1"})

	handler.Workload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandlerWorkloadSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{
		resp: &models.TeacherWorkload{TeacherID: "teacher-1", Threshold: 7},
		hit:  true,
	}
	handler := NewDashboardHandler(service, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/workload?date=2025-05-05", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1"})

	handler.Workload(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "teacher-1", service.teacherID)
	assert.Equal(t, time.May, service.date.Month())

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, "teacher-1", envelope.Data["teacher_id"])
	assert.Equal(t, 7.0, envelope.Data["threshold"])
}

func TestDashboardHandlerRefresh(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{}
	handler := NewDashboardHandler(service, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/dashboard/workload/refresh?date=2025-05-05", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1"})

	handler.Refresh(c)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "job-9", envelope.Data["job_id"])
	assert.Equal(t, "2025-05-05", envelope.Data["date"])
	assert.Equal(t, "teacher-1", service.teacherID)
}

func TestDashboardHandlerRefreshQueueFull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.ErrTooManyRequests}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/dashboard/workload/refresh", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1"})

	handler.Refresh(c)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
