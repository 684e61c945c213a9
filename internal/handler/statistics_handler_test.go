package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	"github.com/noah-isme/sma-cohort-engine/internal/service"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

type fakeStatisticsSrv struct {
	last       service.StatisticsRequest
	offering   *models.OfferingSummary
	course     *models.CourseSummary
	cycle      *models.CycleSummary
	attendance *models.AttendanceReport
	lastRange  models.DateRange
	err        error
}

func (f *fakeStatisticsSrv) OfferingSummary(_ context.Context, req service.StatisticsRequest) (*models.OfferingSummary, error) {
	f.last = req
	return f.offering, f.err
}

func (f *fakeStatisticsSrv) CourseSummary(_ context.Context, req service.StatisticsRequest) (*models.CourseSummary, error) {
	f.last = req
	return f.course, f.err
}

func (f *fakeStatisticsSrv) CycleSummary(_ context.Context, req service.StatisticsRequest) (*models.CycleSummary, error) {
	f.last = req
	return f.cycle, f.err
}

func (f *fakeStatisticsSrv) CourseAttendance(_ context.Context, _ string, dateRange models.DateRange) (*models.AttendanceReport, error) {
	f.lastRange = dateRange
	return f.attendance, f.err
}

func statisticsRouter(srv *fakeStatisticsSrv, loc *time.Location) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewStatisticsHandler(srv, nil, nil, loc, service.ApprovalThreshold)
	r := gin.New()
	r.GET("/statistics/offerings/:id", h.Offering)
	r.GET("/statistics/courses", h.Cycle)
	r.GET("/statistics/courses/:id", h.Course)
	r.GET("/statistics/courses/:id/export", h.ExportCourse)
	r.GET("/attendance/courses/:id", h.CourseAttendance)
	return r
}

func TestStatisticsHandlerOfferingParsesQuery(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	srv := &fakeStatisticsSrv{offering: &models.OfferingSummary{OfferingID: "off-1", TotalStudents: 3}}
	r := statisticsRouter(srv, loc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/statistics/offerings/off-1?date=2025-07-11&threshold=7&family=QUARTER&attendance=true", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "off-1", srv.last.OfferingID)
	assert.Equal(t, 7.0, srv.last.Threshold)
	assert.Equal(t, models.PeriodFamilyQuarter, srv.last.Family)
	assert.True(t, srv.last.IncludeAttendance)
	assert.Equal(t, 11, srv.last.Date.Day())
	assert.Equal(t, loc, srv.last.Date.Location())

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "off-1", envelope.Data["offering_id"])
}

func TestStatisticsHandlerDefaultsThreshold(t *testing.T) {
	srv := &fakeStatisticsSrv{course: &models.CourseSummary{CourseID: "course-1"}}
	r := statisticsRouter(srv, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statistics/courses/course-1?field=final", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ApprovalThreshold, srv.last.Threshold)
	assert.Equal(t, models.GradeFieldFinal, srv.last.Field)
	assert.True(t, srv.last.Date.IsZero())
}

func TestStatisticsHandlerRejectsBadQuery(t *testing.T) {
	srv := &fakeStatisticsSrv{}
	r := statisticsRouter(srv, nil)

	for _, url := range []string{
		"/statistics/offerings/off-1?date=11-07-2025",
		"/statistics/offerings/off-1?family=semester",
		"/statistics/offerings/off-1?threshold=high",
		"/attendance/courses/course-1?from=2025-05-02&to=2025-05-01",
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)
	}
}

func TestStatisticsHandlerMapsServiceErrors(t *testing.T) {
	srv := &fakeStatisticsSrv{err: appErrors.ErrNoActiveCycle}
	r := statisticsRouter(srv, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statistics/courses", nil))
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_ACTIVE_CYCLE")
}

func TestStatisticsHandlerExportCourse(t *testing.T) {
	srv := &fakeStatisticsSrv{course: &models.CourseSummary{
		CourseID: "course-1",
		Period:   models.PeriodInfo{GradeField: models.GradeFieldTerm1},
		Offerings: []models.OfferingSummary{{
			OfferingID: "off-1", SubjectName: "Mathematics", TeacherIDs: []string{"t1", "t2"},
			TotalStudents: 4, Regular: 3, Retaking: 1, Graded: 3, Ungraded: 1, Passed: 2, Failed: 1,
			CompletionState: models.CompletionPartial,
		}},
	}}
	r := statisticsRouter(srv, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statistics/courses/course-1/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "course-course-1-term1.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "offering_id,subject,teachers,students,regular,retaking,released,graded,ungraded,passed,failed,completion", lines[0])
	assert.Equal(t, "off-1,Mathematics,t1 t2,4,3,1,0,3,1,2,1,partial", lines[1])
}

func TestStatisticsHandlerExportCoursePDF(t *testing.T) {
	srv := &fakeStatisticsSrv{course: &models.CourseSummary{
		CourseID:  "course-1",
		Name:      "1st A",
		YearLevel: 1,
		Period:    models.PeriodInfo{Family: models.PeriodFamilyQuarter, GradeField: models.GradeFieldTerm1},
		Offerings: []models.OfferingSummary{{OfferingID: "off-1", SubjectName: "Mathematics"}},
	}}
	r := statisticsRouter(srv, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statistics/courses/course-1/export?format=PDF", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "course-course-1-term1.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statistics/courses/course-1/export?format=xlsx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatisticsHandlerCourseAttendance(t *testing.T) {
	srv := &fakeStatisticsSrv{attendance: &models.AttendanceReport{CourseID: "course-1"}}
	r := statisticsRouter(srv, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attendance/courses/course-1?from=2025-03-01&to=2025-03-31", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.March, srv.lastRange.From.Month())
	assert.Equal(t, 31, srv.lastRange.To.Day())
}
