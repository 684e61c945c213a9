package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

type fakeRosterSrv struct {
	resolution *models.RosterResolution
	offerings  []models.SubjectOffering
	err        error
}

func (f *fakeRosterSrv) OfferingRoster(context.Context, string) (*models.RosterResolution, error) {
	return f.resolution, f.err
}

func (f *fakeRosterSrv) StudentOfferings(context.Context, string) ([]models.SubjectOffering, error) {
	return f.offerings, f.err
}

func rosterRouter(srv *fakeRosterSrv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRosterHandler(srv)
	r := gin.New()
	r.GET("/offerings/:id/roster", h.Offering)
	r.GET("/students/:id/offerings", h.Student)
	return r
}

func TestRosterHandlerOffering(t *testing.T) {
	r := rosterRouter(&fakeRosterSrv{resolution: &models.RosterResolution{
		OfferingID: "off-1",
		Students:   models.NewStudentSet("s2", "s1"),
		Regular:    2,
	}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offerings/off-1/roster", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"students":["s1","s2"]`)
}

func TestRosterHandlerStudentEmptyList(t *testing.T) {
	r := rosterRouter(&fakeRosterSrv{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/s1/offerings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	assert.Contains(t, rec.Body.String(), `"total":0`)
}

func TestRosterHandlerNotFound(t *testing.T) {
	r := rosterRouter(&fakeRosterSrv{err: appErrors.Clone(appErrors.ErrNotFound, "offering not found")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offerings/missing/roster", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
