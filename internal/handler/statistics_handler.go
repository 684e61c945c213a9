package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-cohort-engine/internal/middleware"
	"github.com/noah-isme/sma-cohort-engine/internal/models"
	"github.com/noah-isme/sma-cohort-engine/internal/service"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
	"github.com/noah-isme/sma-cohort-engine/pkg/export"
	"github.com/noah-isme/sma-cohort-engine/pkg/response"
)

type statisticsService interface {
	OfferingSummary(ctx context.Context, req service.StatisticsRequest) (*models.OfferingSummary, error)
	CourseSummary(ctx context.Context, req service.StatisticsRequest) (*models.CourseSummary, error)
	CycleSummary(ctx context.Context, req service.StatisticsRequest) (*models.CycleSummary, error)
	CourseAttendance(ctx context.Context, courseID string, dateRange models.DateRange) (*models.AttendanceReport, error)
}

// StatisticsHandler exposes offering, course and cycle statistics.
type StatisticsHandler struct {
	service          statisticsService
	csv              *export.CSVExporter
	pdf              *export.PDFExporter
	loc              *time.Location
	defaultThreshold float64
}

// NewStatisticsHandler constructs the handler. Dates in queries are read as
// calendar days in loc.
func NewStatisticsHandler(svc statisticsService, csv *export.CSVExporter, pdf *export.PDFExporter, loc *time.Location, defaultThreshold float64) *StatisticsHandler {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if loc == nil {
		loc = time.UTC
	}
	if defaultThreshold <= 0 {
		defaultThreshold = service.ApprovalThreshold
	}
	return &StatisticsHandler{service: svc, csv: csv, pdf: pdf, loc: loc, defaultThreshold: defaultThreshold}
}

func (h *StatisticsHandler) request(c *gin.Context) (service.StatisticsRequest, error) {
	family, err := parseFamilyQuery(c)
	if err != nil {
		return service.StatisticsRequest{}, err
	}
	date, err := parseDateQuery(c, "date", h.loc)
	if err != nil {
		return service.StatisticsRequest{}, err
	}
	threshold, err := parseThresholdQuery(c, h.defaultThreshold)
	if err != nil {
		return service.StatisticsRequest{}, err
	}
	dateRange, err := parseRangeQuery(c, h.loc)
	if err != nil {
		return service.StatisticsRequest{}, err
	}
	return service.StatisticsRequest{
		Date:              date,
		Family:            family,
		Field:             models.GradeField(strings.ToLower(strings.TrimSpace(c.Query("field")))),
		Threshold:         threshold,
		TeacherID:         strings.TrimSpace(c.Query("teacherId")),
		IncludeAttendance: parseBoolQuery(c, "attendance"),
		AttendanceRange:   dateRange,
	}, nil
}

// Offering godoc
// @Summary Statistics of one offering
// @Tags Statistics
// @Produce json
// @Param id path string true "Offering ID"
// @Param date query string false "Date (YYYY-MM-DD) selecting the period"
// @Param family query string false "quarter or bimester"
// @Param field query string false "Grade field override"
// @Param threshold query number false "Pass threshold"
// @Param attendance query bool false "Include attendance rollup"
// @Success 200 {object} response.Envelope
// @Router /statistics/offerings/{id} [get]
func (h *StatisticsHandler) Offering(c *gin.Context) {
	req, err := h.request(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.OfferingID = c.Param("id")
	summary, err := h.service.OfferingSummary(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Course godoc
// @Summary Statistics of every offering of a course
// @Tags Statistics
// @Produce json
// @Param id path string true "Course ID"
// @Param date query string false "Date (YYYY-MM-DD) selecting the period"
// @Param threshold query number false "Pass threshold"
// @Success 200 {object} response.Envelope
// @Router /statistics/courses/{id} [get]
func (h *StatisticsHandler) Course(c *gin.Context) {
	req, err := h.request(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.CourseID = c.Param("id")
	summary, err := h.service.CourseSummary(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Cycle godoc
// @Summary Statistics of every course of the active cycle
// @Tags Statistics
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD) selecting the period"
// @Param threshold query number false "Pass threshold"
// @Param teacherId query string false "Restrict to a teacher's offerings"
// @Success 200 {object} response.Envelope
// @Router /statistics/courses [get]
func (h *StatisticsHandler) Cycle(c *gin.Context) {
	req, err := h.request(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.CycleSummary(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "courses", len(summary.Courses))
	response.JSON(c, http.StatusOK, summary, middleware.Meta(c))
}

// ExportCourse godoc
// @Summary Export course statistics as CSV or PDF
// @Tags Statistics
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Course ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {string} string "Export file"
// @Router /statistics/courses/{id}/export [get]
func (h *StatisticsHandler) ExportCourse(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	if format != "csv" && format != "pdf" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	req, err := h.request(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.CourseID = c.Param("id")
	summary, err := h.service.CourseSummary(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := courseDataset(summary)
	var (
		payload     []byte
		contentType string
	)
	switch format {
	case "pdf":
		payload, err = h.pdf.Render(dataset, export.Document{
			Title:    fmt.Sprintf("%s (%d)", summary.Name, summary.YearLevel),
			Subtitle: fmt.Sprintf("%s %s", summary.Period.Family, summary.Period.GradeField),
			Footer:   time.Now().In(h.loc).Format("2006-01-02 15:04"),
		})
		contentType = "application/pdf"
	default:
		payload, err = h.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}
	filename := fmt.Sprintf("course-%s-%s.%s", summary.CourseID, summary.Period.GradeField, format)
	response.Attachment(c, filename, contentType, payload)
}

// CourseAttendance godoc
// @Summary Attendance regularity of a course
// @Tags Attendance
// @Produce json
// @Param id path string true "Course ID"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/courses/{id} [get]
func (h *StatisticsHandler) CourseAttendance(c *gin.Context) {
	dateRange, err := parseRangeQuery(c, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.service.CourseAttendance(c.Request.Context(), c.Param("id"), dateRange)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

var courseExportHeaders = []string{
	"offering_id", "subject", "teachers", "students", "regular", "retaking", "released",
	"graded", "ungraded", "passed", "failed", "completion",
}

func courseDataset(summary *models.CourseSummary) export.Dataset {
	dataset := export.Dataset{Headers: courseExportHeaders}
	for _, offering := range summary.Offerings {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"offering_id": offering.OfferingID,
			"subject":     offering.SubjectName,
			"teachers":    strings.Join(offering.TeacherIDs, " "),
			"students":    strconv.Itoa(offering.TotalStudents),
			"regular":     strconv.Itoa(offering.Regular),
			"retaking":    strconv.Itoa(offering.Retaking),
			"released":    strconv.Itoa(offering.Released),
			"graded":      strconv.Itoa(offering.Graded),
			"ungraded":    strconv.Itoa(offering.Ungraded),
			"passed":      strconv.Itoa(offering.Passed),
			"failed":      strconv.Itoa(offering.Failed),
			"completion":  string(offering.CompletionState),
		})
	}
	return dataset
}
