package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
	"github.com/noah-isme/sma-cohort-engine/pkg/jobs"
)

type fakeCycleSummarizer struct {
	summary *models.CycleSummary
	err     error
	calls   int
	last    StatisticsRequest
}

func (f *fakeCycleSummarizer) CycleSummary(_ context.Context, req StatisticsRequest) (*models.CycleSummary, error) {
	f.calls++
	f.last = req
	return f.summary, f.err
}

func workloadSummary() *models.CycleSummary {
	return &models.CycleSummary{
		CycleID: "cycle-1",
		Year:    2025,
		Period:  term1Period,
		Courses: []models.CourseSummary{
			{CourseID: "course-3", Name: "3rd A", YearLevel: 3, Offerings: []models.OfferingSummary{
				{OfferingID: "off-phys-3", SubjectName: "Physics", TotalStudents: 2, Graded: 2, CompletionState: models.CompletionComplete},
			}},
			{CourseID: "course-2", Name: "2nd A", YearLevel: 2, Offerings: []models.OfferingSummary{
				{OfferingID: "off-math-2", SubjectName: "Mathematics", TotalStudents: 4, Graded: 1, CompletionState: models.CompletionPartial},
			}},
		},
		Totals: models.SummaryTotals{Offerings: 2, TotalStudents: 6},
	}
}

func TestDashboardWorkloadUsesSatisfactoryThresholdAndCaches(t *testing.T) {
	stats := &fakeCycleSummarizer{summary: workloadSummary()}
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(DashboardServiceParams{Statistics: stats, Cache: cache})
	date := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)

	workload, hit, err := svc.Workload(context.Background(), " teacher-1 ", date)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, SatisfactoryThreshold, stats.last.Threshold)
	assert.Equal(t, "teacher-1", stats.last.TeacherID)
	assert.Equal(t, "2025-05-05", workload.Date)
	require.Len(t, workload.Offerings, 2)
	assert.Equal(t, "off-math-2", workload.Offerings[0].OfferingID)
	assert.Equal(t, "2nd A", workload.Offerings[0].CourseName)
	assert.Equal(t, []string{"off-math-2"}, workload.Pending)

	cached, hit, err := svc.Workload(context.Background(), "teacher-1", date)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, stats.calls)
	assert.Equal(t, workload.Offerings[0].OfferingID, cached.Offerings[0].OfferingID)

	require.NoError(t, svc.InvalidateWorkload(context.Background(), "teacher-1"))
	_, hit, err = svc.Workload(context.Background(), "teacher-1", date)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, stats.calls)
}

func TestDashboardWorkloadValidation(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{Statistics: &fakeCycleSummarizer{}})
	_, _, err := svc.Workload(context.Background(), "  ", time.Now())
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestDashboardWorkloadPropagatesStatisticsErrors(t *testing.T) {
	stats := &fakeCycleSummarizer{err: appErrors.ErrNoActiveCycle}
	svc := NewDashboardService(DashboardServiceParams{Statistics: stats})

	_, _, err := svc.Workload(context.Background(), "teacher-1", time.Time{})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNoActiveCycle.Code))
	assert.False(t, stats.last.Date.IsZero())
}

func TestDashboardWorkloadRatingPeriodHasNoThreshold(t *testing.T) {
	summary := workloadSummary()
	summary.Period = models.PeriodInfo{Family: models.PeriodFamilyBimester, Bimester: 1, GradeField: models.GradeFieldBimester1}
	svc := NewDashboardService(DashboardServiceParams{Statistics: &fakeCycleSummarizer{summary: summary}})

	workload, _, err := svc.Workload(context.Background(), "teacher-1", time.Now())
	require.NoError(t, err)
	assert.Zero(t, workload.Threshold)
}

type fakeEnqueuer struct {
	jobs []jobs.Job
	err  error
}

func (f *fakeEnqueuer) Enqueue(job jobs.Job) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.jobs = append(f.jobs, job)
	return "job-1", nil
}

func TestDashboardScheduleRefresh(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{Statistics: &fakeCycleSummarizer{}})
	date := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)

	_, err := svc.ScheduleRefresh("teacher-1", date)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrServiceUnavailable.Code))

	queue := &fakeEnqueuer{}
	svc.UseRefreshQueue(queue)
	id, err := svc.ScheduleRefresh(" teacher-1 ", date)
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, WorkloadRefreshJob, queue.jobs[0].Type)
	assert.Equal(t, workloadRefresh{TeacherID: "teacher-1", Date: date}, queue.jobs[0].Payload)

	queue.err = fmt.Errorf("refresh: %w", jobs.ErrQueueFull)
	_, err = svc.ScheduleRefresh("teacher-1", date)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrTooManyRequests.Code))
}

func TestDashboardHandleRefreshJobRecomputes(t *testing.T) {
	stats := &fakeCycleSummarizer{summary: workloadSummary()}
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, nil, true)
	svc := NewDashboardService(DashboardServiceParams{Statistics: stats, Cache: cache})
	date := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)

	_, _, err := svc.Workload(context.Background(), "teacher-1", date)
	require.NoError(t, err)

	job := jobs.Job{ID: "j1", Type: WorkloadRefreshJob, Payload: workloadRefresh{TeacherID: "teacher-1", Date: date}}
	require.NoError(t, svc.HandleRefreshJob(context.Background(), job))
	assert.Equal(t, 2, stats.calls)

	_, hit, err := svc.Workload(context.Background(), "teacher-1", date)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, stats.calls)

	stats.err = appErrors.ErrNoActiveCycle
	require.NoError(t, svc.HandleRefreshJob(context.Background(), job))
	stats.err = errors.New("db down")
	require.Error(t, svc.HandleRefreshJob(context.Background(), job))

	require.NoError(t, svc.HandleRefreshJob(context.Background(), jobs.Job{Payload: "garbage"}))
}
