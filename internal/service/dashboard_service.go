package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
	"github.com/noah-isme/sma-cohort-engine/pkg/jobs"
)

type cycleSummarizer interface {
	CycleSummary(ctx context.Context, req StatisticsRequest) (*models.CycleSummary, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) (string, error)
}

// WorkloadRefreshJob is the job type recomputing a cached teacher workload.
const WorkloadRefreshJob = "workload.refresh"

type workloadRefresh struct {
	TeacherID string
	Date      time.Time
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL              time.Duration
	SatisfactoryThreshold float64
	IncludeAttendance     bool
}

// DashboardService composes presentation payloads on top of the statistics
// reporter and caches them.
type DashboardService struct {
	stats  cycleSummarizer
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
	queue  jobEnqueuer
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Statistics cycleSummarizer
	Cache      *CacheService
	Logger     *zap.Logger
	Config     DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.SatisfactoryThreshold <= 0 {
		cfg.SatisfactoryThreshold = SatisfactoryThreshold
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		stats:  params.Statistics,
		cache:  params.Cache,
		logger: logger,
		now:    time.Now,
		cfg:    cfg,
	}
}

// Workload returns the offerings teacherID is assigned to, classified on
// date's period. The boolean reports a cache hit.
func (s *DashboardService) Workload(ctx context.Context, teacherID string, date time.Time) (*models.TeacherWorkload, bool, error) {
	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	if date.IsZero() {
		date = s.now()
	}
	day := date.Format(workloadDayLayout)
	cacheKey := workloadCacheKey(teacherID, date)

	var cached models.TeacherWorkload
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	summary, err := s.stats.CycleSummary(ctx, StatisticsRequest{
		Date:              date,
		Threshold:         s.cfg.SatisfactoryThreshold,
		TeacherID:         teacherID,
		IncludeAttendance: s.cfg.IncludeAttendance,
	})
	if err != nil {
		return nil, false, err
	}

	workload := composeWorkload(teacherID, day, s.cfg.SatisfactoryThreshold, summary)
	workload.GeneratedAt = s.now().UTC().Format(time.RFC3339)
	if err := s.cache.Set(ctx, cacheKey, workload, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache teacher workload", zap.String("teacher_id", teacherID), zap.Error(err))
	}
	return workload, false, nil
}

// UseRefreshQueue routes ScheduleRefresh through queue. The queue handler
// must be HandleRefreshJob.
func (s *DashboardService) UseRefreshQueue(queue jobEnqueuer) {
	s.queue = queue
}

// ScheduleRefresh queues a recomputation of teacherID's workload on date and
// returns the job id.
func (s *DashboardService) ScheduleRefresh(teacherID string, date time.Time) (string, error) {
	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	if s.queue == nil {
		return "", appErrors.Clone(appErrors.ErrServiceUnavailable, "workload refresh is not available")
	}
	if date.IsZero() {
		date = s.now()
	}
	id, err := s.queue.Enqueue(jobs.Job{Type: WorkloadRefreshJob, Payload: workloadRefresh{TeacherID: teacherID, Date: date}})
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			return "", appErrors.Clone(appErrors.ErrTooManyRequests, "refresh queue is full, retry later")
		}
		return "", appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "workload refresh is not available")
	}
	return id, nil
}

// HandleRefreshJob drops the cached workload and computes it again.
func (s *DashboardService) HandleRefreshJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(workloadRefresh)
	if !ok {
		s.logger.Error("unexpected refresh payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	cacheKey := workloadCacheKey(payload.TeacherID, payload.Date)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		return err
	}
	if _, _, err := s.Workload(ctx, payload.TeacherID, payload.Date); err != nil {
		if appErrors.FromError(err).Status < 500 {
			s.logger.Info("workload refresh skipped", zap.String("teacher_id", payload.TeacherID), zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

// InvalidateWorkload drops cached workloads of teacherID, or of every
// teacher when teacherID is empty.
func (s *DashboardService) InvalidateWorkload(ctx context.Context, teacherID string) error {
	pattern := "workload:*"
	if teacherID = strings.TrimSpace(teacherID); teacherID != "" {
		pattern = fmt.Sprintf("workload:%s:*", teacherID)
	}
	return s.cache.Invalidate(ctx, pattern)
}

const workloadDayLayout = "2006-01-02"

func workloadCacheKey(teacherID string, date time.Time) string {
	return fmt.Sprintf("workload:%s:%s", teacherID, date.Format(workloadDayLayout))
}

func composeWorkload(teacherID, day string, threshold float64, summary *models.CycleSummary) *models.TeacherWorkload {
	workload := &models.TeacherWorkload{
		TeacherID: teacherID,
		Date:      day,
		CycleID:   summary.CycleID,
		Year:      summary.Year,
		Period:    summary.Period,
		Threshold: threshold,
		Offerings: []models.WorkloadOffering{},
		Pending:   []string{},
		Totals:    summary.Totals,
	}
	if summary.Period.GradeField.IsRating() {
		workload.Threshold = 0
	}
	for _, course := range summary.Courses {
		for _, offering := range course.Offerings {
			workload.Offerings = append(workload.Offerings, models.WorkloadOffering{
				CourseName:      course.Name,
				YearLevel:       course.YearLevel,
				OfferingSummary: offering,
			})
			if offering.CompletionState == models.CompletionPartial || offering.CompletionState == models.CompletionNoneGraded {
				workload.Pending = append(workload.Pending, offering.OfferingID)
			}
		}
	}
	sort.SliceStable(workload.Offerings, func(i, j int) bool {
		if workload.Offerings[i].YearLevel != workload.Offerings[j].YearLevel {
			return workload.Offerings[i].YearLevel < workload.Offerings[j].YearLevel
		}
		return workload.Offerings[i].SubjectName < workload.Offerings[j].SubjectName
	})
	return workload
}
