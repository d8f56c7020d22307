package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mzaraf/vms/config"
	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/repository"
)

// ── 统计模块业务错误 ──

var (
	ErrInvalidPeriod = errors.New("period must be one of week, month, year")
	// ErrStatsUnavailable 聚合查询失败；具体原因只写日志，不返回给调用方
	ErrStatsUnavailable = errors.New("failed to fetch statistics")
)

// 统计周期
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// StatsService 访客统计业务接口，所有查询先按请求者范围过滤再聚合
type StatsService interface {
	// TimeSeries 按周期分桶计数，不补零
	TimeSeries(ctx context.Context, period string, requester Requester) ([]dto.TimeSeriesPoint, error)
	// DepartmentBreakdown 按部门计数（无部门访客归入 department=null），按数量降序
	DepartmentBreakdown(ctx context.Context, requester Requester) ([]dto.DepartmentStat, error)
	Summary(ctx context.Context, requester Requester) (*dto.SummaryResponse, error)
}

type statsService struct {
	loc    *time.Location
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(cfg *config.VisitorConfig, repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{
		loc:    cfg.Location(),
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// bucketing 各周期的回溯天数与分桶方式
type bucketing struct {
	days  int
	key   func(date time.Time) time.Time // 桶的代表日期
	label func(date time.Time) string
}

var periods = map[string]bucketing{
	PeriodWeek: {
		days: 7,
		// 同一星期几跨日期合并：以 0001-01-(weekday+1) 作为桶键
		key: func(d time.Time) time.Time {
			return time.Date(1, 1, int(d.Weekday())+1, 0, 0, 0, 0, time.UTC)
		},
		label: func(d time.Time) string { return d.Weekday().String() },
	},
	PeriodMonth: {
		days:  30,
		key:   func(d time.Time) time.Time { return d },
		label: func(d time.Time) string { return d.Format("02") },
	},
	PeriodYear: {
		days: 365,
		key: func(d time.Time) time.Time {
			return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		},
		label: func(d time.Time) string { return d.Format("Jan") },
	},
}

// ────────────────────── TimeSeries ──────────────────────

func (s *statsService) TimeSeries(ctx context.Context, period string, requester Requester) ([]dto.TimeSeriesPoint, error) {
	if period == "" {
		period = PeriodWeek
	}
	b, ok := periods[period]
	if !ok {
		return nil, ErrInvalidPeriod
	}

	since := civilDate(s.now(), s.loc).AddDate(0, 0, -b.days)
	rows, err := s.repo.Visitor.CountByVisitDate(ctx, since, ScopeFor(requester))
	if err != nil {
		s.logger.Error("按日期统计访客失败", zap.String("period", period), zap.Error(err))
		return nil, ErrStatsUnavailable
	}

	counts := make(map[time.Time]int64)
	labels := make(map[time.Time]string)
	for _, row := range rows {
		date := civilDate(row.VisitDate, time.UTC)
		k := b.key(date)
		counts[k] += row.Count
		labels[k] = b.label(date)
	}

	keys := make([]time.Time, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	result := make([]dto.TimeSeriesPoint, 0, len(keys))
	for _, k := range keys {
		if counts[k] == 0 {
			continue
		}
		result = append(result, dto.TimeSeriesPoint{Date: labels[k], Count: counts[k]})
	}
	return result, nil
}

// ────────────────────── DepartmentBreakdown ──────────────────────

func (s *statsService) DepartmentBreakdown(ctx context.Context, requester Requester) ([]dto.DepartmentStat, error) {
	rows, err := s.repo.Visitor.CountByDepartment(ctx, ScopeFor(requester))
	if err != nil {
		s.logger.Error("按部门统计访客失败", zap.Error(err))
		return nil, ErrStatsUnavailable
	}

	result := make([]dto.DepartmentStat, 0, len(rows))
	for _, row := range rows {
		if row.Count == 0 {
			continue
		}
		result = append(result, dto.DepartmentStat{Department: row.Department, Count: row.Count})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result, nil
}

// ────────────────────── Summary ──────────────────────

func (s *statsService) Summary(ctx context.Context, requester Requester) (*dto.SummaryResponse, error) {
	sum, err := s.repo.Visitor.Summary(ctx, ScopeFor(requester))
	if err != nil {
		s.logger.Error("访客汇总统计失败", zap.Error(err))
		return nil, ErrStatsUnavailable
	}
	return &dto.SummaryResponse{
		Total:         sum.Total,
		CheckedIn:     sum.CheckedIn,
		PreRegistered: sum.PreRegistered,
		CheckedOut:    sum.CheckedOut,
	}, nil
}
