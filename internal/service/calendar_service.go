package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/mzaraf/vms/config"
	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/internal/repository"
)

// ── 访客日历 ────────────────────────────────────────────────
//
// 将范围内"已预约、尚未到访"的访客导出为 iCalendar (RFC 5545)，
// 供前台或部门负责人以日历订阅的方式查看即将到访的访客。
//   - 每位访客一个全天 VEVENT，UID 使用访客 ID，重复订阅时可去重
//   - 时间窗口为今天起 days 天（含今天）
// ─────────────────────────────────────────────────────────────

const (
	defaultCalendarDays = 30
	calendarProductID   = "-//vms//visitor calendar//EN"
)

// CalendarService 访客日历业务接口
type CalendarService interface {
	// UpcomingVisits 生成即将到访访客的 iCalendar 文本
	UpcomingVisits(ctx context.Context, days int, requester Requester) (string, error)
}

type calendarService struct {
	loc    *time.Location
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.VisitorConfig, repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{
		loc:    cfg.Location(),
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *calendarService) UpcomingVisits(ctx context.Context, days int, requester Requester) (string, error) {
	if days <= 0 {
		days = defaultCalendarDays
	}
	now := s.now().UTC()
	from := civilDate(now, s.loc)
	to := from.AddDate(0, 0, days-1)

	visitors, err := s.repo.Visitor.List(ctx, &repository.VisitorListFilters{
		Status:        model.VisitorStatusPreRegistered,
		VisitDateFrom: &from,
		VisitDateTo:   &to,
	}, ScopeFor(requester))
	if err != nil {
		s.logger.Error("查询预约访客失败", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Upcoming visitors")

	for i := range visitors {
		v := &visitors[i]
		event := cal.AddEvent(v.VisitorID)
		event.SetDtStampTime(now)
		event.SetCreatedTime(v.CreatedAt)
		event.SetModifiedAt(v.UpdatedAt)
		event.SetAllDayStartAt(v.VisitDate)
		event.SetAllDayEndAt(v.VisitDate.AddDate(0, 0, 1))
		event.SetSummary(eventSummary(v))
		event.SetDescription(eventDescription(v))
		if dept := v.DepartmentName(); dept != "" {
			event.SetLocation(dept)
		}
	}

	return cal.Serialize(), nil
}

func eventSummary(v *model.Visitor) string {
	if v.Organization != "" {
		return fmt.Sprintf("%s (%s)", v.Name, v.Organization)
	}
	return v.Name
}

func eventDescription(v *model.Visitor) string {
	lines := []string{
		"Host: " + v.Host,
		"Purpose: " + v.Purpose,
		"Phone: " + v.Phone,
	}
	if v.Email != nil {
		lines = append(lines, "Email: "+*v.Email)
	}
	return strings.Join(lines, "\n")
}
