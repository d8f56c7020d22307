package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mzaraf/vms/config"
	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/internal/repository"
	apperrors "github.com/mzaraf/vms/pkg/errors"
)

// ── 访客模块业务错误 ──

var (
	ErrVisitorNotFound  = errors.New("visitor not found")
	ErrNotPreRegistered = errors.New("not pre-registered")
	ErrNotCheckedIn     = errors.New("not checked in")
)

const (
	msgRequired         = "this field is required"
	msgVisitDatePast    = "visit date cannot be in the past"
	msgVisitDateFormat  = "date has wrong format, use YYYY-MM-DD"
	msgCreateStatus     = "status must be pre-registered or checked-in"
	msgDeptOutsideScope = "you can only register visitors for your own department"
)

// VisitorService 访客登记与生命周期业务接口
//
// 状态只能经 CheckIn / CheckOut 单向推进；Update 仅修改描述性字段。
type VisitorService interface {
	Create(ctx context.Context, req *dto.CreateVisitorRequest, requester Requester) (*dto.VisitorResponse, error)
	Get(ctx context.Context, id string, requester Requester) (*dto.VisitorResponse, error)
	List(ctx context.Context, req *dto.VisitorListRequest, requester Requester) ([]dto.VisitorResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateVisitorRequest, requester Requester) (*dto.VisitorResponse, error)
	Delete(ctx context.Context, id string, requester Requester) error
	CheckIn(ctx context.Context, id string, requester Requester) (*dto.VisitorResponse, error)
	CheckOut(ctx context.Context, id string, requester Requester) (*dto.VisitorResponse, error)
}

type visitorService struct {
	cfg    *config.VisitorConfig
	loc    *time.Location
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewVisitorService 创建 VisitorService 实例
func NewVisitorService(cfg *config.VisitorConfig, repo *repository.Repository, logger *zap.Logger) VisitorService {
	return &visitorService{
		cfg:    cfg,
		loc:    cfg.Location(),
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *visitorService) Create(ctx context.Context, req *dto.CreateVisitorRequest, requester Requester) (*dto.VisitorResponse, error) {
	now := s.now().UTC()
	ve := &apperrors.ValidationError{}

	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	purpose := strings.TrimSpace(req.Purpose)
	host := strings.TrimSpace(req.Host)
	requireField(ve, "name", name)
	requireField(ve, "phone", phone)
	requireField(ve, "purpose", purpose)
	requireField(ve, "host", host)

	// 来访日期不得早于今天（按业务时区）
	visitDate, ok := s.parseVisitDate(ve, req.VisitDate)
	if ok && visitDate.Before(civilDate(now, s.loc)) {
		ve.Add("visit_date", msgVisitDatePast)
	}

	status := model.VisitorStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = model.VisitorStatusCheckedIn
	}
	if status != model.VisitorStatusPreRegistered && status != model.VisitorStatusCheckedIn {
		ve.Add("status", msgCreateStatus)
	}

	var dept *model.Department
	deptID := strings.TrimSpace(req.DepartmentID)
	if deptID == "" {
		ve.Add("department_id", msgRequired)
	} else {
		var err error
		if dept, err = s.resolveDepartment(ctx, deptID, requester, ve); err != nil {
			return nil, err
		}
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	visitor := &model.Visitor{
		Name:         name,
		Email:        trimOptional(req.Email),
		Phone:        phone,
		Purpose:      purpose,
		DepartmentID: &dept.DepartmentID,
		Host:         host,
		Organization: strings.TrimSpace(req.Organization),
		Address:      strings.TrimSpace(req.Address),
		Status:       status,
		VisitDate:    visitDate,
		CreatedBy:    &requester.UserID,
	}
	if status == model.VisitorStatusCheckedIn {
		visitor.CheckInTime = &now
	}
	visitor.Avatar = trimOptional(req.Avatar)
	if visitor.Avatar == nil {
		avatar := s.avatarURL(name)
		visitor.Avatar = &avatar
	}

	if err := s.repo.Visitor.Create(ctx, visitor); err != nil {
		s.logger.Error("创建访客失败", zap.Error(err))
		return nil, err
	}
	visitor.Department = dept

	s.logger.Info("访客已登记",
		zap.String("visitor_id", visitor.VisitorID),
		zap.String("status", string(visitor.Status)),
		zap.String("created_by", requester.UserID),
	)
	resp := toVisitorResponse(visitor)
	return &resp, nil
}

// ────────────────────── Query ──────────────────────

func (s *visitorService) Get(ctx context.Context, id string, requester Requester) (*dto.VisitorResponse, error) {
	visitor, err := s.get(ctx, id, ScopeFor(requester))
	if err != nil {
		return nil, err
	}
	resp := toVisitorResponse(visitor)
	return &resp, nil
}

func (s *visitorService) List(ctx context.Context, req *dto.VisitorListRequest, requester Requester) ([]dto.VisitorResponse, error) {
	filters, err := listFilters(req)
	if err != nil {
		return nil, err
	}
	visitors, err := s.repo.Visitor.List(ctx, filters, ScopeFor(requester))
	if err != nil {
		s.logger.Error("查询访客列表失败", zap.Error(err))
		return nil, err
	}
	return toVisitorResponses(visitors), nil
}

// ────────────────────── Update ──────────────────────

func (s *visitorService) Update(ctx context.Context, id string, req *dto.UpdateVisitorRequest, requester Requester) (*dto.VisitorResponse, error) {
	scope := ScopeFor(requester)
	visitor, err := s.get(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	ve := &apperrors.ValidationError{}
	setRequired := func(field string, src *string, dst *string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if v == "" {
			ve.Add(field, msgRequired)
			return
		}
		*dst = v
	}
	setRequired("name", req.Name, &visitor.Name)
	setRequired("phone", req.Phone, &visitor.Phone)
	setRequired("purpose", req.Purpose, &visitor.Purpose)
	setRequired("host", req.Host, &visitor.Host)

	if req.Email != nil {
		visitor.Email = trimOptional(req.Email)
	}
	if req.Organization != nil {
		visitor.Organization = strings.TrimSpace(*req.Organization)
	}
	if req.Address != nil {
		visitor.Address = strings.TrimSpace(*req.Address)
	}

	// 仅在来访日期实际变化时校验"不早于今天"，历史记录可照常编辑其他字段
	if req.VisitDate != nil {
		if date, ok := s.parseVisitDate(ve, *req.VisitDate); ok && !date.Equal(visitor.VisitDate) {
			if date.Before(civilDate(s.now(), s.loc)) {
				ve.Add("visit_date", msgVisitDatePast)
			}
			visitor.VisitDate = date
		}
	}

	if req.DepartmentID != nil {
		deptID := strings.TrimSpace(*req.DepartmentID)
		if deptID == "" {
			ve.Add("department_id", msgRequired)
		} else {
			dept, err := s.resolveDepartment(ctx, deptID, requester, ve)
			if err != nil {
				return nil, err
			}
			if dept != nil {
				visitor.DepartmentID = &dept.DepartmentID
			}
		}
	}

	if req.Avatar != nil {
		visitor.Avatar = trimOptional(req.Avatar)
		if visitor.Avatar == nil {
			avatar := s.avatarURL(visitor.Name)
			visitor.Avatar = &avatar
		}
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	visitor.Department = nil
	if err := s.repo.Visitor.UpdateDetails(ctx, visitor); err != nil {
		s.logger.Error("更新访客失败", zap.Error(err))
		return nil, err
	}

	return s.Get(ctx, visitor.VisitorID, requester)
}

// ────────────────────── Delete ──────────────────────

func (s *visitorService) Delete(ctx context.Context, id string, requester Requester) error {
	if !validID(id) {
		return ErrVisitorNotFound
	}
	deleted, err := s.repo.Visitor.Delete(ctx, id, ScopeFor(requester))
	if err != nil {
		s.logger.Error("删除访客失败", zap.Error(err))
		return err
	}
	if !deleted {
		return ErrVisitorNotFound
	}
	s.logger.Info("访客已删除", zap.String("visitor_id", id), zap.String("operator", requester.UserID))
	return nil
}

// ────────────────────── Lifecycle ──────────────────────

func (s *visitorService) CheckIn(ctx context.Context, id string, requester Requester) (*dto.VisitorResponse, error) {
	return s.transition(ctx, id, model.VisitorStatusPreRegistered, ErrNotPreRegistered, requester)
}

func (s *visitorService) CheckOut(ctx context.Context, id string, requester Requester) (*dto.VisitorResponse, error) {
	return s.transition(ctx, id, model.VisitorStatusCheckedIn, ErrNotCheckedIn, requester)
}

// transition 以条件更新完成状态迁移：状态判断与写入在同一条语句中，
// 并发请求中只有一个能命中；未命中时再读一次区分"不存在"与"状态不符"。
func (s *visitorService) transition(ctx context.Context, id string, from model.VisitorStatus, conflict error, requester Requester) (*dto.VisitorResponse, error) {
	if !validID(id) {
		return nil, ErrVisitorNotFound
	}
	to, ok := from.Next()
	if !ok {
		return nil, conflict
	}

	scope := ScopeFor(requester)
	applied, err := s.repo.Visitor.Transition(ctx, id, from, to, s.now().UTC(), scope)
	if err != nil {
		s.logger.Error("访客状态迁移失败", zap.String("visitor_id", id), zap.String("to", string(to)), zap.Error(err))
		return nil, err
	}
	if !applied {
		if _, err := s.get(ctx, id, scope); err != nil {
			return nil, err
		}
		return nil, conflict
	}

	s.logger.Info("访客状态已更新",
		zap.String("visitor_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("operator", requester.UserID),
	)
	return s.Get(ctx, id, requester)
}

// ── 辅助函数 ──

func (s *visitorService) get(ctx context.Context, id string, scope repository.Scope) (*model.Visitor, error) {
	if !validID(id) {
		return nil, ErrVisitorNotFound
	}
	visitor, err := s.repo.Visitor.GetByID(ctx, id, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		s.logger.Error("查询访客失败", zap.Error(err))
		return nil, err
	}
	return visitor, nil
}

// resolveDepartment 校验部门存在且在请求者的可见范围内
func (s *visitorService) resolveDepartment(ctx context.Context, id string, requester Requester, ve *apperrors.ValidationError) (*model.Department, error) {
	if !validID(id) {
		ve.Add("department_id", msgDeptNotExist)
		return nil, nil
	}
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ve.Add("department_id", msgDeptNotExist)
			return nil, nil
		}
		s.logger.Error("查询部门失败", zap.Error(err))
		return nil, err
	}
	if !ScopeFor(requester).Allows(&dept.DepartmentID) {
		ve.Add("department_id", msgDeptOutsideScope)
		return nil, nil
	}
	return dept, nil
}

func (s *visitorService) parseVisitDate(ve *apperrors.ValidationError, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		ve.Add("visit_date", msgRequired)
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		ve.Add("visit_date", msgVisitDateFormat)
		return time.Time{}, false
	}
	return date, true
}

// avatarURL 由姓名生成默认头像地址
func (s *visitorService) avatarURL(name string) string {
	return avatarURL(s.cfg.AvatarBaseURL, name)
}

func avatarURL(base, name string) string {
	return base + "?name=" + url.QueryEscape(name) + "&background=random"
}

func requireField(ve *apperrors.ValidationError, field, value string) {
	if value == "" {
		ve.Add(field, msgRequired)
	}
}

// civilDate 将时刻转换为业务时区下的日期，统一以 UTC 零点表示
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// listFilters 将查询参数转换为仓储过滤条件
func listFilters(req *dto.VisitorListRequest) (*repository.VisitorListFilters, error) {
	filters := &repository.VisitorListFilters{}
	if req == nil {
		return filters, nil
	}
	if req.Status != "" {
		status := model.VisitorStatus(req.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidation("status", "status must be one of pre-registered, checked-in, checked-out")
		}
		filters.Status = status
	}
	filters.Search = strings.TrimSpace(req.Search)
	return filters, nil
}
