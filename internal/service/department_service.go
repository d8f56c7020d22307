package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/internal/repository"
	apperrors "github.com/mzaraf/vms/pkg/errors"
)

// ── 部门模块业务错误 ──

var (
	ErrDepartmentNotFound = errors.New("department not found")
)

const (
	msgDeptNameTooShort = "department name must be at least 3 characters long"
	msgDeptNameExists   = "department with this name already exists"
)

// DepartmentService 部门业务接口
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DepartmentResponse, error)
	// List 按名称排序，附带各部门访客数
	List(ctx context.Context) ([]dto.DepartmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error)
	// Delete 删除部门；用户与访客上的部门引用置空
	Delete(ctx context.Context, id string) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.validateName(ctx, name, ""); err != nil {
		return nil, err
	}

	dept := &model.Department{
		Name:        name,
		Description: trimOptional(req.Description),
	}
	if err := s.repo.Department.Create(ctx, dept); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidation("name", msgDeptNameExists)
		}
		s.logger.Error("创建部门失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("部门已创建", zap.String("department_id", dept.DepartmentID), zap.String("name", dept.Name))
	resp := toDepartmentResponse(dept, 0)
	return &resp, nil
}

// ────────────────────── Query ──────────────────────

func (s *departmentService) GetByID(ctx context.Context, id string) (*dto.DepartmentResponse, error) {
	dept, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Department.CountVisitors(ctx, dept.DepartmentID)
	if err != nil {
		s.logger.Error("统计部门访客数失败", zap.Error(err))
		return nil, err
	}
	resp := toDepartmentResponse(dept, count)
	return &resp, nil
}

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentResponse, error) {
	rows, err := s.repo.Department.ListWithVisitorCount(ctx)
	if err != nil {
		s.logger.Error("查询部门列表失败", zap.Error(err))
		return nil, err
	}
	return toDepartmentResponses(rows), nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	dept, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != dept.Name {
			if err := s.validateName(ctx, name, dept.DepartmentID); err != nil {
				return nil, err
			}
			dept.Name = name
		}
	}
	if req.Description != nil {
		dept.Description = trimOptional(req.Description)
	}

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidation("name", msgDeptNameExists)
		}
		s.logger.Error("更新部门失败", zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, dept.DepartmentID)
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrDepartmentNotFound
	}
	if err := s.repo.Department.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		s.logger.Error("删除部门失败", zap.Error(err))
		return err
	}
	s.logger.Info("部门已删除", zap.String("department_id", id))
	return nil
}

// ── 辅助函数 ──

func (s *departmentService) get(ctx context.Context, id string) (*model.Department, error) {
	if !validID(id) {
		return nil, ErrDepartmentNotFound
	}
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询部门失败", zap.Error(err))
		return nil, err
	}
	return dept, nil
}

// validateName 名称至少 3 个字符且唯一（exceptID 为自身时跳过）
func (s *departmentService) validateName(ctx context.Context, name, exceptID string) error {
	if utf8.RuneCountInString(name) < model.DepartmentNameMinLen {
		return apperrors.NewValidation("name", msgDeptNameTooShort)
	}
	existing, err := s.repo.Department.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("查询部门失败", zap.Error(err))
		return err
	}
	if existing.DepartmentID != exceptID {
		return apperrors.NewValidation("name", msgDeptNameExists)
	}
	return nil
}

// trimOptional 去除首尾空白，空串视为未填写
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
