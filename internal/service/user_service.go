package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/internal/repository"
	apperrors "github.com/mzaraf/vms/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserSelfDelete = errors.New("you cannot delete your own account")
)

const (
	msgEmailExists      = "a user with this email already exists"
	msgPasswordMismatch = "passwords do not match"
	msgDeptNotExist     = "department does not exist"
)

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context) ([]dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	ve := &apperrors.ValidationError{}

	email := normalizeEmail(req.Email)
	if email == "" {
		ve.Add("email", "this field is required")
	} else if taken, err := s.emailTaken(ctx, email, ""); err != nil {
		return nil, err
	} else if taken {
		ve.Add("email", msgEmailExists)
	}

	if req.Password != req.PasswordConfirmation {
		ve.Add("password_confirmation", msgPasswordMismatch)
	}

	role := req.Role
	if role == "" {
		role = model.RoleStaff
	}
	if !model.ValidRole(role) {
		ve.Add("role", "role must be one of admin, staff, director")
	}

	dept, err := s.resolveDepartment(ctx, req.DepartmentID, ve)
	if err != nil {
		return nil, err
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = email
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if dept != nil {
		user.DepartmentID = &dept.DepartmentID
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidation("email", msgEmailExists)
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}
	user.Department = dept

	s.logger.Info("用户已创建", zap.String("user_id", user.UserID), zap.String("role", user.Role))
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Query ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	if !validID(id) {
		return nil, ErrUserNotFound
	}
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !validID(id) {
		return nil, ErrUserNotFound
	}
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	ve := &apperrors.ValidationError{}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			ve.Add("email", "this field may not be blank")
		} else if email != user.Email {
			taken, err := s.emailTaken(ctx, email, user.UserID)
			if err != nil {
				return nil, err
			}
			if taken {
				ve.Add("email", msgEmailExists)
			}
			user.Email = email
		}
	}
	if req.Username != nil {
		if name := strings.TrimSpace(*req.Username); name != "" {
			user.Username = name
		}
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			ve.Add("role", "role must be one of admin, staff, director")
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	// 修改密码时同样需要二次确认
	if req.Password != nil {
		if req.PasswordConfirmation == nil || *req.PasswordConfirmation != *req.Password {
			ve.Add("password_confirmation", msgPasswordMismatch)
		}
	}

	if req.DepartmentID != nil {
		dept, err := s.resolveDepartment(ctx, req.DepartmentID, ve)
		if err != nil {
			return nil, err
		}
		if dept == nil {
			user.DepartmentID = nil
		} else {
			user.DepartmentID = &dept.DepartmentID
		}
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	user.Department = nil
	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidation("email", msgEmailExists)
		}
		s.logger.Error("更新用户失败", zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, user.UserID)
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}
	if !validID(id) {
		return ErrUserNotFound
	}
	if err := s.repo.User.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("删除用户失败", zap.Error(err))
		return err
	}
	s.logger.Info("用户已删除", zap.String("user_id", id), zap.String("operator", callerID))
	return nil
}

// ── 辅助函数 ──

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailTaken 邮箱是否已被 exceptID 以外的用户占用
func (s *userService) emailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	existing, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return false, err
	}
	return existing.UserID != exceptID, nil
}

// resolveDepartment 解析可选的部门引用；nil 或空串表示无部门
func (s *userService) resolveDepartment(ctx context.Context, id *string, ve *apperrors.ValidationError) (*model.Department, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	deptID := strings.TrimSpace(*id)
	if !validID(deptID) {
		ve.Add("department_id", msgDeptNotExist)
		return nil, nil
	}
	dept, err := s.repo.Department.GetByID(ctx, deptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ve.Add("department_id", msgDeptNotExist)
			return nil, nil
		}
		s.logger.Error("查询部门失败", zap.Error(err))
		return nil, err
	}
	return dept, nil
}
