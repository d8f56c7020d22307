package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mzaraf/vms/internal/model"
)

// VisitorListFilters 访客列表过滤条件
type VisitorListFilters struct {
	Status        model.VisitorStatus // 为空则不过滤
	Search        string              // 姓名 / 邮箱 / 部门名，不区分大小写的子串匹配
	VisitDateFrom *time.Time          // visit_date >= VisitDateFrom
	VisitDateTo   *time.Time          // visit_date <= VisitDateTo
	Limit         int                 // <= 0 表示不限
}

// DateCount 按来访日期聚合的计数
type DateCount struct {
	VisitDate time.Time
	Count     int64
}

// DepartmentCount 按部门聚合的计数；无部门的访客 DepartmentID / Department 为 nil
type DepartmentCount struct {
	DepartmentID *string
	Department   *string
	Count        int64
}

// VisitorSummary 访客汇总计数
type VisitorSummary struct {
	Total         int64
	CheckedIn     int64
	PreRegistered int64
	CheckedOut    int64
}

// VisitorRepository 访客数据访问接口
type VisitorRepository interface {
	Create(ctx context.Context, visitor *model.Visitor) error
	GetByID(ctx context.Context, id string, scope Scope) (*model.Visitor, error)
	List(ctx context.Context, filters *VisitorListFilters, scope Scope) ([]model.Visitor, error)
	// UpdateDetails 仅更新描述性字段，status 与签到/签离时间不经此路径写入
	UpdateDetails(ctx context.Context, visitor *model.Visitor) error
	Delete(ctx context.Context, id string, scope Scope) (bool, error)
	// Transition 原子状态迁移：仅当当前状态为 from 时更新为 to，返回是否命中
	Transition(ctx context.Context, id string, from, to model.VisitorStatus, at time.Time, scope Scope) (bool, error)

	CountByVisitDate(ctx context.Context, since time.Time, scope Scope) ([]DateCount, error)
	CountByDepartment(ctx context.Context, scope Scope) ([]DepartmentCount, error)
	Summary(ctx context.Context, scope Scope) (*VisitorSummary, error)
}

// visitorDetailColumns 通用编辑允许写入的列
var visitorDetailColumns = []string{
	"name", "email", "phone", "purpose", "department_id", "host",
	"organization", "address", "visit_date", "avatar", "updated_at",
}

// visitorRepo VisitorRepository 的 GORM 实现
type visitorRepo struct {
	db *gorm.DB
}

// NewVisitorRepo 创建 VisitorRepository 实例
func NewVisitorRepo(db *gorm.DB) VisitorRepository {
	return &visitorRepo{db: db}
}

func (r *visitorRepo) scoped(ctx context.Context, scope Scope) *gorm.DB {
	return scope.Apply(r.db.WithContext(ctx).Model(&model.Visitor{}))
}

func (r *visitorRepo) Create(ctx context.Context, visitor *model.Visitor) error {
	return r.db.WithContext(ctx).Create(visitor).Error
}

func (r *visitorRepo) GetByID(ctx context.Context, id string, scope Scope) (*model.Visitor, error) {
	var visitor model.Visitor
	err := r.scoped(ctx, scope).
		Preload("Department").
		Where("visitors.visitor_id = ?", id).
		First(&visitor).Error
	if err != nil {
		return nil, err
	}
	return &visitor, nil
}

func (r *visitorRepo) List(ctx context.Context, filters *VisitorListFilters, scope Scope) ([]model.Visitor, error) {
	db := r.scoped(ctx, scope).
		Select("visitors.*").
		Joins("LEFT JOIN departments ON departments.department_id = visitors.department_id")

	if filters != nil {
		if filters.Status != "" {
			db = db.Where("visitors.status = ?", filters.Status)
		}
		if kw := strings.TrimSpace(filters.Search); kw != "" {
			pattern := "%" + escapeLike(strings.ToLower(kw)) + "%"
			db = db.Where(
				"(LOWER(visitors.name) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(visitors.email, '')) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(departments.name, '')) LIKE ? ESCAPE '\\')",
				pattern, pattern, pattern,
			)
		}
		if filters.VisitDateFrom != nil {
			db = db.Where("visitors.visit_date >= ?", *filters.VisitDateFrom)
		}
		if filters.VisitDateTo != nil {
			db = db.Where("visitors.visit_date <= ?", *filters.VisitDateTo)
		}
		if filters.Limit > 0 {
			db = db.Limit(filters.Limit)
		}
	}

	var visitors []model.Visitor
	err := db.Preload("Department").
		Order("visitors.visit_date DESC").
		Order("visitors.created_at DESC").
		Find(&visitors).Error
	return visitors, err
}

func (r *visitorRepo) UpdateDetails(ctx context.Context, visitor *model.Visitor) error {
	return r.db.WithContext(ctx).
		Model(visitor).
		Select(visitorDetailColumns).
		Updates(visitor).Error
}

func (r *visitorRepo) Delete(ctx context.Context, id string, scope Scope) (bool, error) {
	res := scope.Apply(r.db.WithContext(ctx)).
		Where("visitors.visitor_id = ?", id).
		Delete(&model.Visitor{})
	return res.RowsAffected > 0, res.Error
}

func (r *visitorRepo) Transition(ctx context.Context, id string, from, to model.VisitorStatus, at time.Time, scope Scope) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case model.VisitorStatusCheckedIn:
		updates["check_in_time"] = at
	case model.VisitorStatusCheckedOut:
		updates["check_out_time"] = at
	}

	// 条件更新（compare-and-set）：状态判断与写入在同一条语句内完成
	res := r.scoped(ctx, scope).
		Where("visitors.visitor_id = ? AND visitors.status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *visitorRepo) CountByVisitDate(ctx context.Context, since time.Time, scope Scope) ([]DateCount, error) {
	var rows []DateCount
	err := r.scoped(ctx, scope).
		Select("visitors.visit_date AS visit_date, COUNT(*) AS count").
		Where("visitors.visit_date >= ?", since).
		Group("visitors.visit_date").
		Order("visitors.visit_date ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *visitorRepo) CountByDepartment(ctx context.Context, scope Scope) ([]DepartmentCount, error) {
	var rows []DepartmentCount
	err := r.scoped(ctx, scope).
		Select("departments.department_id AS department_id, departments.name AS department, COUNT(visitors.visitor_id) AS count").
		Joins("LEFT JOIN departments ON departments.department_id = visitors.department_id").
		Group("departments.department_id, departments.name").
		Order("count DESC").
		Order("departments.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *visitorRepo) Summary(ctx context.Context, scope Scope) (*VisitorSummary, error) {
	var s VisitorSummary
	err := r.scoped(ctx, scope).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN visitors.status = ? THEN 1 ELSE 0 END), 0) AS checked_in, "+
				"COALESCE(SUM(CASE WHEN visitors.status = ? THEN 1 ELSE 0 END), 0) AS pre_registered, "+
				"COALESCE(SUM(CASE WHEN visitors.status = ? THEN 1 ELSE 0 END), 0) AS checked_out",
			model.VisitorStatusCheckedIn, model.VisitorStatusPreRegistered, model.VisitorStatusCheckedOut,
		).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// escapeLike 转义 LIKE 通配符
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
