package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mzaraf/vms/internal/model"
)

// DepartmentWithCount 部门及其访客数
type DepartmentWithCount struct {
	model.Department
	VisitorCount int64
}

// DepartmentRepository 部门数据访问接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id string) (*model.Department, error)
	GetByName(ctx context.Context, name string) (*model.Department, error)
	// ListWithVisitorCount 按名称排序，附带访客数
	ListWithVisitorCount(ctx context.Context) ([]DepartmentWithCount, error)
	CountVisitors(ctx context.Context, departmentID string) (int64, error)
	Update(ctx context.Context, dept *model.Department) error
	// Delete 删除部门，并将用户、访客上的部门引用置空（不级联删除）
	Delete(ctx context.Context, id string) error
}

// departmentRepo DepartmentRepository 的 GORM 实现
type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepo) GetByID(ctx context.Context, id string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("department_id = ?", id).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) GetByName(ctx context.Context, name string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) ListWithVisitorCount(ctx context.Context) ([]DepartmentWithCount, error) {
	var depts []model.Department
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&depts).Error; err != nil {
		return nil, err
	}

	// 单次分组查询访客数，避免 N+1
	type countRow struct {
		DepartmentID string
		Total        int64
	}
	var counts []countRow
	if err := r.db.WithContext(ctx).
		Model(&model.Visitor{}).
		Select("department_id, COUNT(*) AS total").
		Where("department_id IS NOT NULL").
		Group("department_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	countMap := make(map[string]int64, len(counts))
	for _, c := range counts {
		countMap[c.DepartmentID] = c.Total
	}

	result := make([]DepartmentWithCount, 0, len(depts))
	for _, d := range depts {
		result = append(result, DepartmentWithCount{Department: d, VisitorCount: countMap[d.DepartmentID]})
	}
	return result, nil
}

func (r *departmentRepo) CountVisitors(ctx context.Context, departmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Visitor{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

func (r *departmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).
			Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Visitor{}).
			Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("department_id = ?", id).Delete(&model.Department{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
