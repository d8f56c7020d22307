package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mzaraf/vms/config"
	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	depts *mockDeptRepo
}

func newMockUserRepo(depts *mockDeptRepo) *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User), depts: depts}
}

func (m *mockUserRepo) withDepartment(u *model.User) *model.User {
	cp := *u
	cp.Department = nil
	if u.DepartmentID != nil && m.depts != nil {
		if d, ok := m.depts.depts[*u.DepartmentID]; ok {
			cp.Department = d
		}
	}
	return &cp
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = testUUID(len(m.users) + 100)
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return m.withDepartment(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return m.withDepartment(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *m.withDepartment(u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := m.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts    map[string]*model.Department
	visitors *mockVisitorRepo
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{depts: make(map[string]*model.Department)}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = testUUID(len(m.depts) + 200)
	}
	cp := *dept
	m.depts[dept.DepartmentID] = &cp
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) ListWithVisitorCount(ctx context.Context) ([]repository.DepartmentWithCount, error) {
	var result []repository.DepartmentWithCount
	for _, d := range m.depts {
		count, _ := m.CountVisitors(ctx, d.DepartmentID)
		result = append(result, repository.DepartmentWithCount{Department: *d, VisitorCount: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDeptRepo) CountVisitors(_ context.Context, departmentID string) (int64, error) {
	if m.visitors == nil {
		return 0, nil
	}
	var count int64
	for _, v := range m.visitors.visitors {
		if v.DepartmentID != nil && *v.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	cp := *dept
	m.depts[dept.DepartmentID] = &cp
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.depts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.depts, id)
	if m.visitors != nil {
		for _, v := range m.visitors.visitors {
			if v.DepartmentID != nil && *v.DepartmentID == id {
				v.DepartmentID = nil
			}
		}
	}
	return nil
}

// ── Mock VisitorRepository ──

type mockVisitorRepo struct {
	visitors map[string]*model.Visitor
	depts    *mockDeptRepo
	err      error // 非 nil 时所有查询返回该错误
}

func newMockVisitorRepo(depts *mockDeptRepo) *mockVisitorRepo {
	return &mockVisitorRepo{visitors: make(map[string]*model.Visitor), depts: depts}
}

func (m *mockVisitorRepo) attach(v *model.Visitor) model.Visitor {
	cp := *v
	cp.Department = nil
	if v.DepartmentID != nil && m.depts != nil {
		if d, ok := m.depts.depts[*v.DepartmentID]; ok {
			cp.Department = d
		}
	}
	return cp
}

func (m *mockVisitorRepo) Create(_ context.Context, visitor *model.Visitor) error {
	if m.err != nil {
		return m.err
	}
	if visitor.VisitorID == "" {
		visitor.VisitorID = testUUID(len(m.visitors) + 300)
	}
	cp := *visitor
	cp.Department = nil
	m.visitors[visitor.VisitorID] = &cp
	return nil
}

func (m *mockVisitorRepo) GetByID(_ context.Context, id string, scope repository.Scope) (*model.Visitor, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.visitors[id]
	if !ok || !scope.Allows(v.DepartmentID) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.attach(v)
	return &cp, nil
}

func (m *mockVisitorRepo) List(_ context.Context, filters *repository.VisitorListFilters, scope repository.Scope) ([]model.Visitor, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Visitor
	for _, v := range m.visitors {
		if !scope.Allows(v.DepartmentID) {
			continue
		}
		cp := m.attach(v)
		if filters != nil {
			if filters.Status != "" && v.Status != filters.Status {
				continue
			}
			if kw := strings.ToLower(filters.Search); kw != "" {
				email := ""
				if v.Email != nil {
					email = *v.Email
				}
				if !strings.Contains(strings.ToLower(v.Name), kw) &&
					!strings.Contains(strings.ToLower(email), kw) &&
					!strings.Contains(strings.ToLower(cp.DepartmentName()), kw) {
					continue
				}
			}
			if filters.VisitDateFrom != nil && v.VisitDate.Before(*filters.VisitDateFrom) {
				continue
			}
			if filters.VisitDateTo != nil && v.VisitDate.After(*filters.VisitDateTo) {
				continue
			}
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].VisitDate.After(result[j].VisitDate) })
	if filters != nil && filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockVisitorRepo) UpdateDetails(_ context.Context, visitor *model.Visitor) error {
	if m.err != nil {
		return m.err
	}
	existing, ok := m.visitors[visitor.VisitorID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// 与真实实现一致：状态与签到/签离时间不经此路径写入
	cp := *visitor
	cp.Status = existing.Status
	cp.CheckInTime = existing.CheckInTime
	cp.CheckOutTime = existing.CheckOutTime
	cp.Department = nil
	m.visitors[visitor.VisitorID] = &cp
	return nil
}

func (m *mockVisitorRepo) Delete(_ context.Context, id string, scope repository.Scope) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	v, ok := m.visitors[id]
	if !ok || !scope.Allows(v.DepartmentID) {
		return false, nil
	}
	delete(m.visitors, id)
	return true, nil
}

func (m *mockVisitorRepo) Transition(_ context.Context, id string, from, to model.VisitorStatus, at time.Time, scope repository.Scope) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	v, ok := m.visitors[id]
	if !ok || !scope.Allows(v.DepartmentID) || v.Status != from {
		return false, nil
	}
	v.Status = to
	switch to {
	case model.VisitorStatusCheckedIn:
		v.CheckInTime = &at
	case model.VisitorStatusCheckedOut:
		v.CheckOutTime = &at
	}
	return true, nil
}

func (m *mockVisitorRepo) CountByVisitDate(_ context.Context, since time.Time, scope repository.Scope) ([]repository.DateCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := make(map[time.Time]int64)
	for _, v := range m.visitors {
		if !scope.Allows(v.DepartmentID) || v.VisitDate.Before(since) {
			continue
		}
		counts[v.VisitDate]++
	}
	var rows []repository.DateCount
	for d, c := range counts {
		rows = append(rows, repository.DateCount{VisitDate: d, Count: c})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].VisitDate.Before(rows[j].VisitDate) })
	return rows, nil
}

func (m *mockVisitorRepo) CountByDepartment(_ context.Context, scope repository.Scope) ([]repository.DepartmentCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	type key struct{ id string }
	counts := make(map[key]int64)
	for _, v := range m.visitors {
		if !scope.Allows(v.DepartmentID) {
			continue
		}
		k := key{}
		if v.DepartmentID != nil {
			k.id = *v.DepartmentID
		}
		counts[k]++
	}
	var rows []repository.DepartmentCount
	for k, c := range counts {
		row := repository.DepartmentCount{Count: c}
		if k.id != "" {
			id := k.id
			row.DepartmentID = &id
			if d, ok := m.depts.depts[id]; ok {
				name := d.Name
				row.Department = &name
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows, nil
}

func (m *mockVisitorRepo) Summary(_ context.Context, scope repository.Scope) (*repository.VisitorSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := &repository.VisitorSummary{}
	for _, v := range m.visitors {
		if !scope.Allows(v.DepartmentID) {
			continue
		}
		s.Total++
		switch v.Status {
		case model.VisitorStatusCheckedIn:
			s.CheckedIn++
		case model.VisitorStatusPreRegistered:
			s.PreRegistered++
		case model.VisitorStatusCheckedOut:
			s.CheckedOut++
		}
	}
	return s, nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	entries map[string]time.Duration
	err     error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{entries: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.entries[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.entries[jti]
	return ok, nil
}

// ── 测试辅助 ──

// testRepos 一组互相关联的 mock 仓储
type testRepos struct {
	repo     *repository.Repository
	users    *mockUserRepo
	depts    *mockDeptRepo
	visitors *mockVisitorRepo
}

func newTestRepos() *testRepos {
	depts := newMockDeptRepo()
	visitors := newMockVisitorRepo(depts)
	depts.visitors = visitors
	users := newMockUserRepo(depts)
	return &testRepos{
		repo: &repository.Repository{
			User:       users,
			Department: depts,
			Visitor:    visitors,
		},
		users:    users,
		depts:    depts,
		visitors: visitors,
	}
}

// testUUID 生成可读的固定 UUID
func testUUID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

func testVisitorConfig() *config.VisitorConfig {
	return &config.VisitorConfig{
		Timezone:      "UTC",
		AvatarBaseURL: "https://ui-avatars.com/api/",
		ExportMaxRows: 100,
	}
}

var testLogger = zap.NewNop()

// fixedNow 测试中的当前时间：2026-10-15 (Thursday) 10:30 UTC
var fixedNow = time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

// seedDepartment 直接写入一个部门
func (r *testRepos) seedDepartment(id, name string) *model.Department {
	d := &model.Department{DepartmentID: id, Name: name}
	r.depts.depts[id] = d
	return d
}

// seedVisitor 直接写入一个访客
func (r *testRepos) seedVisitor(id string, deptID *string, status model.VisitorStatus, visitDate time.Time) *model.Visitor {
	v := &model.Visitor{
		VisitorID:    id,
		Name:         "Visitor " + id[len(id)-3:],
		Phone:        "555-0100",
		Purpose:      "Meeting",
		Host:         "Host",
		DepartmentID: deptID,
		Status:       status,
		VisitDate:    visitDate,
	}
	r.visitors.visitors[id] = v
	return v
}
