package repository_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/internal/repository"
)

var _ = Describe("DepartmentRepository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo *repository.Repository
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = newTestDB()
		repo = repository.NewRepository(db)
	})

	Describe("Create", func() {
		It("generates an id", func() {
			dept := mustCreateDepartment(repo, "Finance")
			Expect(dept.DepartmentID).NotTo(BeEmpty())
			Expect(dept.CreatedAt).NotTo(BeZero())
		})

		It("rejects a duplicate name as ErrDuplicatedKey", func() {
			mustCreateDepartment(repo, "Finance")
			err := repo.Department.Create(ctx, &model.Department{Name: "Finance"})
			Expect(errors.Is(err, gorm.ErrDuplicatedKey)).To(BeTrue())
		})
	})

	Describe("GetByID / GetByName", func() {
		It("returns ErrRecordNotFound for unknown records", func() {
			_, err := repo.Department.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))

			_, err = repo.Department.GetByName(ctx, "Nope")
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))
		})

		It("finds by name", func() {
			dept := mustCreateDepartment(repo, "Finance")
			got, err := repo.Department.GetByName(ctx, "Finance")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.DepartmentID).To(Equal(dept.DepartmentID))
		})
	})

	Describe("ListWithVisitorCount", func() {
		It("orders by name and annotates visitor counts", func() {
			ops := mustCreateDepartment(repo, "Operations")
			fin := mustCreateDepartment(repo, "Finance")
			mustCreateDepartment(repo, "Legal")
			mustCreateVisitor(repo, "A", ops)
			mustCreateVisitor(repo, "B", ops)
			mustCreateVisitor(repo, "C", fin)
			mustCreateVisitor(repo, "D", nil)

			list, err := repo.Department.ListWithVisitorCount(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(3))

			names := []string{list[0].Name, list[1].Name, list[2].Name}
			Expect(names).To(Equal([]string{"Finance", "Legal", "Operations"}))
			Expect(list[0].VisitorCount).To(BeEquivalentTo(1))
			Expect(list[1].VisitorCount).To(BeEquivalentTo(0))
			Expect(list[2].VisitorCount).To(BeEquivalentTo(2))
		})
	})

	Describe("Delete", func() {
		It("nulls department references on users and visitors", func() {
			dept := mustCreateDepartment(repo, "Finance")
			user := mustCreateUser(repo, "fin@example.com", dept)
			visitor := mustCreateVisitor(repo, "A", dept)

			Expect(repo.Department.Delete(ctx, dept.DepartmentID)).To(Succeed())

			u, err := repo.User.GetByID(ctx, user.UserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.DepartmentID).To(BeNil())

			v, err := repo.Visitor.GetByID(ctx, visitor.VisitorID, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(v.DepartmentID).To(BeNil())
		})

		It("returns ErrRecordNotFound when nothing was deleted", func() {
			err := repo.Department.Delete(ctx, "00000000-0000-0000-0000-000000000000")
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))
		})
	})
})
