package repository_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/mzaraf/vms/internal/repository"
)

var _ = Describe("UserRepository", func() {
	var (
		ctx  context.Context
		repo *repository.Repository
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = repository.NewRepository(newTestDB())
	})

	It("looks up email case-insensitively and preloads the department", func() {
		dept := mustCreateDepartment(repo, "Finance")
		user := mustCreateUser(repo, "jane@example.com", dept)

		got, err := repo.User.GetByEmail(ctx, "JANE@Example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.UserID).To(Equal(user.UserID))
		Expect(got.Department).NotTo(BeNil())
		Expect(got.Department.Name).To(Equal("Finance"))
	})

	It("records the last login time", func() {
		user := mustCreateUser(repo, "jane@example.com", nil)
		at := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

		Expect(repo.User.UpdateLastLogin(ctx, user.UserID, at)).To(Succeed())

		got, err := repo.User.GetByID(ctx, user.UserID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.LastLoginAt).NotTo(BeNil())
		Expect(got.LastLoginAt.Equal(at)).To(BeTrue())
	})

	It("updates without touching the preloaded department", func() {
		dept := mustCreateDepartment(repo, "Finance")
		user := mustCreateUser(repo, "jane@example.com", dept)

		got, err := repo.User.GetByID(ctx, user.UserID)
		Expect(err).NotTo(HaveOccurred())
		got.FirstName = "Jane"
		got.Department.Name = "Changed"
		Expect(repo.User.Update(ctx, got)).To(Succeed())

		reloaded, err := repo.Department.GetByID(ctx, dept.DepartmentID)
		Expect(err).NotTo(HaveOccurred())
		Expect(reloaded.Name).To(Equal("Finance"))
	})

	Describe("Delete", func() {
		It("keeps visitors the user created and clears created_by", func() {
			user := mustCreateUser(repo, "jane@example.com", nil)
			visitor := mustCreateVisitor(repo, "A", nil, withCreator(user))

			Expect(repo.User.Delete(ctx, user.UserID)).To(Succeed())

			v, err := repo.Visitor.GetByID(ctx, visitor.VisitorID, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(v.CreatedBy).To(BeNil())

			_, err = repo.User.GetByID(ctx, user.UserID)
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))
		})

		It("returns ErrRecordNotFound for an unknown user", func() {
			Expect(repo.User.Delete(ctx, "00000000-0000-0000-0000-000000000000")).To(MatchError(gorm.ErrRecordNotFound))
		})
	})
})
