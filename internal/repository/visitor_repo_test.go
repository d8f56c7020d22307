package repository_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/internal/repository"
)

var _ = Describe("VisitorRepository", func() {
	var (
		ctx        context.Context
		repo       *repository.Repository
		finance    *model.Department
		operations *model.Department
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = repository.NewRepository(newTestDB())
		finance = mustCreateDepartment(repo, "Finance")
		operations = mustCreateDepartment(repo, "Operations")
	})

	names := func(vs []model.Visitor) []string {
		out := make([]string, 0, len(vs))
		for _, v := range vs {
			out = append(out, v.Name)
		}
		return out
	}

	Describe("Scope", func() {
		It("restricts reads and deletes to the scoped department", func() {
			fin := mustCreateVisitor(repo, "Alice", finance)
			mustCreateVisitor(repo, "Bob", operations)
			scope := repository.DepartmentOnly(finance.DepartmentID)

			list, err := repo.Visitor.List(ctx, nil, scope)
			Expect(err).NotTo(HaveOccurred())
			Expect(names(list)).To(ConsistOf("Alice"))

			_, err = repo.Visitor.GetByID(ctx, fin.VisitorID, repository.DepartmentOnly(operations.DepartmentID))
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))

			deleted, err := repo.Visitor.Delete(ctx, fin.VisitorID, repository.DepartmentOnly(operations.DepartmentID))
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeFalse())

			deleted, err = repo.Visitor.Delete(ctx, fin.VisitorID, scope)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeTrue())
		})

		It("matches nothing when denied", func() {
			mustCreateVisitor(repo, "Alice", finance)

			list, err := repo.Visitor.List(ctx, nil, repository.Nothing())
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(BeEmpty())

			summary, err := repo.Visitor.Summary(ctx, repository.Nothing())
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Total).To(BeEquivalentTo(0))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			mustCreateVisitor(repo, "Alice Smith", finance, withDate(day(2026, time.October, 16)), withEmail("alice@acme.io"))
			mustCreateVisitor(repo, "Bob Jones", operations, withDate(day(2026, time.October, 18)), withStatus(model.VisitorStatusCheckedIn))
			mustCreateVisitor(repo, "Carol 100%", nil, withDate(day(2026, time.October, 17)))
		})

		It("orders by visit date descending", func() {
			list, err := repo.Visitor.List(ctx, nil, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(names(list)).To(Equal([]string{"Bob Jones", "Carol 100%", "Alice Smith"}))
		})

		It("filters by status", func() {
			list, err := repo.Visitor.List(ctx, &repository.VisitorListFilters{Status: model.VisitorStatusCheckedIn}, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(names(list)).To(Equal([]string{"Bob Jones"}))
		})

		It("searches name, email and department name case-insensitively", func() {
			search := func(kw string) []string {
				list, err := repo.Visitor.List(ctx, &repository.VisitorListFilters{Search: kw}, repository.Unrestricted())
				Expect(err).NotTo(HaveOccurred())
				return names(list)
			}

			Expect(search("ALICE")).To(ConsistOf("Alice Smith"))
			Expect(search("acme.io")).To(ConsistOf("Alice Smith"))
			Expect(search("operations")).To(ConsistOf("Bob Jones"))
			Expect(search("zzz")).To(BeEmpty())
		})

		It("treats LIKE wildcards in the keyword literally", func() {
			list, err := repo.Visitor.List(ctx, &repository.VisitorListFilters{Search: "%"}, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(names(list)).To(ConsistOf("Carol 100%"))
		})

		It("keeps the scope when combined with search", func() {
			list, err := repo.Visitor.List(ctx,
				&repository.VisitorListFilters{Search: "operations"},
				repository.DepartmentOnly(finance.DepartmentID))
			Expect(err).NotTo(HaveOccurred())
			Expect(names(list)).To(BeEmpty())
		})

		It("applies the visit date window and limit", func() {
			from, to := day(2026, time.October, 16), day(2026, time.October, 17)
			list, err := repo.Visitor.List(ctx,
				&repository.VisitorListFilters{VisitDateFrom: &from, VisitDateTo: &to},
				repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(names(list)).To(Equal([]string{"Carol 100%", "Alice Smith"}))

			list, err = repo.Visitor.List(ctx, &repository.VisitorListFilters{Limit: 1}, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
		})

		It("preloads the department", func() {
			list, err := repo.Visitor.List(ctx, &repository.VisitorListFilters{Search: "alice"}, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(list[0].DepartmentName()).To(Equal("Finance"))
		})
	})

	Describe("Transition", func() {
		at := time.Date(2026, time.October, 15, 10, 30, 0, 0, time.UTC)

		It("moves pre-registered to checked-in and stamps check_in_time", func() {
			v := mustCreateVisitor(repo, "Alice", finance)

			ok, err := repo.Visitor.Transition(ctx, v.VisitorID, model.VisitorStatusPreRegistered, model.VisitorStatusCheckedIn, at, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			got, err := repo.Visitor.GetByID(ctx, v.VisitorID, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(model.VisitorStatusCheckedIn))
			Expect(got.CheckInTime).NotTo(BeNil())
			Expect(got.CheckInTime.Equal(at)).To(BeTrue())
			Expect(got.CheckOutTime).To(BeNil())
		})

		It("does nothing when the current status does not match", func() {
			v := mustCreateVisitor(repo, "Alice", finance, withStatus(model.VisitorStatusCheckedOut))

			ok, err := repo.Visitor.Transition(ctx, v.VisitorID, model.VisitorStatusCheckedIn, model.VisitorStatusCheckedOut, at, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			got, err := repo.Visitor.GetByID(ctx, v.VisitorID, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(model.VisitorStatusCheckedOut))
			Expect(got.CheckOutTime).To(BeNil())
		})

		It("succeeds only once for the same source status", func() {
			v := mustCreateVisitor(repo, "Alice", finance, withStatus(model.VisitorStatusCheckedIn))

			first, err := repo.Visitor.Transition(ctx, v.VisitorID, model.VisitorStatusCheckedIn, model.VisitorStatusCheckedOut, at, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			second, err := repo.Visitor.Transition(ctx, v.VisitorID, model.VisitorStatusCheckedIn, model.VisitorStatusCheckedOut, at.Add(time.Minute), repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())

			Expect(first).To(BeTrue())
			Expect(second).To(BeFalse())
		})

		It("respects the scope", func() {
			v := mustCreateVisitor(repo, "Alice", finance)

			ok, err := repo.Visitor.Transition(ctx, v.VisitorID, model.VisitorStatusPreRegistered, model.VisitorStatusCheckedIn, at, repository.DepartmentOnly(operations.DepartmentID))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("UpdateDetails", func() {
		It("never writes lifecycle columns", func() {
			v := mustCreateVisitor(repo, "Alice", finance)

			v.Name = "Alice Cooper"
			v.Status = model.VisitorStatusCheckedOut
			now := time.Now().UTC()
			v.CheckOutTime = &now
			Expect(repo.Visitor.UpdateDetails(ctx, v)).To(Succeed())

			got, err := repo.Visitor.GetByID(ctx, v.VisitorID, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Alice Cooper"))
			Expect(got.Status).To(Equal(model.VisitorStatusPreRegistered))
			Expect(got.CheckOutTime).To(BeNil())
		})

		It("can clear the department", func() {
			v := mustCreateVisitor(repo, "Alice", finance)
			v.DepartmentID = nil
			Expect(repo.Visitor.UpdateDetails(ctx, v)).To(Succeed())

			got, err := repo.Visitor.GetByID(ctx, v.VisitorID, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(got.DepartmentID).To(BeNil())
		})
	})

	Describe("Aggregations", func() {
		BeforeEach(func() {
			mustCreateVisitor(repo, "A", finance, withDate(day(2026, time.October, 15)), withStatus(model.VisitorStatusCheckedIn))
			mustCreateVisitor(repo, "B", finance, withDate(day(2026, time.October, 15)))
			mustCreateVisitor(repo, "C", operations, withDate(day(2026, time.October, 14)), withStatus(model.VisitorStatusCheckedOut))
			mustCreateVisitor(repo, "D", nil, withDate(day(2026, time.October, 5)))
		})

		It("counts by visit date since the given day", func() {
			rows, err := repo.Visitor.CountByVisitDate(ctx, day(2026, time.October, 8), repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].VisitDate.Equal(day(2026, time.October, 14))).To(BeTrue())
			Expect(rows[0].Count).To(BeEquivalentTo(1))
			Expect(rows[1].VisitDate.Equal(day(2026, time.October, 15))).To(BeTrue())
			Expect(rows[1].Count).To(BeEquivalentTo(2))
		})

		It("counts by department including the no-department group", func() {
			rows, err := repo.Visitor.CountByDepartment(ctx, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))

			Expect(*rows[0].Department).To(Equal("Finance"))
			Expect(rows[0].Count).To(BeEquivalentTo(2))

			var total int64
			var nullGroup bool
			for _, r := range rows {
				total += r.Count
				if r.Department == nil {
					nullGroup = true
					Expect(r.Count).To(BeEquivalentTo(1))
				}
			}
			Expect(nullGroup).To(BeTrue())
			Expect(total).To(BeEquivalentTo(4))
		})

		It("summarises by status", func() {
			s, err := repo.Visitor.Summary(ctx, repository.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(*s).To(Equal(repository.VisitorSummary{Total: 4, CheckedIn: 1, PreRegistered: 2, CheckedOut: 1}))

			s, err = repo.Visitor.Summary(ctx, repository.DepartmentOnly(finance.DepartmentID))
			Expect(err).NotTo(HaveOccurred())
			Expect(*s).To(Equal(repository.VisitorSummary{Total: 2, CheckedIn: 1, PreRegistered: 1}))
		})
	})
})
