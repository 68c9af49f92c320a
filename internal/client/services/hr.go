package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/keys"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/mutation"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/query"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/schedule"
	"github.com/dmitrijs2005/hangarkeeper/internal/common"
)

// ScheduleInput asks for a generated schedule for one employee.
type ScheduleInput struct {
	Company    string
	EmployeeID string
	Request    schedule.Request
}

// HRService covers employees, their certificates and work schedules.
type HRService interface {
	Employees(company string) *query.Query[string, []models.Record]
	EmployeeCertificates(it Item) *query.Query[Item, []models.Record]
	Certificates(company string) *query.Query[string, []models.Record]
	WorkSchedules(it Item) *query.Query[Item, []models.Record]

	CreateEmployee(ctx context.Context, in Input) mutation.Result[models.Record]
	AddCertificate(ctx context.Context, in Input) mutation.Result[models.Record]
	GenerateSchedule(ctx context.Context, in ScheduleInput) mutation.Result[[]schedule.Shift]
}

type hrService struct {
	d Deps

	createEmployee   *mutation.Mutation[Input, models.Record]
	addCertificate   *mutation.Mutation[Input, models.Record]
	generateSchedule *mutation.Mutation[ScheduleInput, []schedule.Shift]
}

func NewHRService(d Deps) HRService {
	s := &hrService{
		d: d,
		createEmployee: newRecordMutation(d, recordWrite{
			name:   "Create employee",
			method: http.MethodPost,
			path:   func(in Input) string { return client.Path(in.Company, "employees") },
			affects: func(Input) []querycache.Key {
				return roots(keys.RootEmployees)
			},
		}),
		// ID is the employee.
		addCertificate: newRecordMutation(d, recordWrite{
			name:    "Add certificate",
			method:  http.MethodPost,
			path:    func(in Input) string { return client.Path(in.Company, "employees", in.ID, "certificates") },
			needsID: true,
			affects: func(Input) []querycache.Key {
				return roots(keys.RootEmployeeCertificates, keys.RootCertificates)
			},
		}),
	}

	s.generateSchedule = mutation.New(d.Cache, d.Notifier, d.logger(), mutation.Options[ScheduleInput, []schedule.Shift]{
		Name: "Generate work schedule",
		Do:   s.postSchedule,
		Invalidates: func(in ScheduleInput, _ []schedule.Shift) []querycache.Key {
			return []querycache.Key{keys.RootWorkSchedules.Company(in.Company)}
		},
		SuccessMessage: func(_ ScheduleInput, shifts []schedule.Shift) string {
			return fmt.Sprintf("Work schedule generated: %d shifts", len(shifts))
		},
	})
	return s
}

// postSchedule generates the shifts locally and posts them to
// /{company}/employees/{id}/work-schedules.
func (s *hrService) postSchedule(ctx context.Context, in ScheduleInput) ([]schedule.Shift, error) {
	if in.Company == "" {
		return nil, fmt.Errorf("%w: %w", client.ErrInvalidInput, common.ErrNoCompanySelected)
	}
	if in.EmployeeID == "" {
		return nil, fmt.Errorf("%w: missing employee id", client.ErrInvalidInput)
	}

	shifts, err := schedule.Generate(in.Request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", client.ErrInvalidInput, err)
	}

	body := map[string]any{"shifts": shifts}
	path := client.Path(in.Company, "employees", in.EmployeeID, "work-schedules")
	if err := s.d.API.Do(ctx, http.MethodPost, path, body, nil); err != nil {
		return nil, err
	}
	return shifts, nil
}

func (s *hrService) Employees(company string) *query.Query[string, []models.Record] {
	return newQuery[string, []models.Record](s.d,
		keys.Employees,
		func(c string) string { return client.Path(c, "employees") },
		companyOnly,
		company,
	)
}

// EmployeeCertificates is GET /{company}/employees/{id}/certificates.
func (s *hrService) EmployeeCertificates(it Item) *query.Query[Item, []models.Record] {
	return newQuery[Item, []models.Record](s.d,
		func(it Item) querycache.Key { return keys.EmployeeCertificates(it.Company, it.ID) },
		func(it Item) string { return client.Path(it.Company, "employees", it.ID, "certificates") },
		Item.ready,
		it,
	)
}

// Certificates is the company-wide certificate catalogue.
func (s *hrService) Certificates(company string) *query.Query[string, []models.Record] {
	return newQuery[string, []models.Record](s.d,
		keys.Certificates,
		func(c string) string { return client.Path(c, "certificates") },
		companyOnly,
		company,
	)
}

func (s *hrService) WorkSchedules(it Item) *query.Query[Item, []models.Record] {
	return newQuery[Item, []models.Record](s.d,
		func(it Item) querycache.Key { return keys.WorkSchedules(it.Company, it.ID) },
		func(it Item) string { return client.Path(it.Company, "employees", it.ID, "work-schedules") },
		Item.ready,
		it,
	)
}

func (s *hrService) CreateEmployee(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.createEmployee.Execute(ctx, in)
}

func (s *hrService) AddCertificate(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.addCertificate.Execute(ctx, in)
}

func (s *hrService) GenerateSchedule(ctx context.Context, in ScheduleInput) mutation.Result[[]schedule.Shift] {
	return s.generateSchedule.Execute(ctx, in)
}
