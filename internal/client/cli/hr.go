package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/schedule"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/services"
)

func (a *App) ListEmployees(ctx context.Context, _ []string) error {
	list, err := load(ctx, a.svc.HR.Employees(a.company()), errNeedCompany)
	if err != nil {
		return err
	}
	renderRecords(a.out, list)
	return nil
}

func (a *App) AddEmployee(ctx context.Context, args []string) error {
	in, err := a.input("", args)
	if err != nil {
		return err
	}
	return a.written(a.svc.HR.CreateEmployee(ctx, in))
}

// ListCertificates lists every certificate of the company, or those of one
// employee when an id is given.
func (a *App) ListCertificates(ctx context.Context, args []string) error {
	if len(args) > 0 {
		list, err := load(ctx, a.svc.HR.EmployeeCertificates(services.Item{Company: a.company(), ID: args[0]}), errNeedCompany)
		if err != nil {
			return err
		}
		renderRecords(a.out, list)
		return nil
	}

	list, err := load(ctx, a.svc.HR.Certificates(a.company()), errNeedCompany)
	if err != nil {
		return err
	}
	renderRecords(a.out, list)
	return nil
}

func (a *App) AddCertificate(ctx context.Context, args []string) error {
	in, err := a.input(args[0], args[1:])
	if err != nil {
		return err
	}
	return a.written(a.svc.HR.AddCertificate(ctx, in))
}

func (a *App) ListSchedules(ctx context.Context, args []string) error {
	list, err := load(ctx, a.svc.HR.WorkSchedules(services.Item{Company: a.company(), ID: args[0]}), errNeedCompany)
	if err != nil {
		return err
	}
	renderRecords(a.out, list)
	return nil
}

// GenerateSchedule spreads the given hours over the working days of
// [from, to] and stores the result for the employee.
func (a *App) GenerateSchedule(ctx context.Context, args []string) error {
	req, err := parseScheduleRequest(args[1:])
	if err != nil {
		return err
	}

	res := a.svc.HR.GenerateSchedule(ctx, services.ScheduleInput{
		Company:    a.company(),
		EmployeeID: args[0],
		Request:    req,
	})
	if !res.OK() {
		return errReported
	}

	rows := make([][]string, 0, len(res.Data))
	for _, s := range res.Data {
		rows = append(rows, []string{
			s.Start.Format(time.DateOnly),
			s.Start.Weekday().String()[:3],
			s.Start.Format("15:04"),
			s.End.Format("15:04"),
			strconv.FormatFloat(s.Duration().Hours(), 'f', -1, 64),
		})
	}
	renderTable(a.out, []string{"date", "day", "start", "end", "hours"}, rows)
	return nil
}

// parseScheduleRequest reads "<from> <to> <hours> [opts...]".
func parseScheduleRequest(args []string) (schedule.Request, error) {
	var req schedule.Request

	from, err := time.Parse(time.DateOnly, args[0])
	if err != nil {
		return req, fmt.Errorf("from: expected YYYY-MM-DD, got %q", args[0])
	}
	to, err := time.Parse(time.DateOnly, args[1])
	if err != nil {
		return req, fmt.Errorf("to: expected YYYY-MM-DD, got %q", args[1])
	}
	total, err := parseHours(args[2])
	if err != nil {
		return req, err
	}
	req.From, req.To, req.Total = from, to, total

	opts, err := options(args[3:])
	if err != nil {
		return req, err
	}
	for name, value := range opts {
		switch name {
		case "start":
			if req.DayStart, err = schedule.ParseClock(value); err != nil {
				return req, err
			}
		case "max":
			if req.MaxPerDay, err = parseHours(value); err != nil {
				return req, err
			}
		case "slot":
			if req.Slot, err = time.ParseDuration(value); err != nil {
				return req, fmt.Errorf("slot: %w", err)
			}
		case "days":
			if req.Weekdays, err = parseWeekdays(value); err != nil {
				return req, err
			}
		case "exclude":
			for _, d := range strings.Split(value, ",") {
				day, err := time.Parse(time.DateOnly, strings.TrimSpace(d))
				if err != nil {
					return req, fmt.Errorf("exclude: expected YYYY-MM-DD, got %q", d)
				}
				req.Exclude = append(req.Exclude, day)
			}
		default:
			return req, fmt.Errorf("unknown option %q", name)
		}
	}
	return req, nil
}

func parseHours(s string) (time.Duration, error) {
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || h <= 0 {
		return 0, fmt.Errorf("expected a positive number of hours, got %q", s)
	}
	return time.Duration(h * float64(time.Hour)), nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if len(name) > 3 {
			name = name[:3]
		}
		d, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		out = append(out, d)
	}
	return out, nil
}
