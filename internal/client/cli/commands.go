package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/mutation"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/query"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/services"
	"github.com/dmitrijs2005/hangarkeeper/internal/common"
)

var (
	errNeedCompany = fmt.Errorf("%w, use 'use-company <slug>'", common.ErrNoCompanySelected)
	errNeedStation = fmt.Errorf("%w, use 'use-station <id>'", common.ErrNoStationSelected)
)

func (a *App) buildCommands() *registry {
	return newRegistry(
		command{name: "login", usage: "login [email]", summary: "authenticate", public: true, run: a.Login},
		command{name: "logout", usage: "logout", summary: "end the session", run: a.Logout},
		command{name: "status", usage: "status", summary: "session, selection and connectivity", public: true, run: a.Status},
		command{name: "refresh", usage: "refresh", summary: "mark every cached query stale", run: a.Refresh},
		command{name: "cache", usage: "cache", summary: "cache counters", public: true, run: a.CacheStats},

		command{name: "companies", usage: "companies", summary: "list companies", run: a.ListCompanies},
		command{name: "use-company", usage: "use-company <slug>", summary: "select a company", minArgs: 1, run: a.UseCompany},
		command{name: "stations", usage: "stations", summary: "list stations of the company", run: a.ListStations},
		command{name: "use-station", usage: "use-station <id|code>", summary: "select a station", minArgs: 1, run: a.UseStation},

		command{name: "articles", usage: "articles [all|active|archived]", summary: "article catalogue", run: a.ListArticles},
		command{name: "add-article", usage: "add-article name=value...", summary: "create an article", minArgs: 1, run: a.AddArticle},
		command{name: "update-article", usage: "update-article <id> name=value...", summary: "update an article", minArgs: 2, run: a.UpdateArticle},
		command{name: "delete-article", usage: "delete-article <id>", summary: "delete an article", minArgs: 1, run: a.DeleteArticle},
		command{name: "stock", usage: "stock", summary: "articles in the station warehouse", run: a.ListStock},
		command{name: "batches", usage: "batches", summary: "stock receipts of the station", run: a.ListBatches},
		command{name: "add-batch", usage: "add-batch name=value...", summary: "receive a batch", minArgs: 1, run: a.AddBatch},

		command{name: "flights", usage: "flights [from=DATE] [to=DATE] [client=ID]", summary: "list flights", run: a.ListFlights},
		command{name: "flight", usage: "flight <id>", summary: "show a flight", minArgs: 1, run: a.ShowFlight},
		command{name: "add-flight", usage: "add-flight name=value...", summary: "log a flight", minArgs: 1, run: a.AddFlight},
		command{name: "update-flight", usage: "update-flight <id> name=value...", summary: "update a flight", minArgs: 2, run: a.UpdateFlight},
		command{name: "delete-flight", usage: "delete-flight <id>", summary: "delete a flight", minArgs: 1, run: a.DeleteFlight},

		command{name: "cash", usage: "cash <client-id>", summary: "client balance", minArgs: 1, run: a.ShowCash},
		command{name: "credits", usage: "credits", summary: "credit purchases", run: a.ListCredits},
		command{name: "add-credit", usage: "add-credit name=value...", summary: "record a credit purchase", minArgs: 1, run: a.AddCredit},

		command{name: "reports", usage: "reports", summary: "safety reports", run: a.ListReports},
		command{name: "report", usage: "report <id>", summary: "show a safety report", minArgs: 1, run: a.ShowReport},
		command{name: "add-report", usage: "add-report name=value...", summary: "file a safety report", minArgs: 1, run: a.AddReport},
		command{name: "update-report", usage: "update-report <id> name=value...", summary: "update a safety report", minArgs: 2, run: a.UpdateReport},

		command{name: "employees", usage: "employees", summary: "list employees", run: a.ListEmployees},
		command{name: "add-employee", usage: "add-employee name=value...", summary: "create an employee", minArgs: 1, run: a.AddEmployee},
		command{name: "certificates", usage: "certificates [employee-id]", summary: "certificates, all or of one employee", run: a.ListCertificates},
		command{name: "add-certificate", usage: "add-certificate <employee-id> name=value...", summary: "add a certificate", minArgs: 2, run: a.AddCertificate},
		command{name: "schedules", usage: "schedules <employee-id>", summary: "work schedules of an employee", minArgs: 1, run: a.ListSchedules},
		command{name: "schedule", usage: "schedule <employee-id> <from> <to> <hours> [start=HH:MM] [max=H] [days=mon,tue]", summary: "generate a work schedule", minArgs: 4, run: a.GenerateSchedule},
	)
}

func (a *App) company() string {
	return a.sel.State().CompanySlug()
}

func (a *App) tenant() services.Tenant {
	st := a.sel.State()
	return services.Tenant{Company: st.CompanySlug(), Station: st.Station}
}

// notReady picks the error explaining why a tenant-scoped read is disabled.
func (a *App) notReady() error {
	if a.company() == "" {
		return errNeedCompany
	}
	return errNeedStation
}

// load runs q once and releases it. The cache keeps the entry for later
// commands, so repeated reads within the stale time are served locally.
func load[P, T any](ctx context.Context, q *query.Query[P, T], notReady error) (T, error) {
	defer q.Close()

	r := q.Load(ctx)
	if r.IsDisabled() {
		var zero T
		return zero, notReady
	}
	if r.Err != nil {
		return r.Data, r.Err
	}
	return r.Data, nil
}

// written prints the server's answer to a successful write. Failures were
// already shown by the mutation notifier.
func (a *App) written(res mutation.Result[models.Record]) error {
	if !res.OK() {
		return errReported
	}
	if len(res.Data) > 0 {
		renderRecord(a.out, res.Data)
	}
	return nil
}

// input builds a mutation input from "[id] name=value..." arguments.
func (a *App) input(id string, fields []string) (services.Input, error) {
	rec, err := models.RecordFromArgs(fields)
	if err != nil {
		return services.Input{}, err
	}
	return services.Input{Company: a.company(), ID: id, Data: rec}, nil
}
