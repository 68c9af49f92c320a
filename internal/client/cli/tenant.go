package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
)

func (a *App) ListCompanies(ctx context.Context, _ []string) error {
	list, err := load(ctx, a.svc.Companies.Companies(), nil)
	if err != nil {
		return err
	}

	current := a.company()
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		mark := ""
		if c.Slug == current {
			mark = "*"
		}
		rows = append(rows, []string{mark, c.Slug, c.Name})
	}
	renderTable(a.out, []string{"", "slug", "name"}, rows)
	return nil
}

// UseCompany selects a company known to the server. Switching company
// drops the station selection.
func (a *App) UseCompany(ctx context.Context, args []string) error {
	list, err := load(ctx, a.svc.Companies.Companies(), nil)
	if err != nil {
		return err
	}

	slug := args[0]
	for _, c := range list {
		if c.Slug == slug {
			if err := a.sel.SelectCompany(ctx, c); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Company: %s\n", displayName(c.Name, c.Slug))
			return nil
		}
	}
	return fmt.Errorf("unknown company %q", slug)
}

func (a *App) ListStations(ctx context.Context, _ []string) error {
	list, err := load(ctx, a.svc.Companies.Stations(a.company()), errNeedCompany)
	if err != nil {
		return err
	}

	current := a.sel.State().Station
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		mark := ""
		if s.ID == current {
			mark = "*"
		}
		rows = append(rows, []string{mark, s.ID, s.Code, s.Name})
	}
	renderTable(a.out, []string{"", "id", "code", "name"}, rows)
	return nil
}

// UseStation selects a station of the current company by id or code.
func (a *App) UseStation(ctx context.Context, args []string) error {
	list, err := load(ctx, a.svc.Companies.Stations(a.company()), errNeedCompany)
	if err != nil {
		return err
	}

	st, ok := findStation(list, args[0])
	if !ok {
		return fmt.Errorf("unknown station %q", args[0])
	}
	if err := a.sel.SelectStation(ctx, st.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Station: %s\n", displayName(st.Name, st.ID))
	return nil
}

func findStation(list []models.Station, ref string) (models.Station, bool) {
	for _, s := range list {
		if s.ID == ref || (s.Code != "" && strings.EqualFold(s.Code, ref)) {
			return s, true
		}
	}
	return models.Station{}, false
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", name, id)
}
