package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.String())
}

// renderRecords prints recs as a table. Without explicit columns every
// field seen in any record is shown, id first.
func renderRecords(w io.Writer, recs []models.Record, cols ...string) {
	if len(recs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("(none)"))
		return
	}
	if len(cols) == 0 {
		cols = columnsOf(recs)
	}

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = r.Text(c)
		}
		rows = append(rows, row)
	}
	renderTable(w, cols, rows)
}

// renderRecord prints one record as field/value pairs.
func renderRecord(w io.Writer, rec models.Record) {
	if len(rec) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("(empty)"))
		return
	}
	rows := make([][]string, 0, len(rec))
	for _, k := range rec.Keys() {
		rows = append(rows, []string{k, rec.Text(k)})
	}
	renderTable(w, []string{"field", "value"}, rows)
}

func columnsOf(recs []models.Record) []string {
	seen := map[string]bool{}
	var cols []string
	for _, r := range recs {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	slices.Sort(cols)
	for _, id := range []string{"_id", "id"} {
		if i := slices.Index(cols, id); i > 0 {
			cols = append([]string{id}, slices.Delete(cols, i, i+1)...)
		}
	}
	return cols
}
