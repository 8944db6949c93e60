package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/spec-kit/fieldops/internal/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderTable(w io.Writer, title string, headers []string, rows [][]string) {
	fmt.Fprintln(w, titleStyle.Render(title))
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("nothing to show"))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func customerRows(customers []domain.Customer) [][]string {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		technician := "-"
		if c.TechnicianID != nil {
			technician = *c.TechnicianID
		}
		rows = append(rows, []string{c.Name, c.Phone, c.Address, strconv.FormatFloat(c.SystemSizeKW, 'f', 1, 64), technician})
	}
	return rows
}

func leadRows(leads []domain.Lead) [][]string {
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, []string{l.Name, l.Phone, l.Email, string(l.Status), l.CreatedAt.Format("2006-01-02")})
	}
	return rows
}

func identityRows(identities []domain.Identity) [][]string {
	rows := make([][]string, 0, len(identities))
	for _, i := range identities {
		rows = append(rows, []string{i.Name, i.Email, string(i.Role), strconv.FormatBool(i.IsActive)})
	}
	return rows
}

func settingsRows(s domain.NotificationSettings) [][]string {
	return [][]string{
		{domain.FlagPushNotifications, strconv.FormatBool(s.PushNotifications)},
		{domain.FlagEmailAlerts, strconv.FormatBool(s.EmailAlerts)},
		{domain.FlagSMSAlerts, strconv.FormatBool(s.SMSAlerts)},
	}
}
