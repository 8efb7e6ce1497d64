package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"timekeep.io/timekeep/calendar"
	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/core/models"
)

var reportCommand = &cli.Command{
	Name:      "report",
	Usage:     "render a monthly attendance table",
	ArgsUsage: "[yyyy-mm]",
	Flags:     []cli.Flag{userFlag},
	Action: func(c *cli.Context) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		yearMonth := c.Args().First()
		if yearMonth == "" {
			yearMonth = calendar.Now().Format("2006-01")
		}
		monthStart, err := time.ParseInLocation("2006-01", yearMonth, calendar.ReferenceZone)
		if err != nil {
			return fmt.Errorf("month must look like 2024-03")
		}
		monthEnd := calendar.EndOfMonth(monthStart)

		userID := c.String("user")
		records, _, err := svc.FindByUserID(c.Context, userID, core.RecordFilter{
			From: &monthStart,
			To:   &monthEnd,
		})
		if err != nil {
			return err
		}

		stats, err := svc.GetStatistics(c.Context, userID, monthStart, monthEnd)
		if err != nil {
			return err
		}

		renderReport(records, stats)
		return nil
	},
}

func renderReport(records []models.AttendanceRecord, stats *core.Statistics) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Date", "In", "Out", "Breaks", "Hours", "OT", "Status"})

	// Find returns newest first; the report reads top down.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		t.AppendRow(table.Row{
			r.ClockIn.Format("2006-01-02"),
			r.ClockIn.Format("15:04"),
			ptrTimeToString(r.ClockOut),
			breaksToString(r.Breaks),
			fmt.Sprintf("%.2f", r.TotalHours),
			fmt.Sprintf("%.2f", r.OvertimeHours),
			string(r.Status),
		})
	}

	t.AppendFooter(table.Row{
		"", "", "",
		fmt.Sprintf("%d/%d days", stats.DaysMetGoal, stats.DaysWorked),
		fmt.Sprintf("%.2f", stats.TotalHours),
		fmt.Sprintf("%.2f", stats.OvertimeHours),
		"",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func breaksToString(breaks []models.BreakPeriod) string {
	if len(breaks) == 0 {
		return ""
	}
	out := ""
	for i, b := range breaks {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %dm", b.Type, b.DurationMinutes)
	}
	return out
}

func ptrTimeToString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
