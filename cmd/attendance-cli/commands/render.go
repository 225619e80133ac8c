package commands

import (
	"attendance-backend/lib/attendance"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func printRecord(w io.Writer, record attendance.Record) error {
	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(record)
	}
	renderRecord(w, record)
	return nil
}

func renderRecord(w io.Writer, record attendance.Record) {
	summary := newTable(w)
	summary.SetTitle("Roll Number: %s", record.StudentId)
	summary.AppendRow(table.Row{
		"Overall",
		fmt.Sprintf("%d/%d (%.2f%%)", record.TotalPresent, record.TotalClasses, record.OverallPercentage),
	})
	if record.AboveThreshold {
		summary.AppendRow(table.Row{
			"Status",
			fmt.Sprintf("You can skip %d hours and still maintain above %.0f%%", record.SkippableHours, attendance.Threshold),
		})
	} else {
		summary.AppendRow(table.Row{
			"Status",
			fmt.Sprintf("You need to attend %d hours to maintain above %.0f%%", record.RequiredHours, attendance.Threshold),
		})
	}
	summary.Render()

	if len(record.TodaysAttendance) > 0 {
		today := newTable(w)
		today.SetTitle("Today's Attendance")
		today.AppendHeader(table.Row{"Subject", "Status"})
		for _, line := range record.TodaysAttendance {
			today.AppendRow(table.Row{line.Subject, strings.Join(line.Statuses, " ")})
		}
		today.Render()
	}

	if len(record.SubjectAttendance) > 0 {
		subjects := newTable(w)
		subjects.SetTitle("Subject-wise Attendance")
		subjects.AppendHeader(table.Row{"Subject", "Attended", "Held", "%"})
		for _, line := range record.SubjectAttendance {
			subjects.AppendRow(table.Row{line.Subject, line.Present, line.Total, line.Percentage})
		}
		subjects.Render()
	}
}
