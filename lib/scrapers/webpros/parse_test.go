package webpros

import (
	"attendance-backend/lib/attendance"
	"attendance-backend/lib/telemetry"
	"attendance-backend/lib/timezone"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "embed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/register.html
var registerFixture string

type reportRow struct {
	title      string
	subject    string
	days       []string
	fraction   string
	percentage string
}

// buildReport renders a register shaped like the portal's: a student id
// cell, then a table whose heading row lists the dates of the day columns.
func buildReport(studentId string, dates []string, rows []reportRow) string {
	var b strings.Builder
	b.WriteString("<html><body><table>")
	if studentId != "" {
		fmt.Fprintf(&b, `<tr><td class="reportData1">Roll No</td><td class="reportData2">: %s</td></tr>`, studentId)
	}
	b.WriteString("</table><table>")

	b.WriteString(`<tr class="reportHeading2WithBackground"><td>Sl.No.</td><td>Subject</td>`)
	for _, d := range dates {
		fmt.Fprintf(&b, "<td>%s</td>", d)
	}
	b.WriteString("<td>Attended/Held</td><td>%</td></tr>")

	for i, r := range rows {
		fmt.Fprintf(&b, `<tr title="%s">`, r.title)
		fmt.Fprintf(&b, `<td class="cellBorder">%d</td><td class="cellBorder">%s</td>`, i+1, r.subject)
		for _, d := range r.days {
			fmt.Fprintf(&b, `<td class="cellBorder">%s</td>`, d)
		}
		fmt.Fprintf(&b, `<td class="cellBorder">%s</td><td class="cellBorder">%s</td></tr>`, r.fraction, r.percentage)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

var march5 = time.Date(2024, time.March, 5, 10, 0, 0, 0, timezone.Location)

func expectedRecord(r attendance.Record) attendance.Record {
	r.ApplyMetrics()
	return r
}

func TestParseReport(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/webpros")
	defer cleanup()

	html := buildReport("21L31A0501", []string{"04/03", "05/03"}, []reportRow{
		{title: "MATH", subject: "Math", days: []string{"P P", "A A P"}, fraction: "10/12", percentage: "83.33"},
		{title: "GYM", subject: "Gym", days: []string{"", "P"}, fraction: "0/0", percentage: ".00"},
		{title: "PHY", subject: "Physics", days: []string{"", "P -"}, fraction: "5/6", percentage: ".00"},
		{title: "CHEM", subject: "Chemistry", days: []string{"A", ""}, fraction: "3/5", percentage: "60.00"},
	})

	record, err := ParseReport(context.Background(), html, march5)
	if err != nil {
		t.Fatal(err)
	}

	expected := expectedRecord(attendance.Record{
		StudentId:    "21L31A0501",
		TotalPresent: 18,
		TotalClasses: 23,
		TodaysAttendance: []attendance.TodaysAttendanceLine{
			{Subject: "Math", Statuses: []string{"A", "A", "P"}},
			{Subject: "Physics", Statuses: []string{"P"}},
		},
		SubjectAttendance: []attendance.SubjectAttendanceLine{
			{Subject: "Math", Present: 10, Total: 12, Percentage: "83.33"},
			{Subject: "Chemistry", Present: 3, Total: 5, Percentage: "60.00"},
		},
	})
	diff := cmp.Diff(expected, record)
	if diff != "" {
		t.Fatal(diff)
	}
	require.True(t, record.AboveThreshold)
	require.Equal(t, 1, record.SkippableHours)
	require.Zero(t, record.RequiredHours)
}

func TestParseReportSkipsSubjectsWithoutClasses(t *testing.T) {
	html := buildReport("21L31A0501", []string{"05/03"}, []reportRow{
		{title: "MATH", subject: "Math", days: []string{""}, fraction: "10/12", percentage: "83.33"},
		{title: "GYM", subject: "Gym", days: []string{""}, fraction: "0/0", percentage: ".00"},
	})

	record, err := ParseReport(context.Background(), html, march5)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 12, record.TotalClasses)
	require.Equal(t, 10, record.TotalPresent)
	require.Len(t, record.SubjectAttendance, 1)
	require.Equal(t, "Math", record.SubjectAttendance[0].Subject)
	require.Empty(t, record.TodaysAttendance)
}

func TestParseReportWithoutTodaysColumn(t *testing.T) {
	html := buildReport("21L31A0501", []string{"01/03", "02/03"}, []reportRow{
		{title: "MATH", subject: "Math", days: []string{"P", "A A P"}, fraction: "10/12", percentage: "83.33"},
	})

	record, err := ParseReport(context.Background(), html, march5)
	if err != nil {
		t.Fatal(err)
	}
	require.NotNil(t, record.TodaysAttendance)
	require.Empty(t, record.TodaysAttendance)
	require.Len(t, record.SubjectAttendance, 1)
}

func TestParseReportIgnoresUntitledRows(t *testing.T) {
	html := buildReport("21L31A0501", nil, []reportRow{
		{title: "", subject: "Totals", fraction: "not/a-number", percentage: "??"},
		{title: "   ", subject: "Spacer", fraction: "x", percentage: "y"},
		{title: "MATH", subject: "Math", fraction: "3/4", percentage: "75.00"},
	})

	record, err := ParseReport(context.Background(), html, march5)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 3, record.TotalPresent)
	require.Equal(t, 4, record.TotalClasses)
	require.True(t, record.AboveThreshold)
	require.Zero(t, record.SkippableHours)
}

func TestParseReportEmptyTable(t *testing.T) {
	html := buildReport("21L31A0501", []string{"05/03"}, nil)

	record, err := ParseReport(context.Background(), html, march5)
	if err != nil {
		t.Fatal(err)
	}
	diff := cmp.Diff(expectedRecord(attendance.Record{
		StudentId:         "21L31A0501",
		TodaysAttendance:  []attendance.TodaysAttendanceLine{},
		SubjectAttendance: []attendance.SubjectAttendanceLine{},
	}), record)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Zero(t, record.RequiredHours)
	require.Zero(t, record.SkippableHours)
}

func TestParseReportErrors(t *testing.T) {
	testCases := []struct {
		name  string
		html  string
		cause string
	}{
		{
			name: "missing student id",
			html: buildReport("", []string{"05/03"}, []reportRow{
				{title: "MATH", subject: "Math", days: []string{"P"}, fraction: "10/12", percentage: "83.33"},
			}),
			cause: "student id not found",
		},
		{
			name:  "blank student id",
			html:  buildReport(" : ", nil, nil),
			cause: "student id not found",
		},
		{
			name: "non numeric fraction",
			html: buildReport("21L31A0501", nil, []reportRow{
				{title: "MATH", subject: "Math", fraction: "ten/12", percentage: "83.33"},
			}),
			cause: `subject "Math": malformed attendance "ten/12"`,
		},
		{
			name: "fraction without separator",
			html: buildReport("21L31A0501", nil, []reportRow{
				{title: "MATH", subject: "Math", fraction: "1012", percentage: "83.33"},
			}),
			cause: `subject "Math": malformed attendance "1012"`,
		},
		{
			name: "more present than held",
			html: buildReport("21L31A0501", nil, []reportRow{
				{title: "MATH", subject: "Math", fraction: "13/12", percentage: "108.33"},
			}),
			cause: `subject "Math": inconsistent attendance "13/12"`,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseReport(context.Background(), test.html, march5)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			require.Equal(t, test.cause, parseErr.Cause)
		})
	}
}

func TestParseRegisterFixture(t *testing.T) {
	now := time.Date(2024, time.March, 5, 9, 0, 0, 0, timezone.Location)

	record, err := ParseReport(context.Background(), registerFixture, now)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "21L31A0501", record.StudentId)
	require.Equal(t, 70, record.TotalPresent)
	require.Equal(t, 88, record.TotalClasses)
	require.Equal(t, []attendance.TodaysAttendanceLine{
		{Subject: "DBMS", Statuses: []string{"A", "A", "P"}},
		{Subject: "OS", Statuses: []string{"P"}},
	}, record.TodaysAttendance)
	require.Len(t, record.SubjectAttendance, 3)
	require.True(t, record.AboveThreshold)
	require.Equal(t, 5, record.SkippableHours)
}
