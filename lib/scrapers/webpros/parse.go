package webpros

import (
	"attendance-backend/lib/attendance"
	"attendance-backend/lib/htmlutil"
	"attendance-backend/lib/timezone"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	studentIdSelector  = "td.reportData2"
	dateHeaderSelector = "tr.reportHeading2WithBackground"
	cellSelector       = "td.cellBorder"

	noClassesHeld = "0/0"
	notGraded     = ".00"
)

// ParseReport turns the academic register page into a Record. now selects
// the column holding today's attendance.
func ParseReport(ctx context.Context, html string, now time.Time) (attendance.Record, error) {
	ctx, span := tracer.Start(ctx, "ParseReport")
	defer span.End()

	record, err := parseReport(ctx, html, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse attendance report")
		return attendance.Record{}, err
	}

	span.SetAttributes(
		attribute.Int("total_present", record.TotalPresent),
		attribute.Int("total_classes", record.TotalClasses),
		attribute.Int("subjects", len(record.SubjectAttendance)),
	)
	return record, nil
}

func parseReport(ctx context.Context, html string, now time.Time) (attendance.Record, error) {
	span := trace.SpanFromContext(ctx)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return attendance.Record{}, &ParseError{Cause: err.Error()}
	}

	studentId := htmlutil.Text(doc.Find(studentIdSelector).First())
	studentId = strings.TrimSpace(strings.ReplaceAll(studentId, ":", ""))
	if studentId == "" {
		return attendance.Record{}, &ParseError{Cause: "student id not found"}
	}

	todayIndex := findDateColumn(doc, timezone.DayMonth(now))
	span.SetAttributes(attribute.Int("today_index", todayIndex))

	record := attendance.Record{
		StudentId:         studentId,
		TodaysAttendance:  []attendance.TodaysAttendanceLine{},
		SubjectAttendance: []attendance.SubjectAttendanceLine{},
	}

	var rowErr error
	doc.Find("tr[title]").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if strings.TrimSpace(row.AttrOr("title", "")) == "" {
			return true
		}
		rowErr = parseRow(ctx, row, todayIndex, &record)
		return rowErr == nil
	})
	if rowErr != nil {
		return attendance.Record{}, rowErr
	}

	record.ApplyMetrics()
	return record, nil
}

// findDateColumn returns the index of the header cell containing dayMonth,
// or -1 when today has no column.
func findDateColumn(doc *goquery.Document, dayMonth string) int {
	headings := htmlutil.Texts(doc.Find(dateHeaderSelector).First().Find("td"))
	for i, heading := range headings {
		if strings.Contains(heading, dayMonth) {
			return i
		}
	}
	return -1
}

func parseRow(ctx context.Context, row *goquery.Selection, todayIndex int, record *attendance.Record) error {
	span := trace.SpanFromContext(ctx)

	cells := htmlutil.Texts(row.Find(cellSelector))
	if len(cells) < 2 {
		return nil
	}

	subject := cells[1]
	fraction := cells[len(cells)-2]
	percentage := cells[len(cells)-1]

	if fraction == noClassesHeld {
		span.AddEvent("skip subject without classes", trace.WithAttributes(
			attribute.String("subject", subject),
		))
		return nil
	}

	present, total, err := parseFraction(fraction)
	if err != nil {
		return &ParseError{Cause: fmt.Sprintf("subject %q: %s", subject, err.Error())}
	}
	record.TotalPresent += present
	record.TotalClasses += total

	if todayIndex >= 0 && todayIndex < len(cells) {
		statuses := parseStatuses(cells[todayIndex])
		if len(statuses) > 0 {
			record.TodaysAttendance = append(record.TodaysAttendance, attendance.TodaysAttendanceLine{
				Subject:  subject,
				Statuses: statuses,
			})
		}
	}

	if percentage != notGraded {
		record.SubjectAttendance = append(record.SubjectAttendance, attendance.SubjectAttendanceLine{
			Subject:    subject,
			Present:    present,
			Total:      total,
			Percentage: percentage,
		})
	}
	return nil
}

func parseFraction(text string) (present, total int, err error) {
	parts := strings.Split(text, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed attendance %q", text)
	}
	present, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed attendance %q", text)
	}
	total, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed attendance %q", text)
	}
	if present < 0 || present > total {
		return 0, 0, fmt.Errorf("inconsistent attendance %q", text)
	}
	return present, total, nil
}

// parseStatuses keeps only the P/A marks of a day's cell, ex. "A A P".
func parseStatuses(text string) []string {
	var statuses []string
	for _, token := range strings.Fields(text) {
		if token == "P" || token == "A" {
			statuses = append(statuses, token)
		}
	}
	return statuses
}
