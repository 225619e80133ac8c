package commands

import (
	"attendance-backend/lib/attendance"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const registerFixture = "../../../lib/scrapers/webpros/testdata/register.html"

func run(t *testing.T, args ...string) (string, error) {
	t.Cleanup(func() {
		jsonOutput = false
		parseDate = ""
	})

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "parse", registerFixture, "--date", "05/03/2024")
	if err != nil {
		t.Fatal(err)
	}
	require.Contains(t, out, "Roll Number: 21L31A0501")
	require.Contains(t, out, "70/88 (79.55%)")
	require.Contains(t, out, "You can skip 5 hours")
	require.Contains(t, out, "A A P")
	require.Contains(t, out, "Subject-wise Attendance")
	require.NotContains(t, out, "SPORTS")
}

func TestParseCommandJson(t *testing.T) {
	out, err := run(t, "parse", registerFixture, "--date", "01/04/2024", "--json")
	if err != nil {
		t.Fatal(err)
	}

	var record attendance.Record
	err = json.Unmarshal([]byte(out), &record)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "21L31A0501", record.StudentId)
	require.Empty(t, record.TodaysAttendance)
	require.Len(t, record.SubjectAttendance, 3)
}

func TestParseCommandBadDate(t *testing.T) {
	_, err := run(t, "parse", registerFixture, "--date", "2024-03-05")
	require.ErrorContains(t, err, "invalid --date")
}

func TestRenderBelowThreshold(t *testing.T) {
	record := attendance.Record{StudentId: "21L31A0599", TotalPresent: 5, TotalClasses: 10}
	record.ApplyMetrics()

	out := &bytes.Buffer{}
	renderRecord(out, record)
	require.Contains(t, out.String(), "You need to attend 10 hours")
	require.NotContains(t, out.String(), "Today's Attendance")
}
