package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNow(t *testing.T) {
	now := Now()
	require.Equal(t, Location, now.Location())

	_, offset := now.Zone()
	require.Equal(t, int((5*time.Hour + 30*time.Minute).Seconds()), offset)
}

func TestDayMonth(t *testing.T) {
	// 20:00 UTC is already the next day at the portal
	utc := time.Date(2024, time.March, 4, 20, 0, 0, 0, time.UTC)
	require.Equal(t, "05/03", DayMonth(utc))
	require.Equal(t, "04/03", DayMonth(utc.Add(-time.Hour)))
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("05/03/2024")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, Location), date)
	require.Equal(t, "05/03", DayMonth(date))

	_, err = ParseDate("2024-03-05")
	require.Error(t, err)
}
