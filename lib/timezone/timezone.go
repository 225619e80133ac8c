package timezone

import "time"

const (
	dayMonthLayout = "02/01"
	dateLayout     = "02/01/2006"
)

// Location is the portal's zone, the academic register labels its day
// columns by the local date there.
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		panic(err)
	}
}

func Now() time.Time {
	return time.Now().In(Location)
}

// DayMonth formats t the way the register labels its day columns, ex. "05/03".
func DayMonth(t time.Time) string {
	return t.In(Location).Format(dayMonthLayout)
}

// ParseDate reads a dd/mm/yyyy date as midnight at the portal.
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, date, Location)
}
