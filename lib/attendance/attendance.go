package attendance

import "strings"

// Credential is the identifier/secret pair used to log into the portal.
// it is supplied per request and never stored by the scraping core.
type Credential struct {
	Identifier string `json:"username"`
	Secret     string `json:"password"`
}

type SubjectAttendanceLine struct {
	Subject string `json:"subject"`
	Present int    `json:"present"`
	Total   int    `json:"total"`
	// the percentage exactly as the portal reports it, ex. "83.33"
	Percentage string `json:"percentage"`
}

type TodaysAttendanceLine struct {
	Subject string `json:"subject"`
	// "P" or "A" for each period held today, in column order
	Statuses []string `json:"statuses"`
}

func (l TodaysAttendanceLine) String() string {
	return l.Subject + ": " + strings.Join(l.Statuses, " ")
}

type Record struct {
	StudentId         string                  `json:"student_id"`
	TotalPresent      int                     `json:"total_present"`
	TotalClasses      int                     `json:"total_classes"`
	OverallPercentage float64                 `json:"overall_percentage"`
	TodaysAttendance  []TodaysAttendanceLine  `json:"todays_attendance"`
	SubjectAttendance []SubjectAttendanceLine `json:"subject_attendance"`
	SkippableHours    int                     `json:"skippable_hours"`
	RequiredHours     int                     `json:"required_hours"`
	AboveThreshold    bool                    `json:"above_threshold"`
}

// ApplyMetrics derives the percentage and hour metrics from
// TotalPresent and TotalClasses.
func (r *Record) ApplyMetrics() {
	r.OverallPercentage = Percentage(r.TotalPresent, r.TotalClasses)
	r.AboveThreshold = AboveThreshold(r.OverallPercentage)
	r.SkippableHours = SkippableHours(r.TotalPresent, r.TotalClasses)
	r.RequiredHours = RequiredHours(r.TotalPresent, r.TotalClasses)
}
