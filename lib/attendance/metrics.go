package attendance

// Threshold is the minimum overall attendance percentage.
const Threshold = 75.0

func Percentage(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}

func AboveThreshold(percentage float64) bool {
	return percentage >= Threshold
}

// meetsThreshold is present/total*100 >= 75 without floating point,
// so ratios sitting exactly on the threshold compare correctly.
func meetsThreshold(present, total int) bool {
	return 4*present >= 3*total
}

// SkippableHours returns how many more classes can be missed (total grows,
// present does not) while keeping the ratio at or above the threshold.
func SkippableHours(present, total int) int {
	if total <= 0 {
		return 0
	}
	skippable := 0
	for meetsThreshold(present, total+skippable+1) {
		skippable++
	}
	return skippable
}

// RequiredHours returns how many consecutive classes must be attended
// (present and total both grow) to bring the ratio up to the threshold.
// having no classes at all counts as already satisfied.
func RequiredHours(present, total int) int {
	if total <= 0 || meetsThreshold(present, total) {
		return 0
	}
	required := 0
	for !meetsThreshold(present+required, total+required) {
		required++
	}
	return required
}
