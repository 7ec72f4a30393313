package calendar

import "time"

// Cell classes used by the grid.
const (
	ClassInactive = "inactive"
	ClassToday    = "today"
)

// Day is a single cell of the month grid.
type Day struct {
	Day   int    `json:"day"`
	Class string `json:"class"`
}

// Generate builds the Sunday-first grid for a 0-indexed month. Out-of-range
// months roll over into neighbouring years the same way time.Date does.
// Cells from adjacent months are tagged inactive; the cell matching now is
// tagged today.
func Generate(month, year int, now time.Time) []Day {
	first := date(year, month, 1)
	daysInMonth := date(year, month+1, 0).Day()
	daysInPrev := date(year, month, 0).Day()
	start := int(first.Weekday())
	end := int(date(year, month, daysInMonth).Weekday())

	days := make([]Day, 0, start+daysInMonth+6-end)

	for i := start; i > 0; i-- {
		days = append(days, Day{Day: daysInPrev - i + 1, Class: ClassInactive})
	}

	// today compares the raw arguments, so a month outside 0-11 never matches.
	for i := 1; i <= daysInMonth; i++ {
		class := ""
		if i == now.Day() && month == int(now.Month())-1 && year == now.Year() {
			class = ClassToday
		}
		days = append(days, Day{Day: i, Class: class})
	}

	for i := end; i < 6; i++ {
		days = append(days, Day{Day: i - end + 1, Class: ClassInactive})
	}

	return days
}

// Navigate normalizes a month step into the 0-11 range, adjusting the year.
func Navigate(month, year int) (int, int) {
	t := date(year, month, 1)
	return int(t.Month()) - 1, t.Year()
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
}
