package service

import (
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/apierror"
)

const dateLayout = "2006-01-02"

// periodRange resolves a named period to an inclusive [from, to] window in
// now's location. Weeks start on Sunday. An empty period means unbounded.
func periodRange(period, start, end string, now time.Time) (time.Time, time.Time, error) {
	loc := now.Location()
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	endOf := func(t time.Time) time.Time { return t.Add(-time.Nanosecond) }

	switch period {
	case "":
		return time.Time{}, time.Time{}, nil
	case "today", "day":
		return dayStart, endOf(dayStart.AddDate(0, 0, 1)), nil
	case "week":
		from := dayStart.AddDate(0, 0, -int(now.Weekday()))
		return from, endOf(from.AddDate(0, 0, 7)), nil
	case "month":
		from := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return from, endOf(from.AddDate(0, 1, 0)), nil
	case "year":
		from := time.Date(y, 1, 1, 0, 0, 0, 0, loc)
		return from, endOf(from.AddDate(1, 0, 0)), nil
	case "custom":
		if start == "" || end == "" {
			return time.Time{}, time.Time{}, apierror.Invalid("start_date and end_date are required for a custom period")
		}
		from, err := time.ParseInLocation(dateLayout, start, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apierror.Invalid("Invalid start_date")
		}
		to, err := time.ParseInLocation(dateLayout, end, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apierror.Invalid("Invalid end_date")
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, apierror.Invalid("end_date must not be before start_date")
		}
		return from, endOf(to.AddDate(0, 0, 1)), nil
	default:
		return time.Time{}, time.Time{}, apierror.Invalidf("Invalid period %q", period)
	}
}
