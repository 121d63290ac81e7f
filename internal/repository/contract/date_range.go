package contract

import "time"

// DayBounds converts two calendar dates into the inclusive UTC instant range
// [start 00:00:00, end 23:59:59.999999]. Only the year, month and day of the
// inputs are used; client time zones are deliberately ignored.
func DayBounds(start, end time.Time) (time.Time, time.Time) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999000, time.UTC)
	return from, to
}

// Offset returns the number of rows skipped before a page, and false when the
// page arguments cannot select any row.
func Offset(pageSize, page int) (int, bool) {
	if pageSize <= 0 || page < 0 {
		return 0, false
	}
	return page * pageSize, true
}
