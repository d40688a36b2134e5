package market

import "time"

// lastIndexOn returns the index of the latest bar dated on or before date,
// or -1 when no such bar exists. Series are sorted ascending by date, so a
// binary search would also work, but series here are small enough that the
// linear scan from the end wins in practice.
func (s Series) lastIndexOn(date time.Time) int {
	for i := len(s) - 1; i >= 0; i-- {
		if !s[i].Date.After(date) {
			return i
		}
	}
	return -1
}

// MAValue returns the period-bar moving average of the close price at the
// bar offset bars before the latest bar on or before date. Offset 0 is that
// bar itself, 1 the bar before it, and so on. The second return value is
// false when there is not enough history.
func (s Series) MAValue(date time.Time, period, offset int) (float64, bool) {
	if period <= 0 || offset < 0 {
		return 0, false
	}
	end := s.lastIndexOn(date) - offset
	start := end - period + 1
	if start < 0 {
		return 0, false
	}

	var sum float64
	for i := start; i <= end; i++ {
		sum += s[i].Close
	}
	return sum / float64(period), true
}

// ClosePrice returns the close price at the bar offset bars before the
// latest bar on or before date.
func (s Series) ClosePrice(date time.Time, offset int) (float64, bool) {
	idx := s.lastIndexOn(date) - offset
	if idx < 0 {
		return 0, false
	}
	return s[idx].Close, true
}

// PctChange returns the percent change of the latest bar on or before date.
// When the bar carries no change figure it is derived from the previous
// close.
func (s Series) PctChange(date time.Time) (float64, bool) {
	idx := s.lastIndexOn(date)
	if idx < 0 {
		return 0, false
	}
	if s[idx].PctChg != 0 {
		return s[idx].PctChg, true
	}
	if idx >= 1 {
		prev := s[idx-1].Close
		if prev != 0 {
			return (s[idx].Close - prev) / prev * 100, true
		}
	}
	return 0, true
}

// LastDate returns the date of the newest bar.
func (s Series) LastDate() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	return s[len(s)-1].Date, true
}

// IsUpToDate reports whether a series whose newest bar is lastDate needs no
// refresh at the given wall-clock time. The A-share market closes at 15:00
// local time, so a weekday before the close only requires the previous
// trading day, and a weekend only requires the last Friday.
func IsUpToDate(lastDate, now time.Time) bool {
	if lastDate.IsZero() {
		return false
	}

	last := dateOnly(lastDate)
	today := dateOnly(now)

	switch wd := now.Weekday(); {
	case wd == time.Saturday || wd == time.Sunday:
		return !last.Before(lastFriday(today))
	case now.Hour() >= 15:
		return !last.Before(today)
	default:
		yesterday := today.AddDate(0, 0, -1)
		if wd := yesterday.Weekday(); wd == time.Saturday || wd == time.Sunday {
			yesterday = lastFriday(yesterday)
		}
		return !last.Before(yesterday)
	}
}

// lastFriday returns the most recent Friday on or before the given weekend
// day.
func lastFriday(day time.Time) time.Time {
	switch day.Weekday() {
	case time.Saturday:
		return day.AddDate(0, 0, -1)
	case time.Sunday:
		return day.AddDate(0, 0, -2)
	default:
		return day
	}
}

// UpToDate reports whether the series needs no refresh right now.
func (s Series) UpToDate(now time.Time) bool {
	last, ok := s.LastDate()
	if !ok {
		return false
	}
	return IsUpToDate(last, now)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
