// Package dateutil canonicalizes instants to calendar-day keys and does
// day-granular arithmetic on them. Day keys are zero-padded YYYY-MM-DD
// strings, so lexicographic order is chronological order.
package dateutil

import (
	"fmt"
	"math"
	"time"

	"github.com/kmaguire/cadence/internal/constants"
)

// TodayKey returns the current calendar day as a YYYY-MM-DD key using the
// local wall clock. Two calls within the same local calendar day return
// equal keys.
func TodayKey() string {
	return DayKey(time.Now())
}

// DayKey canonicalizes an instant to its local calendar-day key.
func DayKey(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDay validates a YYYY-MM-DD key and returns it at midnight UTC.
func ParseDay(key string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (expected YYYY-MM-DD): %w", key, err)
	}
	return t, nil
}

// DaysBetween returns the whole-day difference a minus b. The elapsed time
// is rounded to the nearest day so sub-day drift (daylight saving) cannot
// skew the count.
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseDay(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDay(b)
	if err != nil {
		return 0, err
	}
	return int(math.Round(ta.Sub(tb).Hours() / 24)), nil
}

// AddDays returns the day key n calendar days after (or before, for
// negative n) the given key.
func AddDays(key string, n int) (string, error) {
	t, err := ParseDay(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat), nil
}
