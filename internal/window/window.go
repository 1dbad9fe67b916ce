// Package window decides whether live notifications may be pushed now.
package window

import (
	"strings"
	"time"

	"github.com/deusflow/newsalert/internal/logger"
)

const clockLayout = "15:04"

// Window is the daily notification window. Start and End are "HH:MM";
// when either is empty there is no time-of-day restriction. The window
// is same-day only and both bounds are inclusive.
type Window struct {
	EnableWeekend bool
	Start         string
	End           string
	// Location is the zone the bounds are expressed in; nil means the
	// zone of the time passed to Allows.
	Location *time.Location
}

// Allows reports whether a notification may be sent at now. Malformed
// bounds fail open.
func (w Window) Allows(now time.Time) bool {
	if w.Location != nil {
		now = now.In(w.Location)
	}

	if !w.EnableWeekend {
		if day := now.Weekday(); day == time.Saturday || day == time.Sunday {
			logger.Debug("weekend notifications disabled", "weekday", day.String())
			return false
		}
	}

	start, end := strings.TrimSpace(w.Start), strings.TrimSpace(w.End)
	if start == "" || end == "" {
		return true
	}

	from, err := parseClock(start)
	if err != nil {
		logger.Warn("invalid notification start time, allowing notifications", "value", start, "error", err)
		return true
	}
	to, err := parseClock(end)
	if err != nil {
		logger.Warn("invalid notification end time, allowing notifications", "value", end, "error", err)
		return true
	}

	current := sinceMidnight(now)
	if current < from || current > to {
		logger.Debug("outside notification window", "start", start, "end", end)
		return false
	}
	return true
}

// String renders the window for status output.
func (w Window) String() string {
	if strings.TrimSpace(w.Start) == "" || strings.TrimSpace(w.End) == "" {
		return "24/7"
	}
	return w.Start + " - " + w.End
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
