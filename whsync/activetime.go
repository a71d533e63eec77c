package whsync

import (
	"context"
	"time"
)

// IsActiveTime reports whether task timers should run right now. Weekends
// and configured holidays are inactive; everything else counts as working
// time.
func IsActiveTime(ctx context.Context, holidays HolidayStore, now time.Time) (bool, error) {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false, nil
	}

	holiday, err := holidays.FindCovering(ctx, now)
	if err != nil {
		return false, err
	}
	return holiday == nil, nil
}
