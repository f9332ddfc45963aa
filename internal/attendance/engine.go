package attendance

import (
	"fmt"
	"time"

	"campusattend/internal/apperr"
	"campusattend/internal/course"
	"campusattend/internal/geo"
)

// DefaultGrace is the window after start time during which a check-in is
// recorded as late rather than present.
const DefaultGrace = 15 * time.Minute

// Evaluate decides whether claimed coordinates pass the session geofence and
// which status the check-in gets. It is pure: all inputs are explicit and no
// state is touched.
//
// Status is assigned from now's time-of-day against the session start:
// at or before start is present, within the grace window is late, and beyond
// the grace window is present again - late arrivals past the window are
// still recorded once they pass the geofence, absence is only ever derived
// later from the missing record.
func Evaluate(sess *course.Session, lat, lon float64, now time.Time, grace time.Duration) (Status, float64, error) {
	distance := geo.Distance(lat, lon, sess.Latitude, sess.Longitude)
	if distance > float64(sess.AttendanceRadius) {
		return "", distance, apperr.OutOfRange(distance, sess.AttendanceRadius)
	}

	startMin, err := course.ParseTimeOfDay(sess.StartTime)
	if err != nil {
		return "", distance, fmt.Errorf("session %s has malformed start time: %w", sess.ID, err)
	}

	// Seconds-of-day comparison; adding the grace window as seconds rolls
	// over hour boundaries correctly for sessions starting at :45 or later.
	startSec := startMin * 60
	nowSec := now.Hour()*3600 + now.Minute()*60 + now.Second()
	graceEndSec := startSec + int(grace.Seconds())

	switch {
	case nowSec <= startSec:
		return StatusPresent, distance, nil
	case nowSec <= graceEndSec:
		return StatusLate, distance, nil
	default:
		return StatusPresent, distance, nil
	}
}

// Percentage computes (present+late)/total*100 rounded to two decimals. A
// zero total yields 0, never a division error.
func Percentage(present, late, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(present+late) / float64(total) * 100
	return float64(int(pct*100+0.5)) / 100
}
