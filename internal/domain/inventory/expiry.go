package inventory

import (
	"math"
	"time"

	"github.com/foodbank/backend/internal/domain/shared"
)

// ExpiryWindow selects lots by how soon they expire
type ExpiryWindow string

const (
	ExpiryWindowExpired ExpiryWindow = "expired"
	ExpiryWindow7Days   ExpiryWindow = "7days"
	ExpiryWindow30Days  ExpiryWindow = "30days"
)

// ParseExpiryWindow parses a window name, defaulting to 7 days when empty
func ParseExpiryWindow(s string) (ExpiryWindow, error) {
	switch ExpiryWindow(s) {
	case "":
		return ExpiryWindow7Days, nil
	case ExpiryWindowExpired, ExpiryWindow7Days, ExpiryWindow30Days:
		return ExpiryWindow(s), nil
	}
	return "", shared.ErrInvalidInput.WithMessage("Expiry filter must be one of expired, 7days, 30days")
}

// Days returns how many days ahead of today the window reaches
func (w ExpiryWindow) Days() int {
	switch w {
	case ExpiryWindowExpired:
		return 0
	case ExpiryWindow30Days:
		return 30
	default:
		return 7
	}
}

// Cutoff returns the exclusive upper bound on expiry dates in the window.
// The expired window stops at the start of today; the others include the
// whole last day.
func (w ExpiryWindow) Cutoff(today time.Time) time.Time {
	start := StartOfDay(today)
	if w == ExpiryWindowExpired {
		return start
	}
	return start.AddDate(0, 0, w.Days()+1)
}

// StartOfDay truncates t to midnight in its location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today returns the calendar date of now as midnight UTC, the form in which
// expiry dates are stored
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntilExpiry returns the number of calendar days from today to the
// expiry date. Negative values mean the lot is already expired.
func DaysUntilExpiry(expiry, today time.Time) int {
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(e.Sub(t).Hours() / 24))
}

// IsExpired reports whether the lot's expiry date is before today
func (l *Lot) IsExpired(today time.Time) bool {
	return l.ExpiryDate != nil && DaysUntilExpiry(*l.ExpiryDate, today) < 0
}
