package schedule

import (
	"fmt"
	"time"

	"github.com/petcare-labs/petcare/internal/care"
)

// AgeMonths returns the whole months elapsed from birth to now, comparing
// calendar dates only. A month is counted once now's day-of-month is strictly
// past the birth day-of-month. The result is never negative.
func AgeMonths(birth, now time.Time) int {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()
	months := (ny-by)*12 + int(nm-bm)
	if nd <= bd {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// AgeText renders a pet's age for display, e.g. "6 months old" or
// "2 years old". birthDate is YYYY-MM-DD; empty or unparsable dates yield
// "Unknown age".
func AgeText(birthDate string, now time.Time) string {
	if birthDate == "" {
		return "Unknown age"
	}
	birth, err := care.ParseDateIn(birthDate, now.Location())
	if err != nil {
		return "Unknown age"
	}

	months := AgeMonths(birth, now)
	switch {
	case months >= 12:
		return plural(months/12, "year") + " old"
	case months > 0:
		return plural(months, "month") + " old"
	default:
		return "Less than 1 month old"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
