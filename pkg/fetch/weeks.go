package fetch

import (
	"iter"
	"time"
)

// Week is one MMWR publication week.
type Week struct {
	Year int
	Week int
}

// yearStart returns the Sunday that opens MMWR week 1 of year: the first
// Sunday-to-Saturday week with at least four days in January, which is
// the week containing January 4.
func yearStart(year int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	return jan4.AddDate(0, 0, -int(jan4.Weekday()))
}

// WeeksInYear returns the number of MMWR weeks in year (52 or 53).
func WeeksInYear(year int) int {
	days := yearStart(year+1).Sub(yearStart(year)).Hours() / 24
	return int(days) / 7
}

// Weeks yields the weeks to crawl. startWeek applies to startYear and
// endWeek to endYear; every year in between is covered in full. When both
// years are equal the range is startWeek through endWeek.
func Weeks(startYear, endYear, startWeek, endWeek int) iter.Seq[Week] {
	return func(yield func(Week) bool) {
		for year := startYear; year <= endYear; year++ {
			first, last := 1, WeeksInYear(year)
			if year == startYear {
				first = startWeek
			}
			if year == endYear {
				last = min(endWeek, last)
			}
			for w := first; w <= last; w++ {
				if !yield(Week{Year: year, Week: w}) {
					return
				}
			}
		}
	}
}
