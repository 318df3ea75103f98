package feedback

import (
	"math"
	"sort"
	"time"
)

// Sort is a board ordering.
type Sort string

const (
	SortNew      Sort = "new"
	SortPopular  Sort = "popular"
	SortTrending Sort = "trending"
)

const (
	trendingOffsetHours = 2
	trendingDecay       = 1.3
)

// Record is the subset of a feedback row that ranking looks at.
type Record struct {
	ID          string
	CreatedAt   time.Time
	Title       string
	Description string
	Status      Status
	Upvotes     int
}

// ParseSort maps a query value to a Sort, defaulting to SortNew.
func ParseSort(value string) Sort {
	switch Sort(value) {
	case SortPopular:
		return SortPopular
	case SortTrending:
		return SortTrending
	default:
		return SortNew
	}
}

// TrendingScore decays upvotes by age: upvotes / (ageHours + 2)^1.3 with ageHours floored at 1.
func TrendingScore(upvotes int, createdAt, now time.Time) float64 {
	ageHours := math.Max(now.Sub(createdAt).Hours(), 1)
	return float64(upvotes) / math.Pow(ageHours+trendingOffsetHours, trendingDecay)
}

// SortRecords returns a newly ordered copy of rows; rows itself is left untouched.
func SortRecords(rows []Record, by Sort, now time.Time) []Record {
	return SortBy(rows, by, now, func(r Record) (time.Time, int) { return r.CreatedAt, r.Upvotes })
}

// SortBy orders any row type given an accessor for its creation time and upvote count.
// The sort is stable for every ordering.
func SortBy[T any](rows []T, by Sort, now time.Time, key func(T) (time.Time, int)) []T {
	out := make([]T, len(rows))
	copy(out, rows)

	var less func(a, b T) bool
	switch by {
	case SortPopular:
		less = func(a, b T) bool {
			_, ua := key(a)
			_, ub := key(b)
			return ua > ub
		}
	case SortTrending:
		less = func(a, b T) bool {
			ca, ua := key(a)
			cb, ub := key(b)
			return TrendingScore(ua, ca, now) > TrendingScore(ub, cb, now)
		}
	default:
		less = func(a, b T) bool {
			ca, _ := key(a)
			cb, _ := key(b)
			return ca.After(cb)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// FilterByStatus keeps rows whose status is in statuses; an empty filter keeps everything.
func FilterByStatus(rows []Record, statuses []Status) []Record {
	if len(statuses) == 0 {
		out := make([]Record, len(rows))
		copy(out, rows)
		return out
	}
	keep := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		keep[s] = true
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		if keep[NormalizeStatus(string(r.Status))] {
			out = append(out, r)
		}
	}
	return out
}
