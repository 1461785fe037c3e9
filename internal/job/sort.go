package job

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type SortKey string

const (
	SortRecent  SortKey = "recent"
	SortApplied SortKey = "applied"
	SortIgnored SortKey = "ignored"
	SortPay     SortKey = "pay"
	SortLevel   SortKey = "level"
)

func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortRecent, nil
	case SortRecent, SortApplied, SortIgnored, SortPay, SortLevel:
		return SortKey(s), nil
	}
	return SortRecent, ErrInvalidSort
}

const unknownLevelScore = 8

// LevelScore ranks a level for the "level" sort, lower first.
func LevelScore(level Level) int {
	l := strings.ToLower(string(level))
	switch {
	case l == "":
		return unknownLevelScore
	case strings.Contains(l, "principal"):
		return 1
	case strings.Contains(l, "lead"):
		return 2
	case strings.Contains(l, "staff"):
		return 3
	case strings.Contains(l, "senior") || strings.Contains(l, "sr"):
		return 4
	case strings.Contains(l, "mid"):
		return 5
	case strings.Contains(l, "junior") || strings.Contains(l, "jr"):
		return 6
	case strings.Contains(l, "intern"):
		return 7
	}
	return unknownLevelScore
}

var salaryRangeRe = regexp.MustCompile(`(?i)\$?\s*(\d+(?:\.\d+)?)\s*(k)?\s*(?:-|–|to)\s*\$?\s*(\d+(?:\.\d+)?)\s*(k)?`)

// MaxSalary extracts the upper bound of a "$N - $M" style range. Both
// "$100k-$150k" and "$100,000 - $150,000" yield 150000. ok is false when the
// text holds no recognisable range.
func MaxSalary(salary string) (int64, bool) {
	if salary == "" {
		return 0, false
	}
	m := salaryRangeRe.FindStringSubmatch(strings.ReplaceAll(salary, ",", ""))
	if m == nil {
		return 0, false
	}
	upper, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	if m[4] != "" {
		upper *= 1000
	}
	return int64(upper), true
}

// Sort orders jobs in place. Every key falls back to recency, which is the
// order rows come back from the repository, so the sort is stable.
func Sort(jobs []PersistedJob, key SortKey) {
	switch key {
	case SortApplied:
		sort.SliceStable(jobs, func(i, k int) bool {
			return statusFirst(jobs[i].Status, StatusApplied) < statusFirst(jobs[k].Status, StatusApplied)
		})
	case SortIgnored:
		sort.SliceStable(jobs, func(i, k int) bool {
			return statusFirst(jobs[i].Status, StatusIgnored) < statusFirst(jobs[k].Status, StatusIgnored)
		})
	case SortLevel:
		sort.SliceStable(jobs, func(i, k int) bool {
			return LevelScore(jobs[i].Level) < LevelScore(jobs[k].Level)
		})
	case SortPay:
		sort.SliceStable(jobs, func(i, k int) bool {
			a, aok := MaxSalary(jobs[i].Salary)
			b, bok := MaxSalary(jobs[k].Salary)
			if aok != bok {
				return aok
			}
			return a > b
		})
	default:
		sort.SliceStable(jobs, func(i, k int) bool {
			return recentBefore(jobs[i], jobs[k])
		})
	}
}

func statusFirst(s, want Status) int {
	if s == want {
		return 0
	}
	return 1
}

func recentBefore(a, b PersistedJob) bool {
	switch {
	case a.PostedDate != nil && b.PostedDate != nil && !a.PostedDate.Equal(*b.PostedDate):
		return a.PostedDate.After(*b.PostedDate)
	case a.PostedDate != nil && b.PostedDate == nil:
		return true
	case a.PostedDate == nil && b.PostedDate != nil:
		return false
	}
	return a.CreatedAt.After(b.CreatedAt)
}
