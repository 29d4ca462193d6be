package timer

import "sort"

// Rank orders results in place so the worst offenders surface at the
// end of a report: all successes precede all failures, and each group
// is sorted by ascending duration. Results with equal status and
// duration keep their relative execution order.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Status != results[j].Status {
			return results[i].Status == Success
		}
		return results[i].Duration < results[j].Duration
	})
}
