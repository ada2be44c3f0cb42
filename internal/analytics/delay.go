package analytics

// DelayDays returns the whole days by which reference is past due.
// A missing date on either side means no delay can be attributed.
func DelayDays(due, reference Date) int {
	if due.IsZero() || reference.IsZero() {
		return 0
	}
	if !reference.After(due) {
		return 0
	}
	return max(0, due.DaysUntil(reference))
}
