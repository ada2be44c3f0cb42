package analytics

// LatestUpdates returns, per task ID, the update with the greatest
// UploadedAt. The comparison is strictly greater-than, so on an exact
// timestamp tie the update seen first wins; which one that is depends on
// input order and should not be relied upon.
func LatestUpdates(updates []TaskUpdate) map[uint64]TaskUpdate {
	latest := make(map[uint64]TaskUpdate, len(updates))
	for _, u := range updates {
		best, seen := latest[u.TaskID]
		if !seen || u.UploadedAt.After(best.UploadedAt) {
			latest[u.TaskID] = u
		}
	}
	return latest
}

// LatestUpdateFor resolves the latest update of a single task.
func LatestUpdateFor(taskID uint64, updates []TaskUpdate) (TaskUpdate, bool) {
	var (
		best  TaskUpdate
		found bool
	)
	for _, u := range updates {
		if u.TaskID != taskID {
			continue
		}
		if !found || u.UploadedAt.After(best.UploadedAt) {
			best = u
			found = true
		}
	}
	return best, found
}
