package analytics

// NeverUpdated is the LastUpdatedDisplay of a task with no updates.
const NeverUpdated = "Never"

// TaskDelayInfo is the per-task view used by lists, detail pages and exports.
type TaskDelayInfo struct {
	TaskID             uint64 `json:"task_id"`
	IsDelayed          bool   `json:"is_delayed"`
	DelayDays          int    `json:"delay_days"`
	LatestStatus       string `json:"latest_status"`
	StatusKind         Status `json:"status_kind"`
	LastUpdatedDisplay string `json:"last_updated"`
}

// DelayInfoFor evaluates a single task lazily. It applies the same rule as
// Summarize, so both report the same delay for the same inputs.
func DelayInfoFor(task Task, updates []TaskUpdate, today Date) TaskDelayInfo {
	latest, ok := LatestUpdateFor(task.ID, updates)
	return newDelayInfo(task, evaluateTask(task, latest, ok, today))
}

// DelayInfos evaluates every task, resolving latest updates once. The
// result is in task order.
func DelayInfos(tasks []Task, updates []TaskUpdate, today Date) []TaskDelayInfo {
	latest := LatestUpdates(updates)
	infos := make([]TaskDelayInfo, len(tasks))
	for i, task := range tasks {
		u, ok := latest[task.ID]
		infos[i] = newDelayInfo(task, evaluateTask(task, u, ok, today))
	}
	return infos
}

func newDelayInfo(task Task, out taskOutcome) TaskDelayInfo {
	info := TaskDelayInfo{
		TaskID:             task.ID,
		IsDelayed:          out.delayDays > 0,
		DelayDays:          out.delayDays,
		LatestStatus:       out.status.String(),
		StatusKind:         out.status,
		LastUpdatedDisplay: NeverUpdated,
	}
	if !out.hasUpdate {
		return info
	}
	if out.status == StatusOther && out.latest.Status != "" {
		info.LatestStatus = out.latest.Status
	}
	if !out.latest.UpdateDate.IsZero() {
		info.LastUpdatedDisplay = out.latest.UpdateDate.String()
	}
	return info
}
