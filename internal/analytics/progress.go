package analytics

import "math"

// InProgressBonus is the flat completion credit given to each in-progress task.
const InProgressBonus = 5

// ProgressSummary is the project-level aggregate. It is derived on demand
// and has no identity of its own.
type ProgressSummary struct {
	CompletedCount       int     `json:"completed_count"`
	InProgressCount      int     `json:"in_progress_count"`
	TotalCount           int     `json:"total_count"`
	DelayedCount         int     `json:"delayed_count"`
	TotalDelayDays       int     `json:"total_delay_days"`
	AverageDelayDays     float64 `json:"average_delay_days"`
	CompletionPercentage int     `json:"completion_percentage"`
}

// taskOutcome is the evaluation of one task against its latest update.
type taskOutcome struct {
	status    Status
	hasUpdate bool
	latest    TaskUpdate
	delayDays int
}

// evaluateTask is the single per-task rule shared by Summarize and the
// delay-info queries. Without an update the task counts as not started and
// is measured against today. Untracked statuses are not measured at all.
func evaluateTask(task Task, latest TaskUpdate, hasUpdate bool, today Date) taskOutcome {
	if !hasUpdate {
		return taskOutcome{
			status:    StatusNotStarted,
			delayDays: DelayDays(task.DueDate, today),
		}
	}

	out := taskOutcome{
		status:    ParseStatus(latest.Status),
		hasUpdate: true,
		latest:    latest,
	}
	if out.status.Tracked() {
		out.delayDays = DelayDays(task.DueDate, latest.UpdateDate)
	}
	return out
}

// Summarize aggregates completion and delay metrics over a project's tasks.
// Updates for tasks outside the list are ignored.
func Summarize(tasks []Task, updates []TaskUpdate, today Date) ProgressSummary {
	latest := LatestUpdates(updates)

	var s ProgressSummary
	for _, task := range tasks {
		s.TotalCount++

		u, ok := latest[task.ID]
		out := evaluateTask(task, u, ok, today)

		if out.hasUpdate {
			switch out.status {
			case StatusCompleted:
				s.CompletedCount++
			case StatusInProgress:
				s.InProgressCount++
			default:
				continue
			}
		}

		if out.delayDays > 0 {
			s.DelayedCount++
			s.TotalDelayDays += out.delayDays
		}
	}

	s.AverageDelayDays = averageDelay(s.TotalDelayDays, s.DelayedCount)
	s.CompletionPercentage = completionPercentage(s.CompletedCount, s.InProgressCount, s.TotalCount)
	return s
}

func averageDelay(totalDays, delayed int) float64 {
	if delayed == 0 {
		return 0
	}
	return roundTo(float64(totalDays)/float64(delayed), 1)
}

func completionPercentage(completed, inProgress, total int) int {
	if total == 0 {
		return 0
	}
	pct := float64(completed)/float64(total)*100 + float64(inProgress*InProgressBonus)
	return int(math.Min(100, math.Round(pct)))
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
