package analytics

// UnassignedGroupName labels the bucket of tasks without a known milestone.
const UnassignedGroupName = "Unassigned"

// MilestoneGroup is one bucket of the milestone partition. Milestone is nil
// for the unassigned bucket.
type MilestoneGroup struct {
	Milestone *Milestone `json:"milestone"`
	Tasks     []Task     `json:"tasks"`
}

// Name returns the milestone name or the unassigned label.
func (g MilestoneGroup) Name() string {
	if g.Milestone == nil {
		return UnassignedGroupName
	}
	return g.Milestone.Name
}

// GroupByMilestone partitions tasks by milestone reference. Milestones keep
// their input order and always get a bucket, even when empty. Tasks with no
// reference, or one that names no supplied milestone, land in a trailing
// unassigned bucket that is present only when non-empty.
func GroupByMilestone(milestones []Milestone, tasks []Task) []MilestoneGroup {
	groups := make([]MilestoneGroup, len(milestones))
	index := make(map[uint64]int, len(milestones))
	for i := range milestones {
		groups[i] = MilestoneGroup{Milestone: &milestones[i], Tasks: []Task{}}
		index[milestones[i].ID] = i
	}

	var unassigned []Task
	for _, task := range tasks {
		if task.MilestoneID != nil {
			if i, ok := index[*task.MilestoneID]; ok {
				groups[i].Tasks = append(groups[i].Tasks, task)
				continue
			}
		}
		unassigned = append(unassigned, task)
	}

	if len(unassigned) > 0 {
		groups = append(groups, MilestoneGroup{Tasks: unassigned})
	}
	return groups
}

// GroupSummary pairs a milestone bucket with its own progress.
type GroupSummary struct {
	MilestoneGroup
	Summary ProgressSummary `json:"summary"`
}

// SummarizeGroups runs Summarize over each bucket independently.
func SummarizeGroups(groups []MilestoneGroup, updates []TaskUpdate, today Date) []GroupSummary {
	latest := LatestUpdates(updates)
	// Each bucket only sees the latest update of its own tasks.
	out := make([]GroupSummary, len(groups))
	for i, g := range groups {
		scoped := make([]TaskUpdate, 0, len(g.Tasks))
		for _, t := range g.Tasks {
			if u, ok := latest[t.ID]; ok {
				scoped = append(scoped, u)
			}
		}
		out[i] = GroupSummary{
			MilestoneGroup: g,
			Summary:        Summarize(g.Tasks, scoped, today),
		}
	}
	return out
}
