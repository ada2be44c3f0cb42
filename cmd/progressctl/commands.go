package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yukikurage/project-progress-api/internal/analytics"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the progress summary and per-task delays",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, today, err := loadInputs()
			if err != nil {
				return err
			}
			summary := analytics.Summarize(snap.Tasks, snap.Updates, today)
			infos := analytics.DelayInfos(snap.Tasks, snap.Updates, today)

			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"as_of":   today,
					"summary": summary,
					"tasks":   infos,
				})
			}
			renderSummary(cmd.OutOrStdout(), summary)
			renderDelays(cmd.OutOrStdout(), snap.Tasks, infos)
			return nil
		},
	}
}

func milestonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "milestones",
		Short: "Print progress grouped by milestone",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, today, err := loadInputs()
			if err != nil {
				return err
			}
			groups := analytics.SummarizeGroups(
				analytics.GroupByMilestone(snap.Milestones, snap.Tasks), snap.Updates, today)

			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), groups)
			}
			renderGroups(cmd.OutOrStdout(), groups)
			return nil
		},
	}
}

func loadInputs() (*snapshot, analytics.Date, error) {
	snap, err := loadSnapshot(viper.GetString("file"))
	if err != nil {
		return nil, analytics.Date{}, err
	}
	today, err := referenceDate(viper.GetString("now"))
	if err != nil {
		return nil, analytics.Date{}, err
	}
	return snap, today, nil
}

func renderSummary(w io.Writer, s analytics.ProgressSummary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Progress")
	tw.AppendRows([]table.Row{
		{"Total tasks", s.TotalCount},
		{"Completed", s.CompletedCount},
		{"In progress", s.InProgressCount},
		{"Delayed", s.DelayedCount},
		{"Total delay days", s.TotalDelayDays},
		{"Average delay days", fmt.Sprintf("%.1f", s.AverageDelayDays)},
		{"Completion", fmt.Sprintf("%d%%", s.CompletionPercentage)},
	})
	tw.Render()
}

func renderDelays(w io.Writer, tasks []analytics.Task, infos []analytics.TaskDelayInfo) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Task", "Due", "Status", "Last Updated", "Delayed", "Days"})
	for i, info := range infos {
		delayed := ""
		if info.IsDelayed {
			delayed = "yes"
		}
		tw.AppendRow(table.Row{
			info.TaskID, tasks[i].Name, tasks[i].DueDate.String(),
			info.LatestStatus, info.LastUpdatedDisplay, delayed, info.DelayDays,
		})
	}
	tw.Render()
}

func renderGroups(w io.Writer, groups []analytics.GroupSummary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Milestone", "Planned End", "Tasks", "Completed", "Delayed", "Avg Delay", "Completion"})
	for _, g := range groups {
		plannedEnd := ""
		if g.Milestone != nil {
			plannedEnd = g.Milestone.PlannedEnd.String()
		}
		tw.AppendRow(table.Row{
			g.Name(), plannedEnd, g.Summary.TotalCount, g.Summary.CompletedCount,
			g.Summary.DelayedCount, fmt.Sprintf("%.1f", g.Summary.AverageDelayDays),
			fmt.Sprintf("%d%%", g.Summary.CompletionPercentage),
		})
	}
	tw.Render()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
