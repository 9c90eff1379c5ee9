package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

type pointsResult struct {
	Master core.Master `json:"master"`
	Task   int         `json:"task"`
	Label  string      `json:"label,omitempty"`
	Base   int         `json:"base"`
	Points int         `json:"points"`
}

func newPointsCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "points",
		Short:   "Points a master awards for a task number",
		Example: `  slayerboost points --master nieve --task 1000 --elite-western`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(v)
			if err != nil {
				return err
			}
			m, err := core.ParseMaster(v.GetString("master"))
			if err != nil {
				return err
			}
			task := v.GetInt("task")
			if task <= 0 {
				return fmt.Errorf("--task must be > 0, got %d", task)
			}
			res := pointsResult{
				Master: m,
				Task:   task,
				Label:  core.MilestoneLabel(task),
				Base:   core.BasePointsForTask(m, task),
				Points: core.PointsForTask(m, task, settings.Diaries),
			}

			out := cmd.OutOrStdout()
			if v.GetBool("json") {
				return printJSON(out, res)
			}
			kind := "regular task"
			if res.Label != "" {
				kind = res.Label + " task"
			}
			_, err = fmt.Fprintf(out, "%s, task #%d (%s): %d points\n", m.DisplayName(), task, kind, res.Points)
			if err == nil && res.Points != res.Base {
				_, err = fmt.Fprintf(out, "includes diary bonus (base %d)\n", res.Base)
			}
			return err
		},
	}
	cmd.Flags().String("master", "", "slayer master id, e.g. konar")
	cmd.Flags().Int("task", 0, "task number within the streak")
	return cmd
}
