package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheInsomnolent/slayer-boosting/core"
	"github.com/TheInsomnolent/slayer-boosting/display"
	"github.com/TheInsomnolent/slayer-boosting/engine"
)

func newEvaluateCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Show the panel for a given streak",
		Example: `  slayerboost evaluate --streak 49
  slayerboost evaluate --streak 999 --settings-file boost.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(v)
			if err != nil {
				return err
			}
			counters := core.Counters{Streak: v.GetInt("streak"), Points: v.GetInt("points")}
			if err := counters.Validate(); err != nil {
				return err
			}
			_, snap := engine.NewTracker("cli", settings).Start(counters)

			out := cmd.OutOrStdout()
			if v.GetBool("json") {
				return printJSON(out, map[string]any{
					"evaluation": snap.Evaluation,
					"panel":      display.Build(snap),
				})
			}
			panel := display.Build(snap)
			if panel == nil {
				_, err := fmt.Fprintln(out, "nothing to show")
				return err
			}
			renderPanel(out, panel)
			return nil
		},
	}
	cmd.Flags().Int("streak", 0, "current task streak")
	cmd.Flags().Int("points", 0, "current slayer points")
	return cmd
}
