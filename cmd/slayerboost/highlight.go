package main

import (
	"errors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheInsomnolent/slayer-boosting/core"
	"github.com/TheInsomnolent/slayer-boosting/engine"
)

func newHighlightCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "highlight",
		Short: "Show how an NPC would be highlighted at a given streak",
		Example: `  slayerboost highlight --npc Konar --streak 49`,
		RunE: func(cmd *cobra.Command, args []string) error {
			npc := v.GetString("npc")
			if npc == "" {
				return errors.New("--npc is required")
			}
			settings, err := resolveSettings(v)
			if err != nil {
				return err
			}
			counters := core.Counters{Streak: v.GetInt("streak")}
			if err := counters.Validate(); err != nil {
				return err
			}
			tracker := engine.NewTracker("cli", settings)
			tracker.Start(counters)
			d := tracker.Observe(npc)

			out := cmd.OutOrStdout()
			if v.GetBool("json") {
				return printJSON(out, d)
			}
			tw := newTable(out)
			tw.AppendHeader(table.Row{"NPC", "Master", "Highlight", "Outline", "Fill"})
			master := ""
			if d.Master != core.MasterNone {
				master = d.Master.DisplayName()
			}
			outline, fill := "", ""
			if d.Kind != core.HighlightNone {
				outline, fill = d.Color.String(), d.Fill.String()
			}
			tw.AppendRow(table.Row{d.NPC, master, string(d.Kind), outline, fill})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().String("npc", "", "NPC name as shown in game")
	cmd.Flags().Int("streak", 0, "current task streak")
	return cmd
}
