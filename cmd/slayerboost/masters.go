package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

var catalogTiers = []core.Tier{core.TierBase, core.Tier10th, core.Tier50th, core.Tier100th, core.Tier250th, core.Tier1000th}

type masterRow struct {
	Master core.Master    `json:"id"`
	Name   string         `json:"name"`
	NPCs   []string       `json:"npcs"`
	Points map[string]int `json:"points"`
}

func newMastersCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "masters",
		Short: "List slayer masters and their points per milestone",
		Long:  "Points include diary bonuses when --elite-western or --elite-kourend is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(v)
			if err != nil {
				return err
			}
			rows := make([]masterRow, 0, len(core.AllMasters()))
			for _, m := range core.AllMasters() {
				pts := make(map[string]int, len(catalogTiers))
				for _, t := range catalogTiers {
					pts[tierName(t)] = core.PointsForTask(m, tierTask(t), settings.Diaries)
				}
				rows = append(rows, masterRow{Master: m, Name: m.DisplayName(), NPCs: m.NPCNames(), Points: pts})
			}

			out := cmd.OutOrStdout()
			if v.GetBool("json") {
				return printJSON(out, rows)
			}
			tw := newTable(out)
			header := table.Row{"Master", "NPCs"}
			for _, t := range catalogTiers {
				header = append(header, tierName(t))
			}
			tw.AppendHeader(header)
			for _, r := range rows {
				row := table.Row{r.Name, strings.Join(r.NPCs, ", ")}
				for _, t := range catalogTiers {
					row = append(row, r.Points[tierName(t)])
				}
				tw.AppendRow(row)
			}
			tw.Render()
			return nil
		},
	}
}

func tierName(t core.Tier) string {
	if t == core.TierBase {
		return "base"
	}
	return t.Label()
}

// tierTask returns the smallest task number in the tier.
func tierTask(t core.Tier) int {
	switch t {
	case core.Tier10th:
		return 10
	case core.Tier50th:
		return 50
	case core.Tier100th:
		return 100
	case core.Tier250th:
		return 250
	case core.Tier1000th:
		return 1000
	default:
		return 1
	}
}
