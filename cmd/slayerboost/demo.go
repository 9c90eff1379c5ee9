package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheInsomnolent/slayer-boosting/boost"
	"github.com/TheInsomnolent/slayer-boosting/core"
	"github.com/TheInsomnolent/slayer-boosting/engine"
)

// newDemoCommand replays a run of tasks through an in-memory service,
// assuming the player always follows the advice.
func newDemoCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "demo",
		Short:   "Replay a streak and print which master to use for each task",
		Example: `  slayerboost demo --from 45 --tasks 10 --elite-kourend`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(v)
			if err != nil {
				return err
			}
			from, tasks := v.GetInt("from"), v.GetInt("tasks")
			if from < 0 || tasks <= 0 {
				return fmt.Errorf("--from must be >= 0 and --tasks > 0")
			}

			out := cmd.OutOrStdout()
			level := slog.LevelWarn
			if v.GetBool("verbose") {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			svc := boost.New(
				boost.WithDispatchMode(engine.DispatchSync),
				boost.WithDefaults(settings),
				boost.WithLogger(logger),
			)
			defer svc.Close()

			var milestones []core.Event
			svc.Subscribe(core.EventMilestoneActive, func(_ context.Context, e core.Event) {
				milestones = append(milestones, e)
			})

			rows, err := replay(cmd.Context(), svc, from, tasks)
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(out, map[string]any{"tasks": rows, "milestones": milestones})
			}
			renderReplay(out, rows)
			_, err = fmt.Fprintf(out, "%d milestone(s) announced\n", len(milestones))
			return err
		},
	}
	cmd.Flags().Int("from", 0, "streak to start from")
	cmd.Flags().Int("tasks", 10, "number of tasks to complete")
	cmd.Flags().Bool("verbose", false, "log service activity to stderr")
	return cmd
}

type replayRow struct {
	Task      int         `json:"task"`
	Master    core.Master `json:"master"`
	Points    int         `json:"points"`
	Total     int         `json:"total"`
	Milestone string      `json:"milestone,omitempty"`
}

func replay(ctx context.Context, svc *engine.BoostService, from, tasks int) ([]replayRow, error) {
	const player core.PlayerID = "demo"
	counters := core.Counters{Streak: from}
	snap, err := svc.StartSession(ctx, player, counters)
	if err != nil {
		return nil, err
	}
	rows := make([]replayRow, 0, tasks)
	for i := 0; i < tasks; i++ {
		ev := snap.Evaluation
		pts, _ := snap.ExpectedPoints()
		counters.Streak++
		counters.Points += pts
		row := replayRow{Task: ev.NextTask, Master: ev.NextMaster, Points: pts, Total: counters.Points}
		if ev.Milestone {
			row.Milestone = ev.MilestoneLabel
			if row.Milestone == "" {
				row.Milestone = "milestone"
			}
		}
		rows = append(rows, row)
		if snap, err = svc.UpdateCounters(ctx, player, counters); err != nil {
			return nil, err
		}
	}
	if _, err := svc.EndSession(ctx, player); err != nil {
		return nil, err
	}
	return rows, nil
}

func renderReplay(w io.Writer, rows []replayRow) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Task", "Master", "Points", "Total", "Milestone"})
	for _, r := range rows {
		tw.AppendRow(table.Row{r.Task, r.Master.DisplayName(), r.Points, r.Total, r.Milestone})
	}
	tw.Render()
}
