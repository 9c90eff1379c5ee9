package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheInsomnolent/slayer-boosting/config"
	"github.com/TheInsomnolent/slayer-boosting/core"
)

// NewRootCommand builds the slayerboost CLI. Flags may also be set through
// SLAYERBOOST_* environment variables.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SLAYERBOOST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// same variables the server reads
	_ = v.BindEnv("elite-western", "SLAYERBOOST_DIARY_ELITE_WESTERN")
	_ = v.BindEnv("elite-kourend", "SLAYERBOOST_DIARY_ELITE_KOUREND")

	cmd := &cobra.Command{
		Use:   "slayerboost",
		Short: "Slayer boosting planner",
		Long: `Plans which slayer master to use for the next task so that milestone
tasks (10th, 50th, 100th, 250th, 1,000th) go to the master that pays most.
Settings come from --settings-file (YAML or JSON) and can be overridden per flag.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}

	cmd.PersistentFlags().String("settings-file", "", "settings file (.yaml, .yml or .json)")
	cmd.PersistentFlags().String("default-master", "", "master used when no rule matches")
	cmd.PersistentFlags().Bool("elite-western", false, "Western Provinces elite diary complete")
	cmd.PersistentFlags().Bool("elite-kourend", false, "Kourend & Kebos elite diary complete")
	cmd.PersistentFlags().Bool("json", false, "output JSON")

	cmd.AddCommand(
		newEvaluateCommand(v),
		newMastersCommand(v),
		newHighlightCommand(v),
		newPointsCommand(v),
		newDemoCommand(v),
	)
	return cmd
}

// resolveSettings loads the settings file, if any, then applies flag and
// environment overrides.
func resolveSettings(v *viper.Viper) (core.Settings, error) {
	settings := core.DefaultSettings()
	if path := v.GetString("settings-file"); path != "" {
		s, err := config.LoadSettingsFile(path)
		if err != nil {
			return core.Settings{}, err
		}
		settings = s
	}
	if v.IsSet("default-master") && v.GetString("default-master") != "" {
		m, err := core.ParseMaster(v.GetString("default-master"))
		if err != nil {
			return core.Settings{}, err
		}
		settings.DefaultMaster = m
	}
	if v.IsSet("elite-western") {
		settings.Diaries.EliteWestern = v.GetBool("elite-western")
	}
	if v.IsSet("elite-kourend") {
		settings.Diaries.EliteKourend = v.GetBool("elite-kourend")
	}
	if err := settings.Validate(); err != nil {
		return core.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}
