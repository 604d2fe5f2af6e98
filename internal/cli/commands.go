package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"homebase/internal/config"
	"homebase/internal/database"
	"homebase/internal/models"
	"homebase/internal/routine"
	"homebase/internal/schedule"
)

func newDueCmd(app *App) *cobra.Command {
	var at string
	var lookahead time.Duration

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List tasks coming due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.ConfigPath)
			if err != nil {
				return err
			}
			now := time.Now()
			if at != "" {
				tod, err := models.ParseTimeOfDay(at)
				if err != nil {
					return err
				}
				now = tod.On(now)
			}
			if lookahead <= 0 {
				lookahead = cfg.Scheduler.Lookahead
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			tasks, err := st.ListTasks(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			due := schedule.FindDueTasks(tasks, now, lookahead)
			if len(due) == 0 {
				fmt.Fprintf(out, "nothing due between %s and %s\n", now.Format("15:04"), now.Add(lookahead).Format("15:04"))
				return nil
			}
			for _, task := range due {
				fmt.Fprintf(out, "%s  %s  (%s)\n", task.ScheduledTime, task.Title, strings.Join(task.ItemNames(), ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at HH:MM today instead of now")
	cmd.Flags().DurationVar(&lookahead, "lookahead", 0, "Due window (default from config)")
	return cmd
}

func newRoutineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routine <text>",
		Short: "Show the return trigger parsed from a routine description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tod, ok := routine.ParseReturnTrigger(strings.Join(args, " "))
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "none")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), tod)
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print item history, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.ConfigPath)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.ListHistory(cmd.Context(), models.HistoryFilter{User: user})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %-16s %-12s %-10s %s\n",
					e.Timestamp.Local().Format("2006-01-02 15:04"), e.ItemName, e.User, e.Status, e.Location)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Only entries for this user")
	return cmd
}

func newSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty database with the demo household",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.ConfigPath)
			if err != nil {
				return err
			}
			if cfg.Database.Driver == "memory" {
				return fmt.Errorf("seed needs a sqlite3 or postgres database, not %q", cfg.Database.Driver)
			}
			st, err := database.Open(cfg.Database.Driver, cfg.Database.URL, false)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Seed(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", cfg.Database.URL)
			return nil
		},
	}
}
