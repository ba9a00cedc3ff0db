package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fdg312/mealcraft/internal/client"
	"github.com/fdg312/mealcraft/internal/config"
	"github.com/fdg312/mealcraft/internal/logging"
	"github.com/fdg312/mealcraft/internal/planner"
	"github.com/fdg312/mealcraft/internal/slots"
	"github.com/fdg312/mealcraft/internal/tui"
)

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   *client.Client
	baseURL  string
	logLevel string
	logFile  string
	now      func() time.Time
	stop     context.CancelFunc
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "mealcraft",
		Short: "Plan a week of meals from your recipe collection",
		Long: `mealcraft talks to the mealcraft API (API_BASE_URL, default http://localhost:8000).

Run without arguments to open the terminal UI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.stop != nil {
				a.stop()
			}
			if a.logger != nil {
				a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.baseURL, "api", "", "API base URL (overrides API_BASE_URL)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level for command output")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "mealcraft.log", "log file used by the terminal UI")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the terminal UI",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runTUI(cmd.Context())
			},
		},
		newWeekCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newRecipesCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.cfg = config.Load()
	if a.baseURL != "" {
		a.cfg.APIBaseURL = strings.TrimRight(a.baseURL, "/")
	}

	// the terminal UI owns the screen, so its logs go to a file
	output := "stderr"
	level := a.logLevel
	if cmd.Name() == "tui" || cmd.Parent() == nil {
		output = a.logFile
		level = a.cfg.LogLevel
	}

	logger, err := logging.New(a.cfg.Env, level, output)
	if err != nil {
		return err
	}
	a.logger = logger
	a.client = client.New(client.ConfigFrom(a.cfg), nil, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	a.stop = stop
	cmd.SetContext(ctx)
	return nil
}

func (a *app) runTUI(ctx context.Context) error {
	a.logger.Info("starting terminal ui", zap.String("api", a.cfg.APIBaseURL))
	return tui.Run(ctx, a.client, a.logger)
}

// startPlanner loads the week offset weeks away from the current one.
func (a *app) startPlanner(ctx context.Context, offset int) (*planner.Controller, error) {
	ctrl := planner.New(a.client.MealPlans, a.client.Recipes,
		planner.WithLogger(a.logger),
		planner.WithClock(a.now),
	)
	ctrl.Start(ctx)
	ctrl.Wait()

	dir := planner.Next
	if offset < 0 {
		dir, offset = planner.Previous, -offset
	}
	for i := 0; i < offset; i++ {
		if err := ctrl.NavigateWeek(dir); err != nil {
			ctrl.Close()
			return nil, err
		}
	}
	ctrl.Wait()

	if st := ctrl.State(); st.Error != "" {
		ctrl.Close()
		return nil, errors.New(st.Error)
	}
	return ctrl, nil
}

// parseDay accepts 0-6 (0 = Monday) or a day name such as "mon" or "Tuesday".
func parseDay(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if !slots.IsValidDay(n) {
			return 0, fmt.Errorf("day must be 0-6, got %d", n)
		}
		return n, nil
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 {
		for i, d := range slots.Days {
			if strings.HasPrefix(s, strings.ToLower(d)) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown day %q", s)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", what, s)
	}
	return id, nil
}
