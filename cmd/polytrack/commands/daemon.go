package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sreshtalluri/polyratings-data-collection/internal/runledger"
	"github.com/sreshtalluri/polyratings-data-collection/lib/serviceutil"
	"github.com/sreshtalluri/polyratings-data-collection/lib/telemetry"
	"github.com/sreshtalluri/polyratings-data-collection/lib/timezone"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var cronOverride *string
var runNow *bool

func init() {
	cronOverride = daemonCmd.Flags().String("cron", "", "Cron expression overriding the configured schedule.")
	runNow = daemonCmd.Flags().Bool("now", false, "Run a collection immediately on startup.")
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon [--cron <spec>]",
	Short: "Run collection on a cron schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()

		spec := cfg.Cron
		if *cronOverride != "" {
			spec = *cronOverride
		}

		telemetry.InstrumentPerfStats(ctx)
		logLatestRun(cmd, cfg)

		logger := cronLogger{}
		cronner := cron.New(
			// campus timezone, so "0 6 * * *" means 6am local to the data
			cron.WithLocation(timezone.Location),
			cron.WithLogger(logger),
			cron.WithChain(cron.SkipIfStillRunning(logger)),
		)
		id, err := cronner.AddFunc(spec, func() {
			result, err := runCollection(ctx, cfg)
			if err != nil {
				slog.Error("collection run failed", "err", err)
				return
			}
			slog.Info("collection run published", "tag", result.Tag)
		})
		if err != nil {
			serviceutil.Fatal("failed to schedule collection", err)
		}

		cronner.Start()
		slog.Info("daemon started", "cron", spec)
		if *runNow {
			// through the wrapped job so the skip-if-running policy
			// still applies
			go cronner.Entry(id).WrappedJob.Run()
		}
		<-ctx.Done()

		// wait for a running job to return before exiting
		<-cronner.Stop().Done()
	},
}

func logLatestRun(cmd *cobra.Command, cfg Config) {
	db, err := cfg.Database.OpenDB(runledger.Schema)
	if err != nil {
		slog.Warn("failed to open run ledger", "err", err)
		return
	}
	defer db.Close()

	latest, err := runledger.NewStore(db).Latest(cmd.Context())
	if errors.Is(err, runledger.ErrNoRuns) {
		slog.Info("no recorded runs yet")
		return
	}
	if err != nil {
		slog.Warn("failed to query run ledger", "err", err)
		return
	}
	slog.Info(
		"latest recorded run",
		"tag", latest.Tag,
		"state", latest.State,
		"finished", latest.FinishedAt.Format(time.RFC3339),
	)
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Info(fmt.Sprintf("cron: %s", msg), keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(fmt.Sprintf("cron: %s", msg), append([]any{"err", err}, keysAndValues...)...)
}
