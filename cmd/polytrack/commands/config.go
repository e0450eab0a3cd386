package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/sreshtalluri/polyratings-data-collection/internal/collector"
	"github.com/sreshtalluri/polyratings-data-collection/internal/notify"
	"github.com/sreshtalluri/polyratings-data-collection/internal/polyratings"
	"github.com/sreshtalluri/polyratings-data-collection/internal/publisher"
	"github.com/sreshtalluri/polyratings-data-collection/internal/runledger"
	"github.com/sreshtalluri/polyratings-data-collection/lib/configutil"
	"github.com/sreshtalluri/polyratings-data-collection/lib/serviceutil"
	"github.com/sreshtalluri/polyratings-data-collection/lib/sqliteutil"
)

type Config struct {
	Api       polyratings.Config `json:"api"`
	Publisher publisher.Config   `json:"publisher"`
	Collector collector.Config   `json:"collector"`
	Database  sqliteutil.Config  `json:"database"`
	// when set, failed runs send an email report
	Smtp *notify.SmtpConfig `json:"smtp"`
	Cron string             `json:"cron"`
}

// readConfig loads config.json5 from the working directory. A missing
// file is fine, everything has a default.
func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("failed to read config", err)
	}

	if cfg.Publisher.MainDir == "" {
		cfg.Publisher.MainDir = "data/main"
	}
	if cfg.Publisher.TrackingDir == "" {
		cfg.Publisher.TrackingDir = "data/tracking"
	}
	if cfg.Database.File == "" && cfg.Database.Url == "" {
		cfg.Database.File = "polytrack.db"
	}
	if cfg.Cron == "" {
		cfg.Cron = "0 6 * * *"
	}
	return cfg
}

// runCollection performs one full collect-and-publish run and records it
// in the run ledger. The returned error is the run failure, if any;
// ledger and notification problems are logged without masking it.
func runCollection(ctx context.Context, cfg Config) (publisher.Result, error) {
	client, err := polyratings.NewClient(cfg.Api)
	if err != nil {
		return publisher.Result{}, err
	}
	coll := collector.New(client, cfg.Collector)
	pub := publisher.New(cfg.Publisher)

	result, runErr := pub.Publish(ctx, coll.Produce)

	db, err := cfg.Database.OpenDB(runledger.Schema)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open run ledger", "err", err)
	} else {
		defer db.Close()
		err := runledger.NewStore(db).Record(ctx, ledgerRun(result, runErr))
		if err != nil {
			slog.ErrorContext(ctx, "failed to record run", "err", err)
		}
	}

	if runErr != nil && cfg.Smtp != nil {
		err := notify.NewNotifier(*cfg.Smtp).RunFailed(ctx, result, runErr)
		if err != nil {
			slog.ErrorContext(ctx, "failed to send failure notification", "err", err)
		}
	}

	return result, runErr
}

func ledgerRun(result publisher.Result, runErr error) runledger.Run {
	run := runledger.Run{
		Tag:        result.Tag,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		State:      string(result.State),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	for _, d := range result.Datasets {
		run.Datasets = append(run.Datasets, runledger.Dataset{
			Name: d.Name,
			Rows: int64(d.Rows),
			File: d.TrackingFile,
		})
	}
	return run
}
