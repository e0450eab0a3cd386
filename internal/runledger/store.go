package runledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sreshtalluri/polyratings-data-collection/lib/telemetry"

	"go.opentelemetry.io/otel/codes"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var tracer = telemetry.Tracer("runledger")

//go:embed schema.sql
var Schema string

var ErrNoRuns = errors.New("no recorded runs")

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

type Dataset struct {
	Name string
	Rows int64
	File string
}

// Run is one recorded publish attempt, successful or not.
type Run struct {
	Id         int64
	Tag        string
	StartedAt  time.Time
	FinishedAt time.Time
	State      string
	Error      string
	Datasets   []Dataset
}

func (s Store) Record(ctx context.Context, run Run) error {
	ctx, span := tracer.Start(ctx, "Record")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (tag, started_at, finished_at, state, error)
		 VALUES (?, ?, ?, ?, ?)`,
		run.Tag,
		run.StartedAt.Unix(),
		run.FinishedAt.Unix(),
		run.State,
		run.Error,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	runId, err := res.LastInsertId()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for _, d := range run.Datasets {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO run_datasets (run_id, name, row_count, file)
			 VALUES (?, ?, ?, ?)`,
			runId, d.Name, d.Rows, d.File,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// History returns the most recent runs, newest first.
func (s Store) History(ctx context.Context, limit int64) ([]Run, error) {
	ctx, span := tracer.Start(ctx, "History")
	defer span.End()

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, tag, started_at, finished_at, state, error
		 FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt int64
		err := rows.Scan(&run.Id, &run.Tag, &startedAt, &finishedAt, &run.State, &run.Error)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		run.StartedAt = time.Unix(startedAt, 0)
		run.FinishedAt = time.Unix(finishedAt, 0)
		runs = append(runs, run)
	}
	err = rows.Err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for i := range runs {
		runs[i].Datasets, err = s.runDatasets(ctx, runs[i].Id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	return runs, nil
}

func (s Store) runDatasets(ctx context.Context, runId int64) ([]Dataset, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT name, row_count, file FROM run_datasets WHERE run_id = ? ORDER BY rowid`,
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []Dataset
	for rows.Next() {
		var d Dataset
		err := rows.Scan(&d.Name, &d.Rows, &d.File)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}
	return datasets, rows.Err()
}

// Latest returns the most recent run, or ErrNoRuns when the ledger is
// empty.
func (s Store) Latest(ctx context.Context) (Run, error) {
	runs, err := s.History(ctx, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrNoRuns
	}
	return runs[0], nil
}
