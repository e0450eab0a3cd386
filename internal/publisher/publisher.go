package publisher

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sreshtalluri/polyratings-data-collection/internal/dataset"
	"github.com/sreshtalluri/polyratings-data-collection/lib/telemetry"
	"github.com/sreshtalluri/polyratings-data-collection/lib/timezone"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("publisher")

// tags sort lexicographically in timestamp order
const tagFormat = "20060102_150405"

// State is the phase of a publish attempt. Every attempt is a single
// shot: PUBLISHING ends in exactly one of PUBLISHED or FAILED, retries
// are the scheduler's concern.
type State string

const (
	StatePublishing State = "PUBLISHING"
	StatePublished  State = "PUBLISHED"
	StateFailed     State = "FAILED"
)

// Producer yields the datasets of one collection run. It may return
// partially built datasets together with a non-nil error; whatever it
// yielded is still staged for diagnosis.
type Producer func(ctx context.Context) ([]dataset.Dataset, error)

// Config holds the two output directories. MainDir holds the canonical
// file set, TrackingDir accumulates timestamped historical snapshots.
type Config struct {
	MainDir     string `json:"main_dir"`
	TrackingDir string `json:"tracking_dir"`
}

type Publisher struct {
	config Config
	now    func() time.Time
	// runs after a canonical temp file is written but before it is
	// renamed into place
	afterTempWrite func()
}

// New builds a publisher writing under the configured directories. Run
// tags are taken in campus time so they line up across hosts.
func New(config Config) *Publisher {
	return &Publisher{
		config: config,
		now:    timezone.Now,
	}
}

type DatasetResult struct {
	Name         string
	Rows         int
	TrackingFile string
}

// Result describes a finished publish attempt.
type Result struct {
	State      State
	Tag        string
	StartedAt  time.Time
	FinishedAt time.Time
	Datasets   []DatasetResult
}

// Publish runs the producer once, stages everything it yielded in the
// tracking directory under a fresh timestamp tag, and promotes the
// staged files to the canonical file set only if the producer succeeded
// and every dataset validated. On failure the canonical files are left
// byte-for-byte untouched.
func (p *Publisher) Publish(ctx context.Context, produce Producer) (Result, error) {
	ctx, span := tracer.Start(ctx, "Publish")
	defer span.End()

	result := Result{
		State:     StatePublishing,
		StartedAt: p.now(),
	}
	fail := func(err error) (Result, error) {
		result.State = StateFailed
		result.FinishedAt = p.now()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	datasets, produceErr := produce(ctx)

	// stage whatever the producer yielded, partial output from a failed
	// run is still kept for diagnosis
	if len(datasets) > 0 {
		stageErr := p.stage(datasets, &result)
		if stageErr != nil && produceErr == nil {
			return fail(fmt.Errorf("stage datasets: %w", stageErr))
		}
		if stageErr != nil {
			slog.WarnContext(ctx, "failed to stage datasets of a failed run", "err", stageErr)
		}
	}

	if produceErr != nil {
		return fail(fmt.Errorf("collection failed: %w", produceErr))
	}

	err := validate(datasets)
	if err != nil {
		return fail(err)
	}

	for _, d := range datasets {
		err := p.promote(d, result.Tag)
		if err != nil {
			return fail(fmt.Errorf("promote %s: %w", d.CanonicalFilename(), err))
		}
	}

	span.SetAttributes(attribute.String("tag", result.Tag))
	result.State = StatePublished
	result.FinishedAt = p.now()
	return result, nil
}

// stage writes every dataset to the tracking directory under a tag no
// previous run has used.
func (p *Publisher) stage(datasets []dataset.Dataset, result *Result) error {
	err := os.MkdirAll(p.config.TrackingDir, 0755)
	if err != nil {
		return err
	}

	result.Tag = p.allocateTag(datasets)
	for _, d := range datasets {
		path := filepath.Join(p.config.TrackingDir, d.TrackingFilename(result.Tag))
		err := writeCsv(path, d)
		if err != nil {
			return err
		}
		result.Datasets = append(result.Datasets, DatasetResult{
			Name:         d.Name,
			Rows:         len(d.Records),
			TrackingFile: path,
		})
	}
	return nil
}

// allocateTag picks the current timestamp, advancing it a second at a
// time while any of the run's tracking filenames is already taken, so
// two runs can never share a tag or overwrite each other's snapshots.
func (p *Publisher) allocateTag(datasets []dataset.Dataset) string {
	t := p.now()
	for {
		tag := t.Format(tagFormat)
		taken := false
		for _, d := range datasets {
			_, err := os.Stat(filepath.Join(p.config.TrackingDir, d.TrackingFilename(tag)))
			if err == nil {
				taken = true
				break
			}
		}
		if !taken {
			return tag
		}
		t = t.Add(time.Second)
	}
}

func validate(datasets []dataset.Dataset) error {
	if len(datasets) == 0 {
		return fmt.Errorf("producer yielded no datasets")
	}
	for _, d := range datasets {
		if len(d.Header) == 0 {
			return fmt.Errorf("dataset %s has no header", d.Name)
		}
		if len(d.Records) == 0 {
			return fmt.Errorf("dataset %s is empty", d.Name)
		}
	}
	return nil
}

// promote copies a staged tracking file over the canonical file. The
// canonical file is only ever replaced by a rename, never written in
// place, so a crash mid-promotion cannot leave it truncated.
func (p *Publisher) promote(d dataset.Dataset, tag string) error {
	data, err := os.ReadFile(filepath.Join(p.config.TrackingDir, d.TrackingFilename(tag)))
	if err != nil {
		return err
	}

	err = os.MkdirAll(p.config.MainDir, 0755)
	if err != nil {
		return err
	}

	canonical := filepath.Join(p.config.MainDir, d.CanonicalFilename())
	tmp := canonical + ".tmp"
	err = os.WriteFile(tmp, data, 0644)
	if err != nil {
		return err
	}
	if p.afterTempWrite != nil {
		p.afterTempWrite()
	}
	return os.Rename(tmp, canonical)
}

func writeCsv(path string, d dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	err = w.Write(d.Header)
	if err == nil {
		err = w.WriteAll(d.Records)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
