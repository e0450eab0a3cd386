package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sreshtalluri/polyratings-data-collection/internal/dataset"
	"github.com/sreshtalluri/polyratings-data-collection/internal/polyratings"
	"github.com/sreshtalluri/polyratings-data-collection/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("collector")

// API is the surface of the ratings client the collector needs.
type API interface {
	All(ctx context.Context) ([]polyratings.Professor, error)
	Get(ctx context.Context, id string) (polyratings.ProfessorDetail, error)
}

type Config struct {
	// number of per-professor detail fetch failures tolerated before
	// the run is failed
	FailureTolerance int `json:"failure_tolerance"`
}

type Collector struct {
	client API
	config Config
}

func New(client API, config Config) Collector {
	return Collector{client: client, config: config}
}

// Produce runs the sequential collection pipeline: the full roster
// first, then every professor's reviews in roster order. It is shaped
// to feed the publisher, so whatever was built before a failure is
// returned alongside the error.
func (c Collector) Produce(ctx context.Context) ([]dataset.Dataset, error) {
	ctx, span := tracer.Start(ctx, "Produce")
	defer span.End()

	roster, err := c.client.All(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch roster")
		return nil, err
	}
	if len(roster) == 0 {
		err := fmt.Errorf("empty professor roster")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("professors", len(roster)))
	slog.InfoContext(ctx, "fetched professor roster", "professors", len(roster))

	snapshot := dataset.Snapshot{
		Professors: make([]dataset.Professor, len(roster)),
	}
	for i, p := range roster {
		snapshot.Professors[i] = professorRecord(p)
	}

	failures := 0
	for _, p := range snapshot.Professors {
		slog.DebugContext(ctx, "fetching professor detail", "id", p.Id, "name", p.FullName())

		detail, err := c.client.Get(ctx, p.Id)
		if err != nil {
			failures++
			if failures > c.config.FailureTolerance {
				err = fmt.Errorf("professor %s (%s): %w", p.Id, p.FullName(), err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "too many detail fetch failures")
				return dataset.Build(snapshot), err
			}
			slog.WarnContext(
				ctx, "skipping professor after detail fetch failure",
				"id", p.Id,
				"name", p.FullName(),
				"failures", failures,
				"err", err,
			)
			continue
		}

		snapshot.Reviews = append(snapshot.Reviews, reviewRecords(p, detail)...)
	}

	err = snapshot.Validate()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot failed validation")
		return dataset.Build(snapshot), err
	}

	span.SetAttributes(attribute.Int("reviews", len(snapshot.Reviews)))
	slog.InfoContext(ctx, "collected reviews", "reviews", len(snapshot.Reviews))
	return dataset.Build(snapshot), nil
}

func professorRecord(p polyratings.Professor) dataset.Professor {
	return dataset.Professor{
		Id:                  p.Id,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		Department:          p.Department,
		NumEvals:            p.NumEvals,
		OverallRating:       p.OverallRating,
		MaterialClear:       p.MaterialClear,
		StudentDifficulties: p.StudentDifficulties,
		Courses:             p.Courses,
		Tags:                p.Tags,
	}
}

// reviewRecords flattens a professor's reviews-by-course map into rows,
// with course codes sorted so output is stable across runs.
func reviewRecords(p dataset.Professor, detail polyratings.ProfessorDetail) []dataset.Review {
	courses := make([]string, 0, len(detail.Reviews))
	for course := range detail.Reviews {
		courses = append(courses, course)
	}
	sort.Strings(courses)

	var records []dataset.Review
	for _, course := range courses {
		for _, r := range detail.Reviews[course] {
			records = append(records, dataset.Review{
				ProfessorId:                   p.Id,
				ProfessorName:                 p.FullName(),
				Department:                    p.Department,
				CourseCode:                    course,
				ReviewId:                      r.Id,
				Grade:                         r.Grade,
				GradeLevel:                    r.GradeLevel,
				CourseType:                    r.CourseType,
				OverallRating:                 r.OverallRating,
				PresentsMaterialClearly:       r.PresentsMaterialClearly,
				RecognizesStudentDifficulties: r.RecognizesStudentDifficulties,
				Text:                          r.Rating,
				PostDate:                      r.PostDate,
			})
		}
	}
	return records
}
