package runledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sreshtalluri/polyratings-data-collection/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "runledger",
		DbSchema: Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		_, err := store.Latest(ctx)
		require.True(t, errors.Is(err, ErrNoRuns))

		runs, err := store.History(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 0)
	}
	{
		started := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
		err := store.Record(ctx, Run{
			Tag:        "20240101_060000",
			StartedAt:  started,
			FinishedAt: started.Add(time.Minute * 8),
			State:      "PUBLISHED",
			Datasets: []Dataset{
				{Name: "professors_data", Rows: 3100, File: "data/tracking/professors_full_data_20240101_060000.csv"},
				{Name: "professor_detailed_reviews", Rows: 52000, File: "data/tracking/professor_detailed_reviews_20240101_060000.csv"},
			},
		})
		require.NoError(t, err)

		err = store.Record(ctx, Run{
			Tag:        "20240102_060000",
			StartedAt:  started.Add(time.Hour * 24),
			FinishedAt: started.Add(time.Hour*24 + time.Minute),
			State:      "FAILED",
			Error:      "collection failed: fetch professor roster: unexpected status 502 Bad Gateway",
		})
		require.NoError(t, err)
	}
	{
		latest, err := store.Latest(ctx)
		require.NoError(t, err)
		require.Equal(t, "20240102_060000", latest.Tag)
		require.Equal(t, "FAILED", latest.State)
		require.NotEmpty(t, latest.Error)
		require.Len(t, latest.Datasets, 0)
	}
	{
		runs, err := store.History(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 2)

		// newest first
		require.Equal(t, "20240102_060000", runs[0].Tag)
		require.Equal(t, "20240101_060000", runs[1].Tag)

		published := runs[1]
		require.Equal(t, "PUBLISHED", published.State)
		require.Len(t, published.Datasets, 2)
		require.Equal(t, "professors_data", published.Datasets[0].Name)
		require.Equal(t, int64(3100), published.Datasets[0].Rows)
		require.Equal(t, 2024, published.StartedAt.UTC().Year())
	}
	{
		runs, err := store.History(ctx, 1)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		require.Equal(t, "20240102_060000", runs[0].Tag)
	}
}

func TestHistoryLimitUnderVolume(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "runledger",
		DbSchema: Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	started := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	tags := make([]string, 50)
	for i := range tags {
		tags[i] = testutil.RandomId(t, 15)
		err := store.Record(ctx, Run{
			Tag:        tags[i],
			StartedAt:  started.Add(time.Duration(i) * 24 * time.Hour),
			FinishedAt: started.Add(time.Duration(i)*24*time.Hour + time.Minute),
			State:      "PUBLISHED",
		})
		require.NoError(t, err)
	}

	runs, err := store.History(ctx, 20)
	require.NoError(t, err)
	require.Len(t, runs, 20)
	for i, run := range runs {
		require.Equal(t, tags[len(tags)-1-i], run.Tag)
	}

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, tags[len(tags)-1], latest.Tag)
}
