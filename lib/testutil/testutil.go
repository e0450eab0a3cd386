package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/sreshtalluri/polyratings-data-collection/lib/sqliteutil"
	"github.com/sreshtalluri/polyratings-data-collection/lib/telemetry"

	"github.com/mazen160/go-random"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	if params.DbSchema == "" {
		return ServiceResult{}, cleanup
	}

	dbpath := params.DbPath
	if dbpath == "" {
		dbpath = ":memory:"
	}
	sqlite, err := sqliteutil.OpenDB(params.DbSchema, dbpath)
	if err != nil {
		t.Fatal(err)
	}

	return ServiceResult{
		DB: sqlite,
	}, func() {
		err := sqlite.Close()
		if err != nil {
			t.Fatal(err)
		}
		cleanup()
	}
}

// RandomId returns a random string id for test fixtures.
func RandomId(t testing.TB, length int) string {
	id, err := random.String(length)
	if err != nil {
		t.Fatal(err)
	}
	return id
}
