package sqliteutil

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects the database backing a store: a local sqlite file or a
// remote libsql database. Url wins when both are set.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens the configured database and ensures `schema` has been
// applied to it.
func (c Config) OpenDB(schema string) (*sql.DB, error) {
	if c.Url != "" {
		values := url.Values{}
		if c.AuthToken != "" {
			values.Add("authToken", c.AuthToken)
		}
		db, err := sql.Open("libsql", c.Url+"?"+values.Encode())
		if err != nil {
			return nil, err
		}
		return db, applySchema(db, schema)
	}

	if c.File == "" {
		return nil, fmt.Errorf("a database file was not specified")
	}
	return OpenDB(schema, c.File)
}

// OpenDB opens a local sqlite database at `path` (":memory:" works for
// tests) and ensures `schema` has been applied to it.
func OpenDB(schema, path string) (*sql.DB, error) {
	if path != ":memory:" {
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			f, err := os.Create(path)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	return db, applySchema(db, schema)
}

func applySchema(db *sql.DB, schema string) error {
	if schema == "" {
		return nil
	}
	_, err := db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return err
	}
	return nil
}
