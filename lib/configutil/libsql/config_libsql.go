package configlibsql

import (
	"database/sql"
	"fmt"
	"net/url"
)

// Struct describes where the job manifest database lives. when `url`
// is empty a local sqlite file (`:memory:` works too) is opened
// through the modernc driver, otherwise the remote libsql endpoint is
// used.
type Struct struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	db, err := config.open()
	if err != nil {
		return nil, err
	}
	if schema != "" {
		_, err = db.Exec(schema)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return db, nil
}

func (config Struct) open() (*sql.DB, error) {
	if config.Url == "" {
		if config.File == "" {
			return nil, fmt.Errorf("a database file or url was not specified")
		}
		db, err := sql.Open("sqlite", config.File)
		if err != nil {
			return nil, err
		}
		// see this stackoverflow post for information on why the following
		// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		db.SetMaxOpenConns(1)
		if config.File != ":memory:" {
			_, err = db.Exec("PRAGMA journal_mode=WAL")
			if err != nil {
				db.Close()
				return nil, err
			}
		}
		return db, nil
	}

	remote, err := url.Parse(config.Url)
	if err != nil {
		return nil, err
	}
	if config.AuthToken != "" {
		q := remote.Query()
		q.Set("authToken", config.AuthToken)
		remote.RawQuery = q.Encode()
	}
	return sql.Open("libsql", remote.String())
}
