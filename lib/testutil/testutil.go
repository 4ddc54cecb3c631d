package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"hydroclip/lib/telemetry"

	"github.com/mazen160/go-random"

	_ "modernc.org/sqlite"
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
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	// every pooled connection to :memory: would otherwise get its own
	// empty database
	sqlite.SetMaxOpenConns(1)
	_, err = sqlite.Exec(params.DbSchema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}

	return ServiceResult{DB: sqlite}, func() {
		sqlite.Close()
		cleanup()
	}
}

// RandomName produces a throwaway identifier for test fixtures.
func RandomName(t testing.TB, prefix string) string {
	suffix, err := random.String(8)
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("%s-%s", prefix, strings.ToLower(suffix))
}
