package repo

import (
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// newQueryDB returns a DB that only renders queries; it never opens a connection.
func newQueryDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN("postgres://properly@localhost:5432/properly?sslmode=disable")))
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func pgTime(t time.Time) string {
	return "'" + t.UTC().Format("2006-01-02 15:04:05.999999-07:00") + "'"
}
