package database

import (
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"gorm.io/gorm"
)

// Dialect returns the ent dialect name matching the gorm dialector of db.
func Dialect(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return dialect.Postgres
	}
	return dialect.SQLite
}

// SQLDriver wraps the connection pool behind db in an ent SQL driver, for
// statements built with the ent SQL builder. The pool stays owned by gorm, so
// the driver must not be closed.
func SQLDriver(db *gorm.DB) (*entsql.Driver, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed resolving sql handle: %w", err)
	}
	return entsql.OpenDB(Dialect(db), sqlDB), nil
}
