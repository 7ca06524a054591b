package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// InitPostgres connects sqlx through lib/pq, retrying while the server starts
func InitPostgres(dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, err
}

// InitQueryDB returns the sqlx handle used by read-side queries. SQLite
// shares the GORM connection so in-memory databases see the same tables.
func InitQueryDB(driver, dsn string, orm *gorm.DB) (*sqlx.DB, error) {
	if driver == DriverPostgres {
		return InitPostgres(dsn)
	}
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}
