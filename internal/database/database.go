package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-cafe/saved-jobs/internal/config"

	_ "github.com/lib/pq"
)

// Table Structure:
//
// CREATE TABLE IF NOT EXISTS job (
// 	id SERIAL PRIMARY KEY,
// 	external_id CHAR(27) NOT NULL UNIQUE,
// 	job_title VARCHAR(128) NOT NULL,
// 	company VARCHAR(128) NOT NULL,
// 	location VARCHAR(200) NOT NULL,
// 	salary_min INTEGER NOT NULL DEFAULT 0,
// 	salary_max INTEGER NOT NULL DEFAULT 0,
// 	salary_currency VARCHAR(4) NOT NULL DEFAULT '$',
// 	company_icon_image_id CHAR(27) DEFAULT NULL
// );
//
// The bookmark table is described in internal/bookmark.

func DSN(cfg config.Config) string {
	return fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=%s",
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseName,
		cfg.DatabaseSSLMode,
	)
}

// GetDbConn opens and pings the postgres pool described by cfg.
func GetDbConn(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// CloseDbConn closes db conn
func CloseDbConn(conn *sql.DB) {
	conn.Close()
}
