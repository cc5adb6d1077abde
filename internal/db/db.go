// db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

var (
	Database *sql.DB
	once     sync.Once
	initErr  error
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS songbook (
	id         TEXT PRIMARY KEY,
	chat_id    INTEGER NOT NULL,
	title      TEXT NOT NULL,
	lyrics     TEXT NOT NULL,
	created_at TEXT NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS authors (
	chat_id  INTEGER PRIMARY KEY,
	username TEXT,
	tg_name  TEXT,
	added_at TEXT NOT NULL,
	exports  INTEGER NOT NULL DEFAULT 0
)`}

// Init opens the libsql database once and creates the tables it needs
func Init(databaseURL, authToken string) error {
	once.Do(func() {
		dsn, err := DSN(databaseURL, authToken)
		if err != nil {
			initErr = err
			return
		}

		Database, initErr = sql.Open("libsql", dsn)
		if initErr != nil {
			initErr = fmt.Errorf("failed to open db: %w", initErr)
			return
		}

		Database.SetMaxOpenConns(25)
		Database.SetMaxIdleConns(25)
		Database.SetConnMaxLifetime(5 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := Database.PingContext(ctx); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			return
		}
		for _, stmt := range schema {
			if _, err := Database.ExecContext(ctx, stmt); err != nil {
				initErr = fmt.Errorf("failed to create schema: %w", err)
				return
			}
		}
	})

	return initErr
}

// DSN appends the auth token to the database url
func DSN(databaseURL, authToken string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil || u.Scheme == "" {
		return "", fmt.Errorf("invalid database url %q", databaseURL)
	}
	if authToken != "" {
		q := u.Query()
		q.Set("authToken", authToken)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Close closes the database connection safely
func Close() {
	if Database != nil {
		if err := Database.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}
}
