package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/order_enricher_test?parseTime=true"

// SetupTestDB opens the MySQL test database named by TEST_DB_DSN and skips
// the test when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the tables used by the tests and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"WebhookEvents"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the repositories expect.
func SetupTestTables(t *testing.T, db *sql.DB) {
	for _, stmt := range Schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Logf("failed to create table: %v", err)
		}
	}
}

// Schema mirrors migrations/001_webhook_events.sql.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS WebhookEvents (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		traceId VARCHAR(36) NOT NULL,
		orderId VARCHAR(64) NOT NULL,
		status VARCHAR(20) NOT NULL,
		companyId BIGINT NULL,
		e8CompanyId VARCHAR(255) NULL,
		errorCode VARCHAR(64) NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_order (orderId, createdAt)
	)`,
}
