package db

import (
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestEnsureSchema_AppliesAllStatements(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS fireplus_snapshot")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS fireplus_events")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_fireplus_events_occurred_at")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := EnsureSchema(sqlDB); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchema_StatementErrorRollsBack(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if err := EnsureSchema(sqlDB); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInitDB_CreatesFile(t *testing.T) {
	sqlDB, err := InitDB(filepath.Join(t.TempDir(), "fireplus.db"))
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	var n int
	if err := sqlDB.QueryRow(`SELECT COUNT(*) FROM fireplus_snapshot`).Scan(&n); err != nil {
		t.Fatalf("query snapshot table: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty snapshot table, got %d rows", n)
	}
}
