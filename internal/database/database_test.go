// internal/database/database_test.go
//
// Unit-tests for pool bootstrap using sqlmock.
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/yanizio/appconf/internal/config"
)

func TestDSN(t *testing.T) {
	got, err := DSN(config.Database{Adapter: "mysql", Name: "shop"}, "app:secret@tcp(db:3306)/")
	if err != nil {
		t.Fatalf("DSN error: %v", err)
	}
	if !strings.HasPrefix(got, "app:secret@tcp(db:3306)/shop") || !strings.Contains(got, "parseTime=true") {
		t.Fatalf("DSN = %q", got)
	}
}

func TestDSN_Rejects(t *testing.T) {
	if _, err := DSN(config.Database{Adapter: "sqlite", Name: "x"}, ""); err == nil {
		t.Fatalf("expected error for unsupported adapter")
	}
	if _, err := DSN(config.Database{Adapter: "mysql", Name: "x"}, "not a dsn"); err == nil {
		t.Fatalf("expected error for malformed base dsn")
	}
}

func TestConfigure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()

	x, err := Configure(context.Background(), db, config.Database{Adapter: "mysql", Name: "shop", Pool: 32})
	if err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	if got := x.Stats().MaxOpenConnections; got != 32 {
		t.Fatalf("max open = %d, want 32", got)
	}
	if x.DriverName() != "mysql" {
		t.Fatalf("driver = %q, want mysql", x.DriverName())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestConfigure_PingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	if _, err := Configure(context.Background(), db, config.Database{Adapter: "mysql", Name: "shop"}); err == nil {
		t.Fatalf("expected ping error")
	}
}
