package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// Supported driver names. They double as goose dialect names.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// sqliteDriverName is go-sqlite3 with lower() replaced by a Unicode-aware
// version, so LOWER(col) folds the same letters on both stores.
const sqliteDriverName = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

// Open connects to the configured database and verifies the connection.
//
// mysql DSNs should carry parseTime=true and loc=UTC so DATETIME columns
// scan into UTC time.Time values. sqlite3 DSNs may be a bare file path;
// foreign keys and a busy timeout are switched on automatically.
func Open(driver, dsn string) (*sql.DB, error) {
	name := driver
	switch driver {
	case DriverMySQL:
	case DriverSQLite:
		name = sqliteDriverName
		dsn = sqliteDSN(dsn)
		if dir := filepath.Dir(strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:")); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	if driver == DriverSQLite {
		// one writer at a time; every statement of a transaction goes through the tx
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteDSN(dsn string) string {
	params := []string{}
	if !strings.Contains(dsn, "_foreign_keys") && !strings.Contains(dsn, "_fk=") {
		params = append(params, "_foreign_keys=on")
	}
	if !strings.Contains(dsn, "_busy_timeout") && !strings.Contains(dsn, "_timeout=") {
		params = append(params, "_busy_timeout=5000")
	}
	// tag filters compare JSON text exactly, as utf8mb4_bin does on MySQL
	if !strings.Contains(dsn, "_cslike") && !strings.Contains(dsn, "_case_sensitive_like") {
		params = append(params, "_cslike=true")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
