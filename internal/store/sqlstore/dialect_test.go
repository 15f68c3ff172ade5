package sqlstore

import (
	"strings"
	"testing"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "sqlite", false},
		{"sqlite3", "sqlite", false},
		{"PostgreSQL", "postgres", false},
		{"mysql", "mysql", false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := DialectFor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialectFor(%q) err = %v", tt.in, err)
			}
			if err == nil && d.Name() != tt.want {
				t.Errorf("Name() = %s, want %s", d.Name(), tt.want)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"sqlite unchanged", sqliteDialect{}, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"postgres numbered", postgresDialect{}, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"mysql unchanged", mysqlDialect{}, "UPDATE t SET a = ? WHERE b = ?", "UPDATE t SET a = ? WHERE b = ?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.RewriteQuery(tt.query); got != tt.want {
				t.Errorf("RewriteQuery() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsertIgnore(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{sqliteDialect{}, "INSERT OR IGNORE INTO challenges (day, data) VALUES (?, ?)"},
		{postgresDialect{}, "INSERT INTO challenges (day, data) VALUES (?, ?) ON CONFLICT DO NOTHING"},
		{mysqlDialect{}, "INSERT IGNORE INTO challenges (day, data) VALUES (?, ?)"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			if got := tt.dialect.InsertIgnore("challenges", "day", "data"); got != tt.want {
				t.Errorf("InsertIgnore() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	if _, err := (postgresDialect{}).DSN("", ""); err == nil {
		t.Error("postgres: empty URL accepted")
	}
	if _, err := (mysqlDialect{}).DSN("", "not a dsn"); err == nil {
		t.Error("mysql: malformed DSN accepted")
	}
	dsn, err := (mysqlDialect{}).DSN("", "user:pass@tcp(localhost:3306)/wordrush")
	if err != nil {
		t.Fatalf("mysql DSN: %v", err)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("mysql DSN %q lacks parseTime", dsn)
	}

	path := t.TempDir() + "/nested/app.db"
	dsn, err = (sqliteDialect{}).DSN(path, "")
	if err != nil {
		t.Fatalf("sqlite DSN: %v", err)
	}
	if !strings.HasPrefix(dsn, path+"?") || !strings.Contains(dsn, "_txlock=immediate") {
		t.Errorf("sqlite DSN = %q", dsn)
	}
}

func TestSplitStatements(t *testing.T) {
	script := "-- header\nCREATE TABLE a (x INT);\n\n-- only a comment;\nCREATE INDEX i ON a (x);\n"
	got := splitStatements(script)
	if len(got) != 2 || !strings.HasPrefix(got[1], "CREATE INDEX") {
		t.Fatalf("splitStatements() = %q", got)
	}
}
