package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/siege-spider/spider-backend/pkg/logger"
	_ "modernc.org/sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Dialect 연결된 데이터베이스 종류
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const sqlitePrefix = "sqlite://"

// Options 연결 풀 및 세션 설정
type Options struct {
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration // statement_timeout, idle_in_transaction_session_timeout (Postgres 전용)
}

// DefaultOptions pool 10 + overflow 20, 11분 타임아웃
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:     30,
		MaxIdleConns:     10,
		ConnMaxLifetime:  time.Hour,
		StatementTimeout: 660 * time.Second,
	}
}

// Querier *sql.DB 와 *sql.Tx 공통 인터페이스
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	*sql.DB
	dialect Dialect
}

// Connect 데이터베이스 연결
// "sqlite://<path>" 는 SQLite, 그 외는 Postgres 로 취급한다.
func Connect(databaseURL string, opts Options) (*DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)

	if strings.HasPrefix(databaseURL, sqlitePrefix) {
		dialect = DialectSQLite
		db, err = sql.Open("sqlite", sqliteDSN(strings.TrimPrefix(databaseURL, sqlitePrefix)))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// :memory: 는 커넥션마다 별도 DB 이므로 커넥션 하나로 고정
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		dialect = DialectPostgres
		dsn, err := withSessionTimeouts(databaseURL, opts.StatementTimeout)
		if err != nil {
			return nil, err
		}
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// 연결 풀 설정
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxIdleConns)
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	// 연결 테스트
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected successfully", "dialect", dialect)

	return &DB{DB: db, dialect: dialect}, nil
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_time_format=sqlite", path)
}

// withSessionTimeouts 알 수 없는 DSN 키는 lib/pq 가 런타임 파라미터로 전달한다
func withSessionTimeouts(databaseURL string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		return databaseURL, nil
	}
	ms := strconv.FormatInt(timeout.Milliseconds(), 10)
	keys := []string{"statement_timeout", "idle_in_transaction_session_timeout"}

	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		u, err := url.Parse(databaseURL)
		if err != nil {
			return "", fmt.Errorf("invalid database URL: %w", err)
		}
		q := u.Query()
		for _, k := range keys {
			if q.Get(k) == "" {
				q.Set(k, ms)
			}
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	dsn := databaseURL
	for _, k := range keys {
		if !strings.Contains(dsn, k+"=") {
			dsn += " " + k + "=" + ms
		}
	}
	return dsn, nil
}

// Dialect 데이터베이스 종류 반환
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Rebind '?' 플레이스홀더를 Postgres 의 $N 형식으로 변환
func (db *DB) Rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WithTx 트랜잭션 실행. fn 이 에러를 반환하거나 panic 하면 롤백, 아니면 커밋
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Error("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Migrate 스키마 적용 (idempotent)
func (db *DB) Migrate(ctx context.Context) error {
	schema, err := schemaFS.ReadFile("schema/" + string(db.dialect) + ".sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}

// Close 데이터베이스 연결 종료
func (db *DB) Close() error {
	return db.DB.Close()
}
