package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
)

// Pool defaults sized for this service's workload: a handful of long
// candle-history scans on the read side plus steady small tick inserts.
const (
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 5
	defaultConnLifetime = 5 * time.Minute
	defaultDialTimeout  = 5 * time.Second
	defaultIOTimeout    = 10 * time.Second
)

// Client owns the ClickHouse connection pool shared by the candle store and
// the tick storage.
type Client struct {
	db *sql.DB
}

// NewClient opens a pooled connection and verifies it with a ping.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &ClientConfig{
		MaxOpenConns:    defaultMaxOpenConns,
		MaxIdleConns:    defaultMaxIdleConns,
		ConnMaxLifetime: defaultConnLifetime,
		DialTimeout:     defaultDialTimeout,
		ReadTimeout:     defaultIOTimeout,
		WriteTimeout:    defaultIOTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}

	db, err := sql.Open("clickhouse", buildDSN(*cfg))
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}

	return &Client{db: db}, nil
}

// DB exposes the pool for the repository layer.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the connection pool.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InitSchema runs the given DDL statements in order. Statements are expected
// to be idempotent (CREATE ... IF NOT EXISTS) so startup can run them every
// time.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func buildDSN(cfg ClientConfig) string {
	scheme := "clickhouse://"
	if cfg.UseHTTP {
		scheme = "clickhouse+http://"
	}
	dsn := fmt.Sprintf("%s%s:%s@%s:%d/%s",
		scheme, cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	first := true
	param := func(key string, val any) {
		sep := "&"
		if first {
			sep = "?"
			first = false
		}
		dsn += fmt.Sprintf("%s%s=%v", sep, key, val)
	}

	if cfg.DialTimeout > 0 {
		param("dial_timeout", cfg.DialTimeout)
	}
	if cfg.ReadTimeout > 0 {
		param("read_timeout", cfg.ReadTimeout)
	}
	// write_timeout is rejected as a server setting on some versions; it
	// stays client-side only and is never appended to the DSN.
	if cfg.MaxExecTime > 0 {
		// max_execution_time takes whole seconds
		param("max_execution_time", int(cfg.MaxExecTime.Seconds()))
	}
	if cfg.AsyncInsert {
		param("async_insert", 1)
		if cfg.WaitForAsync {
			param("wait_for_async_insert", 1)
		}
	}
	return dsn
}
