package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pricingdesk/internal/config"

	_ "github.com/go-sql-driver/mysql"
)

// DefaultTimeout bounds a single statement when the caller's context
// carries no deadline. Warehouse AI statements can run for minutes.
const DefaultTimeout = 5 * time.Minute

// Statement pairs templated SQL with its bound arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Executor is the warehouse contract consumed by the pipeline and the
// assistant.
type Executor interface {
	Execute(ctx context.Context, stmt Statement) (*Table, error)
	ExecuteMany(ctx context.Context, stmts []Statement) ([]*Table, error)
}

// Client executes statements against the managed SQL warehouse. Each call
// opens a fresh connection and closes it on every exit path; call volumes
// are human-paced, so the simplicity is worth more than pooling.
type Client struct {
	cfg     config.WarehouseConfig
	log     *zap.SugaredLogger
	timeout time.Duration
}

// NewClient builds a warehouse client from validated configuration.
func NewClient(cfg config.WarehouseConfig, log *zap.SugaredLogger) *Client {
	return &Client{cfg: cfg, log: log, timeout: DefaultTimeout}
}

func (c *Client) dsn() string {
	return fmt.Sprintf(
		"token:%s@tcp(%s:%d)/%s?timeout=30s&readTimeout=%ds&writeTimeout=30s&tls=true&connectionAttributes=warehouse_path:%s",
		c.cfg.Token, c.cfg.Host, c.cfg.Port, c.cfg.Catalog,
		int(c.timeout.Seconds()), c.cfg.Path,
	)
}

func (c *Client) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("mysql", c.dsn())
	if err != nil {
		return nil, fmt.Errorf("open warehouse connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping warehouse %s: %w", c.cfg.Host, err)
	}
	return db, nil
}

// Execute runs one statement to completion. A statement without a result
// set returns (nil, nil).
func (c *Client) Execute(ctx context.Context, stmt Statement) (*Table, error) {
	results, err := c.ExecuteMany(ctx, []Statement{stmt})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// ExecuteMany runs statements strictly in order on a single connection,
// each to completion before the next starts. The first failure aborts the
// sequence; there is no partial-result return and no per-statement retry.
func (c *Client) ExecuteMany(ctx context.Context, stmts []Statement) ([]*Table, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	db, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire warehouse connection: %w", err)
	}
	defer conn.Close()

	results := make([]*Table, 0, len(stmts))
	for i, stmt := range stmts {
		table, err := c.run(ctx, conn, stmt)
		if err != nil {
			return nil, fmt.Errorf("statement %d of %d: %w", i+1, len(stmts), err)
		}
		results = append(results, table)
	}
	return results, nil
}

func (c *Client) run(ctx context.Context, conn *sql.Conn, stmt Statement) (*Table, error) {
	started := time.Now()
	rows, err := conn.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	if len(cols) == 0 {
		// DDL or INSERT: acknowledged, no tabular result.
		c.log.Debugw("statement acknowledged", "elapsed", time.Since(started))
		return nil, nil
	}

	table := &Table{Columns: cols}
	raw := make([]sql.RawBytes, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]string, len(cols))
		for i, cell := range raw {
			if cell != nil {
				row[i] = string(cell)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	c.log.Debugw("statement executed", "rows", len(table.Rows), "elapsed", time.Since(started))
	return table, nil
}
