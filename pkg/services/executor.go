package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vowsuite-inc/vowsuite-reports/pkg/logging"
)

// QueryResult holds the outcome of one report query.
type QueryResult struct {
	Columns  []string
	Rows     []map[string]any
	RowCount int
}

// SQLExecutor runs validated report SQL with positional parameters.
// Implementations must never interpolate parameter values into the
// query text.
type SQLExecutor interface {
	ExecuteQuery(ctx context.Context, sqlQuery string, params []any, limit int) (*QueryResult, error)
}

// PostgresExecutor executes report queries against the application
// database through pgx.
type PostgresExecutor struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresExecutor creates an executor over an existing pool.
func NewPostgresExecutor(pool *pgxpool.Pool, logger *zap.Logger) *PostgresExecutor {
	return &PostgresExecutor{
		pool:   pool,
		logger: logger.Named("executor"),
	}
}

// ExecuteQuery runs a parameterized query and collects the result set.
// When limit is positive the query is wrapped in a subselect so the cap
// holds even if the generated SQL carries its own LIMIT.
func (e *PostgresExecutor) ExecuteQuery(ctx context.Context, sqlQuery string, params []any, limit int) (*QueryResult, error) {
	queryToRun := sqlQuery
	if limit > 0 {
		queryToRun = fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", sqlQuery, limit)
	}

	rows, err := e.pool.Query(ctx, queryToRun, params...)
	if err != nil {
		e.logger.Warn("query failed",
			zap.String("sql", logging.SanitizeSQL(sqlQuery)),
			zap.Error(err))
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	// Column order comes from the result descriptor, not from map
	// iteration, so it is stable across rows and runs.
	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = NormalizeValue(values[i])
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &QueryResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}
