// Package analytics runs gate-approved SQL against the analytics database
// and exposes the predefined business queries (sales metrics, top products,
// user growth) the queryDatabase tool prefers over free-form SQL.
//
// Execute never runs a statement that has not passed the query safety gate;
// callers validate first. The store's own contribution is the row ceiling.
package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/fathom0/fathom/internal/security"
)

const (
	// MaxRows caps free-form query results.
	MaxRows = 100

	// maxTopProducts caps the predefined top-products query.
	maxTopProducts = 50

	// maxGrowthMonths caps the user-growth series.
	maxGrowthMonths = 24
)

// Querier is the read capability the store needs. *pgxpool.Pool satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store executes analytics queries.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// NewStore creates an analytics store. logger may be nil.
func NewStore(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// SalesMetrics returns count, total and average over all sales.
func (s *Store) SalesMetrics(ctx context.Context) (map[string]any, error) {
	const q = `
		SELECT
			COUNT(id) AS total_sales,
			SUM(amount) AS total_revenue,
			AVG(amount) AS avg_sale_amount
		FROM sales`

	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sales metrics: %w", err)
	}
	if len(rows) == 0 {
		return map[string]any{}, nil
	}
	return rows[0], nil
}

// TopProducts returns the best-performing products by total revenue.
// limit is clamped to [1, 50].
func (s *Store) TopProducts(ctx context.Context, limit int) ([]map[string]any, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}

	const q = `
		SELECT * FROM product_performance
		ORDER BY total_revenue DESC
		LIMIT $1`

	rows, err := s.query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return rows, nil
}

// UserGrowth returns monthly signup counts, oldest month first.
func (s *Store) UserGrowth(ctx context.Context) ([]map[string]any, error) {
	const q = `
		SELECT
			DATE_TRUNC('month', signup_date) AS signup_month,
			COUNT(id) AS user_count
		FROM analytics_users
		GROUP BY DATE_TRUNC('month', signup_date)
		ORDER BY signup_month ASC
		LIMIT $1`

	rows, err := s.query(ctx, q, maxGrowthMonths)
	if err != nil {
		return nil, fmt.Errorf("user growth: %w", err)
	}
	return rows, nil
}

// Execute runs a free-form, gate-approved query with the row ceiling applied.
func (s *Store) Execute(ctx context.Context, query string) ([]map[string]any, error) {
	limited := security.EnsureRowLimit(query, MaxRows)

	rows, err := s.query(ctx, limited)
	if err != nil {
		return nil, fmt.Errorf("execute analytics query: %w", err)
	}

	s.logger.Debug("executed analytics query", "rows", len(rows))
	return rows, nil
}

// query runs sql and collects every row as a column-name map. Column-name
// maps rather than typed structs because free-form model queries have no
// schema known at compile time.
func (s *Store) query(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make(map[string]any, len(fields))
		for i, f := range fields {
			row[f.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
