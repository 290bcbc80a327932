package tools

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/firebase/genkit/go/ai"

	"github.com/fathom0/fathom/internal/security"
)

// QueryDatabaseInput defines input for the queryDatabase tool.
type QueryDatabaseInput struct {
	Query       string `json:"query" jsonschema_description:"The SQL query to execute on the analytics database"`
	QueryType   string `json:"queryType" jsonschema_description:"Type of database operation: analytics, insert, or update"`
	Description string `json:"description,omitempty" jsonschema_description:"Human-readable description of what the query does"`
}

// firstNumber extracts the limit from queries like "top 5 products".
var firstNumber = regexp.MustCompile(`\d+`)

// QueryDatabase runs a model-authored SQL query against the analytics
// database.
//
// Every query passes the safety gate before anything touches the database.
// After the gate, analytics queries matching a known intent are answered by
// a predefined query instead of the model's SQL: the curated versions have
// correct grouping and ordering, which model SQL often gets wrong.
func (h *Handler) QueryDatabase(ctx *ai.ToolContext, input QueryDatabaseInput) (Result, error) {
	if err := security.ValidateQuery(input.Query); err != nil {
		h.logger.Warn("query rejected by safety gate", "error", err)
		return Result{
			Status:  StatusError,
			Message: "Please modify your query to comply with safety requirements",
			Error: &Error{
				Code:    ErrCodeSecurity,
				Message: fmt.Sprintf("query validation failed: %v", err),
			},
		}, nil
	}

	if input.QueryType == "analytics" {
		if result, ok := h.predefinedQuery(ctx, input.Query); ok {
			return result, nil
		}
	}

	rows, err := h.analytics.Execute(ctx.Context, input.Query)
	if err != nil {
		return Result{
			Status:  StatusError,
			Message: "Check your SQL syntax and table names. Available tables: analytics_users, sales, user_events, product_performance, marketing_campaigns",
			Error: &Error{
				Code:    ErrCodeExecution,
				Message: fmt.Sprintf("query failed: %v", err),
			},
		}, nil
	}

	message := input.Description
	if message == "" {
		message = fmt.Sprintf("Query executed successfully. Retrieved %d rows.", len(rows))
	}
	return Result{
		Status:  StatusSuccess,
		Message: message,
		Data: map[string]any{
			"rows":     rows,
			"rowCount": len(rows),
		},
	}, nil
}

// predefinedQuery answers common analytics intents with curated queries.
// Returns ok=false when no intent matches or the curated query itself
// fails, in which case the caller falls back to the model's SQL.
func (h *Handler) predefinedQuery(ctx *ai.ToolContext, query string) (Result, bool) {
	lower := strings.ToLower(query)

	switch {
	case strings.Contains(lower, "sum(amount)") &&
		strings.Contains(lower, "from sales") &&
		!strings.Contains(lower, "join"):
		metrics, err := h.analytics.SalesMetrics(ctx.Context)
		if err != nil {
			h.logger.Warn("predefined sales metrics failed", "error", err)
			return Result{}, false
		}
		return Result{
			Status:  StatusSuccess,
			Message: "Sales metrics retrieved successfully",
			Data:    map[string]any{"rows": []map[string]any{metrics}, "rowCount": 1},
		}, true

	case strings.Contains(lower, "top") && strings.Contains(lower, "product"):
		limit := 10
		if m := firstNumber.FindString(query); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				limit = n
			}
		}
		rows, err := h.analytics.TopProducts(ctx.Context, limit)
		if err != nil {
			h.logger.Warn("predefined top products failed", "error", err)
			return Result{}, false
		}
		return Result{
			Status:  StatusSuccess,
			Message: fmt.Sprintf("Top %d products by revenue", limit),
			Data:    map[string]any{"rows": rows, "rowCount": len(rows)},
		}, true

	case strings.Contains(lower, "user") &&
		(strings.Contains(lower, "growth") || strings.Contains(lower, "signup")):
		rows, err := h.analytics.UserGrowth(ctx.Context)
		if err != nil {
			h.logger.Warn("predefined user growth failed", "error", err)
			return Result{}, false
		}
		return Result{
			Status:  StatusSuccess,
			Message: "User growth data retrieved",
			Data:    map[string]any{"rows": rows, "rowCount": len(rows)},
		}, true
	}

	return Result{}, false
}
