package security

import (
	"errors"
	"fmt"
	"strings"
)

// Query validation sentinel errors, checkable with errors.Is().
var (
	// ErrEmptyQuery indicates the query is empty or whitespace.
	ErrEmptyQuery = errors.New("empty query")

	// ErrStatementNotAllowed indicates the statement type is outside the
	// allow-list.
	ErrStatementNotAllowed = errors.New("statement type not allowed")

	// ErrForbiddenKeyword indicates the query contains a schema-mutating or
	// privilege keyword.
	ErrForbiddenKeyword = errors.New("forbidden keyword")

	// ErrMissingWhere indicates a DELETE or UPDATE without a WHERE clause.
	ErrMissingWhere = errors.New("missing WHERE clause")

	// ErrBulkDelete indicates an unqualified DELETE against a protected
	// analytics table.
	ErrBulkDelete = errors.New("bulk delete on protected table")
)

// allowedStatements are the statement types the gate permits, matched against
// the first token of the normalized query.
var allowedStatements = []string{"SELECT", "INSERT", "UPDATE", "DELETE"}

// forbiddenKeywords are schema-mutating or privilege operations, matched as
// substrings of the normalized query. Substring matching is deliberately
// coarse: the gate prefers false rejections over false acceptances.
var forbiddenKeywords = []string{
	"DROP",
	"TRUNCATE",
	"ALTER TABLE",
	"CREATE INDEX",
	"DROP INDEX",
	"GRANT",
	"REVOKE",
}

// protectedTables are the analytics tables guarded against unqualified bulk
// deletes.
var protectedTables = []string{
	"ANALYTICS_USERS",
	"SALES",
	"USER_EVENTS",
	"PRODUCT_PERFORMANCE",
	"MARKETING_CAMPAIGNS",
}

// ValidateQuery decides whether a SQL query may run against the analytics
// database. It is a textual heuristic over the normalized (trimmed,
// uppercased) query, not a SQL parser: string literals are not excluded from
// keyword matching, so a query mentioning a forbidden word inside a literal
// is rejected too. That trade-off is intentional for an LLM-facing gate.
//
// Rules, in order:
//  1. The query must be non-empty.
//  2. The first token must be SELECT, INSERT, UPDATE, or DELETE. The error
//     names the allowed set, so a DROP or GRANT fails here with a reason the
//     model can act on, not with a keyword complaint.
//  3. DELETE and UPDATE must carry a WHERE clause.
//  4. No forbidden keyword may appear anywhere in the query. This catches
//     schema mutation smuggled behind an allowed first token, such as a
//     stacked "SELECT 1; DROP TABLE sales".
//  5. An unqualified "DELETE FROM <table>" against a protected analytics
//     table is rejected even though rule 3 already catches it; the dedicated
//     error names the table for the model to relay.
//
// Returns nil when the query may run.
func ValidateQuery(query string) error {
	normalized := strings.ToUpper(strings.TrimSpace(query))
	if normalized == "" {
		return ErrEmptyQuery
	}

	statement := firstToken(normalized)
	allowed := false
	for _, s := range allowedStatements {
		if statement == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: only SELECT, INSERT, UPDATE and DELETE queries are permitted", ErrStatementNotAllowed)
	}

	if statement == "DELETE" || statement == "UPDATE" {
		if !strings.Contains(normalized, "WHERE") {
			return fmt.Errorf("%w: %s requires a WHERE clause", ErrMissingWhere, statement)
		}
	}

	for _, keyword := range forbiddenKeywords {
		if strings.Contains(normalized, keyword) {
			return fmt.Errorf("%w: %s", ErrForbiddenKeyword, keyword)
		}
	}

	if statement == "DELETE" {
		if table, ok := unqualifiedDeleteTarget(normalized); ok {
			return fmt.Errorf("%w: %s", ErrBulkDelete, strings.ToLower(table))
		}
	}

	return nil
}

// firstToken returns the first whitespace-delimited token of s.
func firstToken(s string) string {
	if i := strings.IndexAny(s, " \t\n\r"); i >= 0 {
		return s[:i]
	}
	return s
}

// unqualifiedDeleteTarget reports whether the normalized query is a bare
// "DELETE FROM <table>" (optionally terminated with a semicolon) against a
// protected table. A DELETE with anything after the table name, such as a
// WHERE clause, is not a bulk delete.
func unqualifiedDeleteTarget(normalized string) (string, bool) {
	rest, ok := strings.CutPrefix(normalized, "DELETE")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	rest, ok = strings.CutPrefix(rest, "FROM")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), ";"))

	for _, table := range protectedTables {
		if rest == table {
			return table, true
		}
	}
	return "", false
}

// EnsureRowLimit appends a LIMIT clause to a SELECT that lacks one, capping
// result size at max rows. Non-SELECT statements and queries that already
// mention LIMIT pass through unchanged. Applied by the execution layer after
// the gate, never before it.
func EnsureRowLimit(query string, max int) string {
	trimmed := strings.TrimSpace(query)
	normalized := strings.ToUpper(trimmed)
	if !strings.HasPrefix(normalized, "SELECT") {
		return trimmed
	}
	if strings.Contains(normalized, "LIMIT") {
		return trimmed
	}
	trimmed = strings.TrimSuffix(trimmed, ";")
	return fmt.Sprintf("%s LIMIT %d", trimmed, max)
}
