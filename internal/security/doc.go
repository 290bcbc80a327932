// Package security gates SQL queries the language model proposes against the
// analytics database.
//
// # Overview
//
// The model authors free-form SQL; the gate decides whether a statement may
// run at all. It prevents:
//   - Schema mutation and privilege changes (DROP, TRUNCATE, ALTER TABLE,
//     CREATE/DROP INDEX, GRANT, REVOKE)
//   - Unscoped data destruction (DELETE or UPDATE without a WHERE clause)
//   - Bulk deletes against the protected analytics tables
//
// # Usage
//
//	if err := security.ValidateQuery(query); err != nil {
//	    return toolError(err) // relayed to the model, never executed
//	}
//	query = security.EnsureRowLimit(query, maxRows)
//
// # Design Philosophy
//
//   - Fail-secure: when in doubt, deny. The gate matches keywords as plain
//     substrings of the normalized statement, so a forbidden word inside a
//     string literal is rejected too. False rejections are acceptable; false
//     acceptances are not.
//   - Allow-list first: only SELECT, INSERT, UPDATE and DELETE statements are
//     considered at all.
//   - Sentinel errors: callers branch on the reason with errors.Is and relay
//     the message to the model as a structured tool error.
//
// The gate is a textual heuristic, not a SQL parser. A statement-level parser
// is the upgrade path if the heuristic's false-rejection rate becomes a
// problem; the allow/deny semantics above must survive that change.
package security
