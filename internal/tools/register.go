package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/genkit"
)

// RegisterAll registers every tool with Genkit.
//
// The handler carries all dependencies; the Genkit definitions below are
// thin adapters so the business logic stays independently testable. The
// names here must stay in sync with toolNames in registry.go.
func RegisterAll(g *genkit.Genkit, h *Handler) error {
	if g == nil {
		return fmt.Errorf("RegisterAll: genkit instance is required")
	}
	if h == nil {
		return fmt.Errorf("RegisterAll: handler is required")
	}

	genkit.DefineTool(g, "getWeather",
		"Get the current weather and forecast for a location given its latitude and longitude.",
		h.GetWeather)

	genkit.DefineTool(g, "createDocument",
		"Create a document for writing, coding, or spreadsheet tasks. The document streams to the user as it is generated. Kinds: text, code, sheet, image.",
		h.CreateDocument)

	genkit.DefineTool(g, "updateDocument",
		"Update an existing document per the given description of changes. The updated content streams to the user.",
		h.UpdateDocument)

	genkit.DefineTool(g, "requestSuggestions",
		"Request edit suggestions for an existing document. Suggestions stream to the user and are saved for later review.",
		h.RequestSuggestions)

	genkit.DefineTool(g, "getFinance",
		"Get financial data about stocks, cryptocurrencies, or market overview. Data types: quote (latest price), overview (company info), news, or market-heatmap.",
		h.GetFinance)

	genkit.DefineTool(g, "queryDatabase",
		`Query the analytics database for business insights: sales performance, user growth, product analytics, marketing campaigns, and user events.
Available tables: analytics_users, sales, user_events, product_performance, marketing_campaigns.
Safety: only SELECT, INSERT, UPDATE and qualified DELETE are allowed; DELETE and UPDATE require WHERE clauses; no DDL; results are capped at 100 rows.`,
		h.QueryDatabase)

	genkit.DefineTool(g, "webSearch",
		"Search the web for information. News-related queries are restricted to recent results.",
		h.WebSearch)

	return nil
}
