package tools

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/firebase/genkit/go/ai"
)

// WebSearchInput defines input for the webSearch tool.
type WebSearchInput struct {
	Query string `json:"query" jsonschema_description:"The search query to look up on the web"`
}

const maxSearchResults = 5

// newsPattern detects queries about news or current events, which get the
// recency-filtered search.
var newsPattern = regexp.MustCompile(`(?i)news|latest|recent|update|today|yesterday|this week|this month|current`)

// searchResult is one entry returned to the model.
type searchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// WebSearch queries the DuckDuckGo HTML endpoint and scrapes the result
// list. News-like queries are restricted to the past week.
//
// An empty result set is not an error: the model gets a placeholder entry
// telling it to rephrase, matching how it handles ordinary results.
func (h *Handler) WebSearch(ctx *ai.ToolContext, input WebSearchInput) (Result, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return errorResult(ErrCodeValidation, "query must not be empty"), nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("kp", "1") // strict safe search
	if newsPattern.MatchString(query) {
		params.Set("df", "w")
	}

	results, err := h.scrapeSearch(ctx, h.cfg.SearchBaseURL+"?"+params.Encode())
	if err != nil {
		h.logger.Error("web search failed", "query", query, "error", err)
		return errorResult(ErrCodeNetwork, fmt.Sprintf("web search failed: %v", err)), nil
	}

	if len(results) == 0 {
		results = []searchResult{{
			Title:   "No results found",
			Snippet: "No search results were found for your query. Please try a different search term.",
		}}
	}

	return Result{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("%d search results", len(results)),
		Data:    map[string]any{"query": query, "results": results},
	}, nil
}

// scrapeSearch fetches the results page and extracts title, snippet and
// target URL from each organic result.
func (h *Handler) scrapeSearch(ctx *ai.ToolContext, rawURL string) ([]searchResult, error) {
	req, err := http.NewRequestWithContext(ctx.Context, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	// The HTML endpoint rejects requests without a browser-ish UA.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var results []searchResult
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}

		href, _ := link.Attr("href")
		results = append(results, searchResult{
			Title:   title,
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
			URL:     resolveRedirect(href),
		})
		return len(results) < maxSearchResults
	})

	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links to the
// target URL. Non-redirect links pass through unchanged.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
