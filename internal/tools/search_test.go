package tools

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fathom0/fathom/internal/log"
)

const searchResultsPage = `<!DOCTYPE html>
<html><body>
<div class="results">
  <div class="result">
    <h2><a class="result__a" href="/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F">Go Documentation</a></h2>
    <a class="result__snippet">Official Go documentation and guides.</a>
  </div>
  <div class="result">
    <h2><a class="result__a" href="https://go.dev/blog/">The Go Blog</a></h2>
    <a class="result__snippet">News from the Go project.</a>
  </div>
  <div class="result">
    <h2><a class="result__a" href=""></a></h2>
  </div>
</div>
</body></html>`

func newSearchHandler(t *testing.T, handler http.HandlerFunc) (*Handler, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	h := NewHandler(Config{SearchBaseURL: srv.URL}, srv.Client(), nil, nil, nil, log.NewNop())
	return h, srv
}

func TestWebSearchParsesResults(t *testing.T) {
	var gotQuery, gotRecency string
	h, _ := newSearchHandler(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotRecency = r.URL.Query().Get("df")
		_, _ = w.Write([]byte(searchResultsPage))
	})

	result, err := h.WebSearch(toolCtx(), WebSearchInput{Query: "golang documentation"})
	if err != nil {
		t.Fatalf("WebSearch() error = %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q (error: %+v)", result.Status, StatusSuccess, result.Error)
	}
	if gotQuery != "golang documentation" {
		t.Errorf("upstream query = %q, want %q", gotQuery, "golang documentation")
	}
	if gotRecency != "" {
		t.Errorf("non-news query set recency filter %q", gotRecency)
	}

	results, ok := result.Data["results"].([]searchResult)
	if !ok {
		t.Fatalf("Data[results] has type %T", result.Data["results"])
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 (empty-title entries skipped)", len(results))
	}
	if results[0].Title != "Go Documentation" {
		t.Errorf("results[0].Title = %q", results[0].Title)
	}
	if results[0].URL != "https://go.dev/doc/" {
		t.Errorf("results[0].URL = %q, want unwrapped redirect target", results[0].URL)
	}
	if results[0].Snippet != "Official Go documentation and guides." {
		t.Errorf("results[0].Snippet = %q", results[0].Snippet)
	}
	if results[1].URL != "https://go.dev/blog/" {
		t.Errorf("results[1].URL = %q, want direct link unchanged", results[1].URL)
	}
}

func TestWebSearchNewsQuerySetsRecencyFilter(t *testing.T) {
	tests := []struct {
		query    string
		wantNews bool
	}{
		{"latest golang release", true},
		{"AI news this week", true},
		{"What happened TODAY", true},
		{"golang generics tutorial", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var gotRecency string
			h, _ := newSearchHandler(t, func(w http.ResponseWriter, r *http.Request) {
				gotRecency = r.URL.Query().Get("df")
				_, _ = w.Write([]byte(searchResultsPage))
			})

			if _, err := h.WebSearch(toolCtx(), WebSearchInput{Query: tt.query}); err != nil {
				t.Fatalf("WebSearch() error = %v", err)
			}

			if tt.wantNews && gotRecency != "w" {
				t.Errorf("df = %q, want %q for news query", gotRecency, "w")
			}
			if !tt.wantNews && gotRecency != "" {
				t.Errorf("df = %q, want empty for non-news query", gotRecency)
			}
		})
	}
}

func TestWebSearchNoResults(t *testing.T) {
	h, _ := newSearchHandler(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><div class=\"no-results\">Nothing</div></body></html>"))
	})

	result, err := h.WebSearch(toolCtx(), WebSearchInput{Query: "xyzzy"})
	if err != nil {
		t.Fatalf("WebSearch() error = %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q: empty results are not an error", result.Status, StatusSuccess)
	}

	results := result.Data["results"].([]searchResult)
	if len(results) != 1 || results[0].Title != "No results found" {
		t.Errorf("results = %+v, want single placeholder entry", results)
	}
}

func TestWebSearchUpstreamFailure(t *testing.T) {
	h, _ := newSearchHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	result, err := h.WebSearch(toolCtx(), WebSearchInput{Query: "golang"})
	if err != nil {
		t.Fatalf("WebSearch() error = %v, want nil: tool failures stay in the Result", err)
	}
	if result.Status != StatusError {
		t.Fatalf("Status = %q, want %q", result.Status, StatusError)
	}
	if result.Error == nil || result.Error.Code != ErrCodeNetwork {
		t.Errorf("Error = %+v, want code %q", result.Error, ErrCodeNetwork)
	}
}

func TestWebSearchEmptyQuery(t *testing.T) {
	h := NewHandler(Config{}, nil, nil, nil, nil, log.NewNop())

	result, err := h.WebSearch(toolCtx(), WebSearchInput{Query: "   "})
	if err != nil {
		t.Fatalf("WebSearch() error = %v", err)
	}
	if result.Error == nil || result.Error.Code != ErrCodeValidation {
		t.Errorf("Error = %+v, want code %q", result.Error, ErrCodeValidation)
	}
}
