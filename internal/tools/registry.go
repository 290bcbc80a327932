package tools

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// toolNames is the single source of truth for registered tool names.
var toolNames = []string{
	"getWeather",
	"createDocument",
	"updateDocument",
	"requestSuggestions",
	"getFinance",
	"queryDatabase",
	"webSearch",
}

// ToolNames returns all registered tool names.
func ToolNames() []string {
	return toolNames
}

// Registry resolves the tool subset for a model.
//
// Registry is stateless and thread-safe: it performs fresh lookups on each
// call to Active(), so the refs are always current.
type Registry struct {
	g              *genkit.Genkit
	reasoningModel string
}

// NewRegistry creates a tool registry. reasoningModel names the model that
// runs with an empty toolset.
func NewRegistry(g *genkit.Genkit, reasoningModel string) *Registry {
	return &Registry{g: g, reasoningModel: reasoningModel}
}

// Active returns the tool refs available to the given model.
//
// The reasoning model gets no tools: its chain-of-thought output interleaves
// badly with tool transcripts, so it runs generation-only. Every other model
// gets the full set.
func (r *Registry) Active(model string) []ai.ToolRef {
	if model == r.reasoningModel {
		return nil
	}

	refs := make([]ai.ToolRef, 0, len(toolNames))
	for _, name := range toolNames {
		if tool := genkit.LookupTool(r.g, name); tool != nil {
			refs = append(refs, tool)
		}
	}
	return refs
}

// Count returns the number of tools available to the given model.
func (r *Registry) Count(model string) int {
	return len(r.Active(model))
}
