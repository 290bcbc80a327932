package agent

import (
	"strings"

	"github.com/firebase/genkit/go/ai"
)

// sanitizeResponseMessages strips the noise the agentic loop leaves in
// assistant messages before they are persisted: empty text parts, and tool
// requests that never received a response (the loop was cut off mid-call).
// Messages left with no content are dropped entirely.
func sanitizeResponseMessages(messages []*ai.Message) []*ai.Message {
	answered := answeredToolRefs(messages)

	var out []*ai.Message
	for _, msg := range messages {
		var parts []*ai.Part
		for _, p := range msg.Content {
			switch {
			case p.IsText():
				if strings.TrimSpace(p.Text) == "" {
					continue
				}
			case p.ToolRequest != nil:
				if !answered[toolRefKey(p.ToolRequest.Name, p.ToolRequest.Ref)] {
					continue
				}
			}
			parts = append(parts, p)
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, &ai.Message{
			Role:     msg.Role,
			Content:  parts,
			Metadata: msg.Metadata,
		})
	}
	return out
}

// answeredToolRefs collects the tool requests that have a matching response
// anywhere in the transcript.
func answeredToolRefs(messages []*ai.Message) map[string]bool {
	answered := make(map[string]bool)
	for _, msg := range messages {
		for _, p := range msg.Content {
			if p.ToolResponse != nil {
				answered[toolRefKey(p.ToolResponse.Name, p.ToolResponse.Ref)] = true
			}
		}
	}
	return answered
}

func toolRefKey(name, ref string) string {
	return name + "\x00" + ref
}
