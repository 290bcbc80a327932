// Package tools implements the model-callable tools: weather, web search,
// financial data, analytics queries, and the document tools that stream
// artifacts to the client mid-generation.
//
// # Result envelope
//
// Every tool returns a Result and a nil Go error. Failures become
// StatusError Results with a structured Error the model can read and
// correct; a Go error would abort the generation loop and kill the client
// stream, so tools reserve it for programmer mistakes only.
//
// # Streaming
//
// Document tools emit artifact deltas through an Emitter bound to the
// request context. When no emitter is bound (non-streaming callers, tests)
// emission degrades to a no-op and the tools still return their results.
package tools
