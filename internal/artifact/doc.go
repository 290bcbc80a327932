// Package artifact implements the artifact-delta protocol: the typed delta
// envelopes document-authoring tools emit while a turn streams, the reducer
// that folds an ordered delta sequence into a single in-flight artifact, and
// the persistence of finished documents and their suggestions.
//
// Two document representations coexist on purpose:
//
//   - Artifact is the in-flight, client-visible document built by the Reducer
//     (id, kind, title, accumulated content, streaming status).
//   - Document is a persisted, versioned row owned by a user.
//
// The Reducer is a single-writer state machine over an immutable delta
// sequence with an external cursor; replaying an already-consumed buffer
// applies nothing. That replay-safety is the central correctness property of
// this package and is what the reducer tests pin down.
//
// Thread safety: a Reducer belongs to one consumer and is not safe for
// concurrent use. Store is safe for concurrent access.
package artifact
