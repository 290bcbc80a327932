package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/fathom0/fathom/internal/artifact"
)

// CreateDocumentInput defines input for the createDocument tool.
type CreateDocumentInput struct {
	Title string `json:"title" jsonschema_description:"Title of the document to create"`
	Kind  string `json:"kind" jsonschema_description:"Kind of document: text, code, sheet, or image"`
}

// UpdateDocumentInput defines input for the updateDocument tool.
type UpdateDocumentInput struct {
	ID          string `json:"id" jsonschema_description:"ID of the document to update"`
	Description string `json:"description" jsonschema_description:"Description of the changes to make"`
}

// RequestSuggestionsInput defines input for the requestSuggestions tool.
type RequestSuggestionsInput struct {
	DocumentID string `json:"documentId" jsonschema_description:"ID of the document to request edit suggestions for"`
}

// CreateDocument generates a new document and streams it to the client
// while the chat turn is still running.
//
// The metadata deltas (kind, id, title, clear) go out before generation
// starts so the client can open the artifact panel immediately. The returned
// Result carries only an acknowledgement: the content already reached the
// client through the delta channel, and echoing it into the model transcript
// would double the token cost of every artifact turn.
func (h *Handler) CreateDocument(ctx *ai.ToolContext, input CreateDocumentInput) (Result, error) {
	kind := artifact.Kind(input.Kind)
	if !artifact.ValidKind(kind) {
		return errorResult(ErrCodeValidation,
			fmt.Sprintf("invalid document kind %q: must be text, code, sheet, or image", input.Kind)), nil
	}
	if input.Title == "" {
		return errorResult(ErrCodeValidation, "title is required"), nil
	}

	id := uuid.New()
	emitter := EmitterFromContext(ctx.Context)

	if err := emitAll(emitter,
		artifact.Delta{Type: artifact.DeltaKind, Content: string(kind)},
		artifact.Delta{Type: artifact.DeltaID, Content: id.String()},
		artifact.Delta{Type: artifact.DeltaTitle, Content: input.Title},
		artifact.Delta{Type: artifact.DeltaClear},
	); err != nil {
		return errorResult(ErrCodeExecution, fmt.Sprintf("stream write failed: %v", err)), nil
	}

	content, err := h.gen.StreamDocument(ctx.Context, kind, input.Title, "", "", func(text string) error {
		return emit(emitter, artifact.Delta{Type: contentDelta(kind), Content: text})
	})
	if err != nil {
		h.logger.Error("document generation failed", "document_id", id, "kind", kind, "error", err)
		return errorResult(ErrCodeExecution, fmt.Sprintf("document generation failed: %v", err)), nil
	}

	if err := emit(emitter, artifact.Delta{Type: artifact.DeltaFinish}); err != nil {
		return errorResult(ErrCodeExecution, fmt.Sprintf("stream write failed: %v", err)), nil
	}

	h.saveDocument(ctx, &artifact.Document{
		ID:      id,
		UserID:  UserIDFromContext(ctx.Context),
		Title:   input.Title,
		Kind:    kind,
		Content: content,
	})

	return Result{
		Status:  StatusSuccess,
		Message: "A document was created and is now visible to the user.",
		Data: map[string]any{
			"id":    id.String(),
			"title": input.Title,
			"kind":  string(kind),
		},
	}, nil
}

// UpdateDocument regenerates an existing document per the model's
// instructions and streams the replacement content.
func (h *Handler) UpdateDocument(ctx *ai.ToolContext, input UpdateDocumentInput) (Result, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return errorResult(ErrCodeValidation, fmt.Sprintf("invalid document id %q", input.ID)), nil
	}

	doc, err := h.loadDocument(ctx, id)
	if err != nil || doc.UserID != UserIDFromContext(ctx.Context) {
		// Foreign documents are indistinguishable from missing ones: the model
		// can echo ids from conversation context it should not act on.
		return errorResult(ErrCodeNotFound, fmt.Sprintf("document %s not found", id)), nil
	}

	emitter := EmitterFromContext(ctx.Context)
	if err := emit(emitter, artifact.Delta{Type: artifact.DeltaClear}); err != nil {
		return errorResult(ErrCodeExecution, fmt.Sprintf("stream write failed: %v", err)), nil
	}

	content, err := h.gen.StreamDocument(ctx.Context, doc.Kind, doc.Title, doc.Content, input.Description, func(text string) error {
		return emit(emitter, artifact.Delta{Type: contentDelta(doc.Kind), Content: text})
	})
	if err != nil {
		h.logger.Error("document update failed", "document_id", id, "error", err)
		return errorResult(ErrCodeExecution, fmt.Sprintf("document update failed: %v", err)), nil
	}

	if err := emit(emitter, artifact.Delta{Type: artifact.DeltaFinish}); err != nil {
		return errorResult(ErrCodeExecution, fmt.Sprintf("stream write failed: %v", err)), nil
	}

	inserted, deleted := diffStats(doc.Content, content)
	h.saveDocument(ctx, &artifact.Document{
		ID:      id,
		UserID:  doc.UserID,
		Title:   doc.Title,
		Kind:    doc.Kind,
		Content: content,
	})

	return Result{
		Status:  StatusSuccess,
		Message: "The document has been updated successfully.",
		Data: map[string]any{
			"id":           id.String(),
			"title":        doc.Title,
			"kind":         string(doc.Kind),
			"charsAdded":   inserted,
			"charsRemoved": deleted,
		},
	}, nil
}

// RequestSuggestions asks the model for edit suggestions on an existing
// document, streams each one to the client, and persists the batch.
func (h *Handler) RequestSuggestions(ctx *ai.ToolContext, input RequestSuggestionsInput) (Result, error) {
	id, err := uuid.Parse(input.DocumentID)
	if err != nil {
		return errorResult(ErrCodeValidation, fmt.Sprintf("invalid document id %q", input.DocumentID)), nil
	}

	userID := UserIDFromContext(ctx.Context)
	doc, err := h.loadDocument(ctx, id)
	if err != nil || doc.UserID != userID {
		return errorResult(ErrCodeNotFound, fmt.Sprintf("document %s not found", id)), nil
	}

	edits, err := h.gen.SuggestEdits(ctx.Context, doc.Content)
	if err != nil {
		h.logger.Error("suggestion generation failed", "document_id", id, "error", err)
		return errorResult(ErrCodeExecution, fmt.Sprintf("suggestion generation failed: %v", err)), nil
	}

	emitter := EmitterFromContext(ctx.Context)

	suggestions := make([]*artifact.Suggestion, 0, len(edits))
	for _, edit := range edits {
		sg := &artifact.Suggestion{
			ID:            uuid.New(),
			DocumentID:    id,
			UserID:        userID,
			OriginalText:  edit.OriginalText,
			SuggestedText: edit.SuggestedText,
			Description:   edit.Description,
		}
		suggestions = append(suggestions, sg)

		if err := emit(emitter, artifact.Delta{Type: artifact.DeltaSuggestion, Suggestion: sg}); err != nil {
			return errorResult(ErrCodeExecution, fmt.Sprintf("stream write failed: %v", err)), nil
		}
	}

	if h.documents != nil && len(suggestions) > 0 {
		if err := h.documents.SaveSuggestions(ctx.Context, suggestions); err != nil {
			h.logger.Error("failed to persist suggestions", "document_id", id, "error", err)
		}
	}

	return Result{
		Status:  StatusSuccess,
		Message: "Suggestions have been added to the document.",
		Data: map[string]any{
			"id":    id.String(),
			"title": doc.Title,
			"kind":  string(doc.Kind),
			"count": len(suggestions),
		},
	}, nil
}

// loadDocument fetches the latest version of a document.
func (h *Handler) loadDocument(ctx *ai.ToolContext, id uuid.UUID) (*artifact.Document, error) {
	if h.documents == nil {
		return nil, fmt.Errorf("document store unavailable")
	}
	return h.documents.Document(ctx.Context, id)
}

// saveDocument persists a document version. Persistence failures are logged
// but never surfaced: the content already reached the client.
func (h *Handler) saveDocument(ctx *ai.ToolContext, d *artifact.Document) {
	if h.documents == nil {
		return
	}
	if err := h.documents.SaveDocument(ctx.Context, d); err != nil {
		h.logger.Error("failed to persist document", "document_id", d.ID, "error", err)
	}
}

// contentDelta maps a document kind to its streaming delta type.
func contentDelta(kind artifact.Kind) artifact.DeltaType {
	switch kind {
	case artifact.KindCode:
		return artifact.DeltaCode
	case artifact.KindSheet:
		return artifact.DeltaSheet
	case artifact.KindImage:
		return artifact.DeltaImage
	default:
		return artifact.DeltaText
	}
}

// emit writes one delta if an emitter is bound. Non-streaming callers have
// no emitter and the write degrades to a no-op.
func emit(emitter Emitter, d artifact.Delta) error {
	if emitter == nil {
		return nil
	}
	return emitter.WriteDelta(d)
}

// emitAll writes a sequence of deltas, stopping at the first failure.
func emitAll(emitter Emitter, deltas ...artifact.Delta) error {
	for _, d := range deltas {
		if err := emit(emitter, d); err != nil {
			return err
		}
	}
	return nil
}

// diffStats returns the number of characters inserted and deleted between
// two document versions.
func diffStats(before, after string) (inserted, deleted int) {
	dmp := diffmatchpatch.New()
	for _, d := range dmp.DiffMain(before, after, false) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len(d.Text)
		case diffmatchpatch.DiffDelete:
			deleted += len(d.Text)
		}
	}
	return inserted, deleted
}
