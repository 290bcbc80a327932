package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fathom0/fathom/internal/artifact"
)

// documentJSON is the wire shape of a persisted document version.
type documentJSON struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Kind      artifact.Kind `json:"kind"`
	Content   string        `json:"content,omitempty"`
	Version   int32         `json:"version"`
	CreatedAt time.Time     `json:"createdAt"`
}

// handleDocuments lists the user's documents at their latest version.
// Content is omitted from listings; fetch a single document for the body.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(w, r)
	if userID == "" {
		return
	}

	limit, offset := listParams(r)
	docs, err := s.cfg.Documents.DocumentsByUser(r.Context(), userID, limit, offset)
	if err != nil {
		s.logger.Error("list documents", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to list documents")
		return
	}

	out := make([]documentJSON, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentJSON{
			ID:        d.ID.String(),
			Title:     d.Title,
			Kind:      d.Kind,
			Version:   d.Version,
			CreatedAt: d.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

// handleDocument returns the latest version of one document, including
// content.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(w, r)
	if userID == "" {
		return
	}

	doc, ok := s.ownedDocument(w, r, userID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, documentJSON{
		ID:        doc.ID.String(),
		Title:     doc.Title,
		Kind:      doc.Kind,
		Content:   doc.Content,
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
	})
}

// handleDeleteDocument removes all versions of a document and its
// suggestions.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(w, r)
	if userID == "" {
		return
	}

	doc, ok := s.ownedDocument(w, r, userID)
	if !ok {
		return
	}

	if err := s.cfg.Documents.DeleteDocument(r.Context(), doc.ID); err != nil {
		s.logger.Error("delete document", "document_id", doc.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to delete document")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": doc.ID.String()})
}

// handleSuggestions lists pending and resolved suggestions for a document.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(w, r)
	if userID == "" {
		return
	}

	documentID, err := uuid.Parse(r.URL.Query().Get("documentId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid document id")
		return
	}

	// Ownership rides on the document, not the suggestion rows.
	doc, err := s.cfg.Documents.Document(r.Context(), documentID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Document not found")
		return
	}
	if doc.UserID != userID {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Document belongs to another user")
		return
	}

	suggestions, err := s.cfg.Documents.Suggestions(r.Context(), documentID)
	if err != nil {
		s.logger.Error("list suggestions", "document_id", documentID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to list suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []*artifact.Suggestion{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// handleResolveSuggestion marks one suggestion as applied or dismissed.
// Resolution is idempotent; the suggestion id is unguessable, so the check
// here is authentication, not per-row ownership.
func (s *Server) handleResolveSuggestion(w http.ResponseWriter, r *http.Request) {
	if s.authenticate(w, r) == "" {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid suggestion id")
		return
	}

	if err := s.cfg.Documents.ResolveSuggestion(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Suggestion not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved", "id": id.String()})
}

// ownedDocument loads the document named by the id query parameter and
// enforces ownership, writing the response on failure.
func (s *Server) ownedDocument(w http.ResponseWriter, r *http.Request, userID string) (*artifact.Document, bool) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid document id")
		return nil, false
	}

	doc, err := s.cfg.Documents.Document(r.Context(), id)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Document not found")
			return nil, false
		}
		s.logger.Error("load document", "document_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to load document")
		return nil, false
	}
	if doc.UserID != userID {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Document belongs to another user")
		return nil, false
	}
	return doc, true
}
