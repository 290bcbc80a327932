package artifact

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the artifact content kind.
type Kind string

const (
	KindText  Kind = "text"
	KindCode  Kind = "code"
	KindSheet Kind = "sheet"
	KindImage Kind = "image"
)

// Status is the lifecycle status of an in-flight artifact.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStreaming Status = "streaming"
)

// Artifact is the in-flight, client-visible document the Reducer builds from
// a delta stream. Exactly one Artifact is current per chat session at a time.
//
// ID is a string rather than uuid.UUID because the producer assigns it via an
// `id` delta and the zero document carries the placeholder id before one
// arrives.
type Artifact struct {
	ID      string
	Kind    Kind
	Title   string
	Content string
	Status  Status
}

// Document is a persisted artifact version owned by a user. Updates insert a
// new version rather than overwrite; reads return the highest version.
type Document struct {
	ID        uuid.UUID
	UserID    string
	Title     string
	Kind      Kind
	Content   string
	Version   int32
	CreatedAt time.Time
}

// ValidKind reports whether k is one of the four artifact kinds.
func ValidKind(k Kind) bool {
	switch k {
	case KindText, KindCode, KindSheet, KindImage:
		return true
	}
	return false
}
