// Package source defines the entity-source contract the index is built from
// and the tagged metadata union that travels through the ranking engine.
// The engine never inspects a Ref; only the orchestrator pattern-matches on
// it when bucketing results.
package source

import (
	"context"
	"time"
)

// Kind discriminates the entity behind an indexed document.
type Kind string

const (
	KindAgent    Kind = "agent"
	KindMessage  Kind = "message"
	KindFile     Kind = "file"
	KindArticle  Kind = "article"
	KindCreation Kind = "creation"
)

// Agent is an assistant/bot profile.
type Agent struct {
	ID          string
	Name        string
	Description string
	UpdatedAt   time.Time
}

// Message is a single chat message within a conversation.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	CreatedAt      time.Time
}

// File is an uploaded file with an extracted text summary.
type File struct {
	ID        string
	Name      string
	Summary   string
	UpdatedAt time.Time
}

// Article is a published knowledge-base article.
type Article struct {
	ID          string
	Title       string
	Excerpt     string
	PublishedAt time.Time
}

// Creation is a user-generated creation (image/video prompt output).
type Creation struct {
	ID        string
	Title     string
	Prompt    string
	CreatedAt time.Time
}

// Ref is the tagged union attached to every indexed document: exactly the
// field matching Kind is non-nil.
type Ref struct {
	Kind     Kind
	Agent    *Agent
	Message  *Message
	File     *File
	Article  *Article
	Creation *Creation
}

// Item is one normalized entity ready for indexing: a stable id, the free
// text to index, and the typed back-reference.
type Item struct {
	ID   string
	Text string
	Ref  Ref
}

// Source lists a snapshot of one entity collection. Implementations return
// every entity on each call; the orchestrator rebuilds wholesale rather than
// diffing.
type Source interface {
	Name() string
	List(ctx context.Context) ([]Item, error)
}
