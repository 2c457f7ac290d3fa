package source

import (
	"context"
	"database/sql"
	"fmt"
)

// Document ids are prefixed per kind so ids stay unique across collections.

// AgentSource lists agent profiles from PostgreSQL.
type AgentSource struct {
	db *sql.DB
}

// NewAgentSource creates an AgentSource backed by db.
func NewAgentSource(db *sql.DB) *AgentSource {
	return &AgentSource{db: db}
}

func (s *AgentSource) Name() string { return "agents" }

func (s *AgentSource) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), updated_at FROM agents`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning agent row: %w", err)
		}
		items = append(items, Item{
			ID:   "agent:" + a.ID,
			Text: a.Name + " " + a.Description,
			Ref:  Ref{Kind: KindAgent, Agent: &a},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	return items, nil
}

// MessageSource lists chat messages across all conversations, flattened into
// one sequence.
type MessageSource struct {
	db *sql.DB
}

// NewMessageSource creates a MessageSource backed by db.
func NewMessageSource(db *sql.DB) *MessageSource {
	return &MessageSource{db: db}
}

func (s *MessageSource) Name() string { return "messages" }

func (s *MessageSource) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at
		 FROM messages ORDER BY conversation_id, created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		items = append(items, Item{
			ID:   "message:" + m.ID,
			Text: m.Content,
			Ref:  Ref{Kind: KindMessage, Message: &m},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return items, nil
}

// FileSource lists uploaded files with their extracted summaries.
type FileSource struct {
	db *sql.DB
}

// NewFileSource creates a FileSource backed by db.
func NewFileSource(db *sql.DB) *FileSource {
	return &FileSource{db: db}
}

func (s *FileSource) Name() string { return "files" }

func (s *FileSource) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(summary, ''), updated_at FROM files`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Name, &f.Summary, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning file row: %w", err)
		}
		items = append(items, Item{
			ID:   "file:" + f.ID,
			Text: f.Name + " " + f.Summary,
			Ref:  Ref{Kind: KindFile, File: &f},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return items, nil
}

// ArticleSource lists published articles.
type ArticleSource struct {
	db *sql.DB
}

// NewArticleSource creates an ArticleSource backed by db.
func NewArticleSource(db *sql.DB) *ArticleSource {
	return &ArticleSource{db: db}
}

func (s *ArticleSource) Name() string { return "articles" }

func (s *ArticleSource) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, COALESCE(excerpt, ''), published_at FROM articles`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Excerpt, &a.PublishedAt); err != nil {
			return nil, fmt.Errorf("scanning article row: %w", err)
		}
		items = append(items, Item{
			ID:   "article:" + a.ID,
			Text: a.Title + " " + a.Excerpt,
			Ref:  Ref{Kind: KindArticle, Article: &a},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return items, nil
}

// CreationSource lists user creations.
type CreationSource struct {
	db *sql.DB
}

// NewCreationSource creates a CreationSource backed by db.
func NewCreationSource(db *sql.DB) *CreationSource {
	return &CreationSource{db: db}
}

func (s *CreationSource) Name() string { return "creations" }

func (s *CreationSource) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, COALESCE(prompt, ''), created_at FROM creations`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing creations: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var c Creation
		if err := rows.Scan(&c.ID, &c.Title, &c.Prompt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning creation row: %w", err)
		}
		items = append(items, Item{
			ID:   "creation:" + c.ID,
			Text: c.Title + " " + c.Prompt,
			Ref:  Ref{Kind: KindCreation, Creation: &c},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing creations: %w", err)
	}
	return items, nil
}
