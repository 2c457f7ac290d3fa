package orchestrator

import (
	"time"
	"unicode/utf8"

	"github.com/openchat-labs/chatsearch/internal/engine"
	"github.com/openchat-labs/chatsearch/internal/source"
)

// subtitle text is truncated to this many runes.
const maxSubtitleRunes = 120

// Result is one UI-agnostic search result row.
type Result struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle,omitempty"`
	SourceType string    `json:"source_type"`
	Score      float64   `json:"score"`
	Timestamp  time.Time `json:"timestamp"`
}

// Results partitions ranked hits into named buckets.
type Results struct {
	Agents   []Result `json:"agents"`
	Messages []Result `json:"messages"`
	Other    []Result `json:"other"`
}

func newResults() *Results {
	return &Results{
		Agents:   []Result{},
		Messages: []Result{},
		Other:    []Result{},
	}
}

// Total returns the number of results across all buckets.
func (r *Results) Total() int {
	return len(r.Agents) + len(r.Messages) + len(r.Other)
}

// collect routes one engine hit into its bucket, applying the conversation
// filter and the per-bucket cap. Hits arrive in descending score order, so
// each bucket keeps its best entries.
func (r *Results) collect(hit engine.Hit[source.Ref], conversationID string) {
	ref := hit.Meta
	switch ref.Kind {
	case source.KindAgent:
		if len(r.Agents) >= maxPerBucket {
			return
		}
		a := ref.Agent
		r.Agents = append(r.Agents, Result{
			ID:         a.ID,
			Title:      a.Name,
			Subtitle:   truncate(a.Description),
			SourceType: string(source.KindAgent),
			Score:      hit.Score,
			Timestamp:  a.UpdatedAt,
		})
	case source.KindMessage:
		m := ref.Message
		if conversationID != "" && m.ConversationID != conversationID {
			return
		}
		if len(r.Messages) >= maxPerBucket {
			return
		}
		r.Messages = append(r.Messages, Result{
			ID:         m.ID,
			Title:      truncate(m.Content),
			Subtitle:   m.Role,
			SourceType: string(source.KindMessage),
			Score:      hit.Score,
			Timestamp:  m.CreatedAt,
		})
	case source.KindFile:
		if len(r.Other) >= maxPerBucket {
			return
		}
		f := ref.File
		r.Other = append(r.Other, Result{
			ID:         f.ID,
			Title:      f.Name,
			Subtitle:   truncate(f.Summary),
			SourceType: string(source.KindFile),
			Score:      hit.Score,
			Timestamp:  f.UpdatedAt,
		})
	case source.KindArticle:
		if len(r.Other) >= maxPerBucket {
			return
		}
		a := ref.Article
		r.Other = append(r.Other, Result{
			ID:         a.ID,
			Title:      a.Title,
			Subtitle:   truncate(a.Excerpt),
			SourceType: string(source.KindArticle),
			Score:      hit.Score,
			Timestamp:  a.PublishedAt,
		})
	case source.KindCreation:
		if len(r.Other) >= maxPerBucket {
			return
		}
		c := ref.Creation
		r.Other = append(r.Other, Result{
			ID:         c.ID,
			Title:      c.Title,
			Subtitle:   truncate(c.Prompt),
			SourceType: string(source.KindCreation),
			Score:      hit.Score,
			Timestamp:  c.CreatedAt,
		})
	}
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxSubtitleRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxSubtitleRunes]) + "…"
}
