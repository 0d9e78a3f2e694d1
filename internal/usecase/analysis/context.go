package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

const (
	DefaultContextChunks     = 5
	DefaultContextChunkChars = 500
)

// ContextRetriever injects reference document excerpts into analysis prompts.
// It samples a fixed number of chunks; the query is accepted but not used for ranking.
type ContextRetriever struct {
	repo       repositories.DocumentRepository
	maxChunks  int
	chunkChars int
	logger     *zap.Logger
}

func NewContextRetriever(repo repositories.DocumentRepository, maxChunks, chunkChars int, logger *zap.Logger) *ContextRetriever {
	if maxChunks <= 0 {
		maxChunks = DefaultContextChunks
	}
	if chunkChars <= 0 {
		chunkChars = DefaultContextChunkChars
	}
	return &ContextRetriever{repo: repo, maxChunks: maxChunks, chunkChars: chunkChars, logger: logger}
}

// Retrieve returns "[title]: content" blocks, or "" when no documents exist.
// Reference documents are optional grounding, so a read failure also yields "".
func (c *ContextRetriever) Retrieve(ctx context.Context, query string) string {
	if c.repo == nil {
		return ""
	}
	chunks, err := c.repo.SampleChunks(ctx, c.maxChunks)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("⚠️ Failed to load reference context, continuing without it", zap.Error(err))
		}
		return ""
	}

	blocks := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if ch == nil {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[%s]: %s", ch.Title, truncateRunes(ch.Content, c.chunkChars)))
	}
	return strings.Join(blocks, "\n\n")
}
