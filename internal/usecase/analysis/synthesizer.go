package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-insights/pkg/ai"
)

const crossRoomSchema = `{
  "insights": [
    {"type": "alignment|misalignment|gap", "severity": "info|warning|alert", "title": "short title", "description": "one or two sentences", "rooms": [0, 1]}
  ]
}`

// Synthesizer compares the latest summaries of several rooms
type Synthesizer struct {
	prompts *PromptResolver
	llm     pkgai.LLMClient
	parser  *Parser
	logger  *zap.Logger
}

func NewSynthesizer(prompts *PromptResolver, llm pkgai.LLMClient, parser *Parser, logger *zap.Logger) *Synthesizer {
	if parser == nil {
		parser = NewParser()
	}
	return &Synthesizer{prompts: prompts, llm: llm, parser: parser, logger: logger}
}

// Synthesize asks the model for alignments, misalignments and gaps across rooms.
// Fewer than two distinct rooms returns nil without calling the model.
func (s *Synthesizer) Synthesize(ctx context.Context, rooms []entities.RoomSummaryInput) ([]entities.CrossRoomInsight, string, error) {
	if DistinctRooms(rooms) < 2 {
		return nil, "", nil
	}

	global, err := s.prompts.ResolveGlobal(ctx)
	if err != nil {
		return nil, "", err
	}

	raw, err := s.llm.Generate(ctx, BuildCrossRoomPrompt(global, rooms))
	if err != nil {
		return nil, "", fmt.Errorf("llm call for cross-room synthesis: %w", err)
	}
	return s.parser.ParseCrossRoomInsights(raw), raw, nil
}

// DistinctRooms counts the room numbers represented in rooms
func DistinctRooms(rooms []entities.RoomSummaryInput) int {
	seen := make(map[int]struct{}, len(rooms))
	for _, r := range rooms {
		seen[r.RoomNumber] = struct{}{}
	}
	return len(seen)
}

// BuildCrossRoomPrompt lists each room's summary and topics and asks for a comparison
func BuildCrossRoomPrompt(global string, rooms []entities.RoomSummaryInput) string {
	var sb strings.Builder
	if g := strings.TrimSpace(global); g != "" {
		sb.WriteString(g)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Compare the following room discussions from the same session.\n\n")
	for _, r := range rooms {
		fmt.Fprintf(&sb, "%s (room %d):\nSummary: %s\nTopics: %s\n\n",
			RoomLabel(r.RoomNumber), r.RoomNumber, r.Summary, strings.Join(r.Topics, ", "))
	}
	sb.WriteString("Identify alignments (rooms converging on the same idea), misalignments (rooms in conflict) ")
	sb.WriteString("and gaps (something one room covers that another misses) ACROSS the rooms listed. ")
	sb.WriteString("Each insight must list the room numbers it involves.\n\n")
	sb.WriteString("Respond with ONLY a valid JSON object, no markdown and no commentary, matching this schema:\n")
	sb.WriteString(crossRoomSchema)
	return sb.String()
}
