package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-insights/pkg/ai"
)

// TranscriptLine is one queued line of a room conversation
type TranscriptLine struct {
	Speaker string
	Content string
}

const roomAnalysisSchema = `{
  "summary": "2-4 sentence summary of the discussion",
  "sentiment": 0.0,
  "topics": [{"label": "short topic name", "category": "category", "description": "one sentence"}],
  "relationships": [{"source": "topic label", "target": "topic label", "type": "related_to|depends_on|conflicts_with|supports"}],
  "insights": [{"type": "alignment|misalignment|gap|highlight|action", "severity": "info|warning|alert", "title": "short title", "description": "one or two sentences"}],
  "actionItems": ["action item"],
  "speakers": ["speaker name"]
}`

// RoomAnalyzer runs one LLM analysis over a room's queued transcript lines
type RoomAnalyzer struct {
	prompts *PromptResolver
	context *ContextRetriever
	llm     pkgai.LLMClient
	parser  *Parser
	logger  *zap.Logger
}

func NewRoomAnalyzer(prompts *PromptResolver, retriever *ContextRetriever, llm pkgai.LLMClient, parser *Parser, logger *zap.Logger) *RoomAnalyzer {
	if parser == nil {
		parser = NewParser()
	}
	return &RoomAnalyzer{prompts: prompts, context: retriever, llm: llm, parser: parser, logger: logger}
}

// Analyze resolves prompts and context, calls the model once and parses the reply.
// LLM and prompt lookup errors are returned; malformed output is not an error.
func (a *RoomAnalyzer) Analyze(ctx context.Context, meetingID string, roomNumber int, lines []TranscriptLine) (*entities.RoomAnalysisResult, error) {
	prompts, err := a.prompts.Resolve(ctx, roomNumber)
	if err != nil {
		return nil, err
	}

	contents := make([]string, 0, len(lines))
	for _, l := range lines {
		contents = append(contents, l.Content)
	}
	var contextBlock string
	if a.context != nil {
		contextBlock = a.context.Retrieve(ctx, strings.Join(contents, " "))
	}

	prompt := BuildRoomPrompt(prompts, contextBlock, roomNumber, FormatConversation(lines))

	raw, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm call for %s: %w", RoomLabel(roomNumber), err)
	}

	result := a.parser.ParseRoomAnalysis(raw)
	if result.Degraded && a.logger != nil {
		a.logger.Warn("⚠️ Unparseable analysis response, using degraded result",
			zap.String("meeting_id", meetingID),
			zap.Int("room_number", roomNumber),
			zap.Int("response_length", len(raw)),
		)
	}
	return result, nil
}

// RoomLabel names a room for prompts: 0 is the main room
func RoomLabel(roomNumber int) string {
	if roomNumber == entities.MainRoomNumber {
		return "Main Room"
	}
	return fmt.Sprintf("Breakout Room %d", roomNumber)
}

// FormatConversation renders lines as "speaker: content", in the given order
func FormatConversation(lines []TranscriptLine) string {
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(l.Speaker)
		sb.WriteString(": ")
		sb.WriteString(l.Content)
	}
	return sb.String()
}

// BuildRoomPrompt composes global prompt, room prompt, optional context, the
// labeled transcript and the JSON-only instruction
func BuildRoomPrompt(prompts entities.ResolvedPrompts, contextBlock string, roomNumber int, conversation string) string {
	sections := make([]string, 0, 5)
	if s := strings.TrimSpace(prompts.Global); s != "" {
		sections = append(sections, s)
	}
	if s := strings.TrimSpace(prompts.Room); s != "" {
		sections = append(sections, s)
	}
	if contextBlock != "" {
		sections = append(sections, "Reference context:\n"+contextBlock)
	}
	sections = append(sections, fmt.Sprintf("Transcript from %s:\n%s", RoomLabel(roomNumber), conversation))
	sections = append(sections, "Respond with ONLY a valid JSON object, no markdown and no commentary, matching this schema:\n"+roomAnalysisSchema)
	return strings.Join(sections, "\n\n")
}
