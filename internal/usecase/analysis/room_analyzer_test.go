package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestPromptResolver_Resolve(t *testing.T) {
	older := globalPrompt("global one")
	newer := globalPrompt("global two")
	repo := &fakePromptRepo{prompts: []*entities.PromptConfig{
		older,
		newer,
		roomPrompt(2, "room two"),
		roomPrompt(3, "room three"),
		{Scope: entities.PromptScopeRoom, RoomNumber: intPtr(2), PromptText: "inactive", IsActive: false},
	}}
	r := NewPromptResolver(repo)

	got, err := r.Resolve(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "global one", got.Global)
	assert.Equal(t, "room two", got.Room)

	got, err = r.Resolve(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "global one", got.Global)
	assert.Empty(t, got.Room)

	global, err := r.ResolveGlobal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "global one", global)
}

func TestPromptResolver_NoConfigs(t *testing.T) {
	got, err := NewPromptResolver(&fakePromptRepo{}).Resolve(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got.Global)
	assert.Empty(t, got.Room)
}

func TestPromptResolver_RepoError(t *testing.T) {
	_, err := NewPromptResolver(&fakePromptRepo{err: errors.New("timeout")}).Resolve(context.Background(), 0)
	assert.Error(t, err)
}

func TestContextRetriever_Retrieve(t *testing.T) {
	repo := &fakeDocumentRepo{chunks: []*entities.ReferenceChunk{
		{Title: "Handbook", Content: strings.Repeat("a", 20)},
		{Title: "Roadmap", Content: "ship v2"},
		{Title: "Extra", Content: "not sampled"},
	}}
	c := NewContextRetriever(repo, 2, 10, nil)

	got := c.Retrieve(context.Background(), "anything")
	assert.Equal(t, "[Handbook]: aaaaaaaaaa\n\n[Roadmap]: ship v2", got)
}

func TestContextRetriever_EmptyAndFailure(t *testing.T) {
	assert.Empty(t, NewContextRetriever(&fakeDocumentRepo{}, 0, 0, nil).Retrieve(context.Background(), "q"))
	assert.Empty(t, NewContextRetriever(&fakeDocumentRepo{err: errors.New("down")}, 0, 0, nil).Retrieve(context.Background(), "q"))
	assert.Empty(t, NewContextRetriever(nil, 0, 0, nil).Retrieve(context.Background(), "q"))
}

func TestBuildRoomPrompt(t *testing.T) {
	prompt := BuildRoomPrompt(
		entities.ResolvedPrompts{Global: "You analyze meetings.", Room: "Focus on risks."},
		"[Doc]: text",
		4,
		FormatConversation([]TranscriptLine{{Speaker: "ann", Content: "one"}, {Speaker: "ben", Content: "two"}}),
	)

	iGlobal := strings.Index(prompt, "You analyze meetings.")
	iRoom := strings.Index(prompt, "Focus on risks.")
	iContext := strings.Index(prompt, "Reference context:\n[Doc]: text")
	iTranscript := strings.Index(prompt, "Transcript from Breakout Room 4:\nann: one\nben: two")
	iSchema := strings.Index(prompt, `"actionItems"`)

	require.True(t, iGlobal >= 0 && iRoom >= 0 && iContext >= 0 && iTranscript >= 0 && iSchema >= 0, prompt)
	assert.True(t, iGlobal < iRoom && iRoom < iContext && iContext < iTranscript && iTranscript < iSchema)
}

func TestBuildRoomPrompt_OmitsEmptySections(t *testing.T) {
	prompt := BuildRoomPrompt(entities.ResolvedPrompts{}, "", 0, "x: y")

	assert.True(t, strings.HasPrefix(prompt, "Transcript from Main Room:\nx: y"))
	assert.NotContains(t, prompt, "Reference context")
}

func TestRoomAnalyzer_Analyze(t *testing.T) {
	llm := newMockLLM()
	llm.fallback = `{"summary":"fine","topics":[{"label":"L"}]}`
	a := NewRoomAnalyzer(
		NewPromptResolver(&fakePromptRepo{prompts: []*entities.PromptConfig{roomPrompt(1, "Room one rules")}}),
		NewContextRetriever(&fakeDocumentRepo{chunks: []*entities.ReferenceChunk{{Title: "T", Content: "C"}}}, 0, 0, nil),
		llm, nil, nil,
	)

	r, err := a.Analyze(context.Background(), "M", 1, []TranscriptLine{{Speaker: "s", Content: "c"}})
	require.NoError(t, err)
	assert.Equal(t, "fine", r.Summary)
	require.Len(t, llm.calls(), 1)
	assert.Contains(t, llm.calls()[0], "Room one rules")
	assert.Contains(t, llm.calls()[0], "[T]: C")
}

func TestRoomAnalyzer_LLMErrorPropagates(t *testing.T) {
	llm := newMockLLM()
	llm.errs["Transcript from"] = errNetwork
	a := NewRoomAnalyzer(NewPromptResolver(&fakePromptRepo{}), nil, llm, nil, nil)

	_, err := a.Analyze(context.Background(), "M", 6, []TranscriptLine{{Speaker: "s", Content: "c"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, errNetwork)
	assert.Contains(t, err.Error(), "Breakout Room 6")
}

func TestSynthesizer_NeedsTwoRooms(t *testing.T) {
	llm := newMockLLM()
	s := NewSynthesizer(NewPromptResolver(&fakePromptRepo{}), llm, nil, nil)

	got, raw, err := s.Synthesize(context.Background(), []entities.RoomSummaryInput{
		{RoomNumber: 1, Summary: "a"},
		{RoomNumber: 1, Summary: "b"},
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, raw)
	assert.Empty(t, llm.calls())
}

func TestSynthesizer_Synthesize(t *testing.T) {
	llm := newMockLLM()
	llm.byMarker[crossRoomMarker] = `{"insights":[{"type":"gap","title":"budget missing","rooms":[0,2]}]}`
	s := NewSynthesizer(
		NewPromptResolver(&fakePromptRepo{prompts: []*entities.PromptConfig{globalPrompt("Be concise."), roomPrompt(2, "room only")}}),
		llm, nil, nil,
	)

	got, raw, err := s.Synthesize(context.Background(), []entities.RoomSummaryInput{
		{RoomNumber: 0, Summary: "main talk", Topics: []string{"Budget", "Hiring"}},
		{RoomNumber: 2, Summary: "side talk", Topics: []string{}},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []int{0, 2}, got[0].Rooms)
	assert.NotEmpty(t, raw)

	prompt := llm.calls()[0]
	assert.True(t, strings.HasPrefix(prompt, "Be concise."))
	assert.NotContains(t, prompt, "room only")
	assert.Contains(t, prompt, "Main Room (room 0):\nSummary: main talk\nTopics: Budget, Hiring")
	assert.Contains(t, prompt, "Breakout Room 2 (room 2):\nSummary: side talk")
}

func TestSynthesizer_LLMError(t *testing.T) {
	llm := newMockLLM()
	llm.errs[crossRoomMarker] = errors.New("status code: 503")
	s := NewSynthesizer(NewPromptResolver(&fakePromptRepo{}), llm, nil, nil)

	_, _, err := s.Synthesize(context.Background(), []entities.RoomSummaryInput{{RoomNumber: 0}, {RoomNumber: 1}})
	assert.Error(t, err)
}

func intPtr(n int) *int { return &n }
