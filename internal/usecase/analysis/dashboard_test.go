package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	ucerrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
)

func TestDashboard_LatestSummaries(t *testing.T) {
	store := newFakeAnalysisRepo()
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()
	_ = store.SaveSummary(ctx, &entities.AnalysisSummary{MeetingID: "M", RoomNumber: 3, SummaryType: entities.SummaryTypeRoom, Content: "old three", CreatedAt: t0})
	_ = store.SaveSummary(ctx, &entities.AnalysisSummary{MeetingID: "M", RoomNumber: 0, SummaryType: entities.SummaryTypeRoom, Content: "main", CreatedAt: t0.Add(time.Minute)})
	_ = store.SaveSummary(ctx, &entities.AnalysisSummary{MeetingID: "M", RoomNumber: 3, SummaryType: entities.SummaryTypeRoom, Content: "new three", CreatedAt: t0.Add(2 * time.Minute)})
	_ = store.SaveSummary(ctx, &entities.AnalysisSummary{MeetingID: "other", RoomNumber: 1, SummaryType: entities.SummaryTypeRoom, Content: "x", CreatedAt: t0})

	d := NewDashboard(newFakeQueueRepo(), store, &fakePromptRepo{})
	got, err := d.LatestSummaries(ctx, "M")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "main", got[0].Content)
	assert.Equal(t, "new three", got[1].Content)
}

func TestDashboard_QueueItemsRejectsUnknownStatus(t *testing.T) {
	d := NewDashboard(newFakeQueueRepo(), newFakeAnalysisRepo(), &fakePromptRepo{})

	_, err := d.QueueItems(context.Background(), "stuck", 10)
	assert.ErrorIs(t, err, ucerrors.ErrInvalidInput)

	_, err = d.QueueItems(context.Background(), entities.QueueStatusFailed, 10)
	assert.NoError(t, err)
}

func TestDashboard_SavePrompt(t *testing.T) {
	repo := &fakePromptRepo{}
	d := NewDashboard(newFakeQueueRepo(), newFakeAnalysisRepo(), repo)
	ctx := context.Background()

	created, err := d.SavePrompt(ctx, PromptInput{Scope: entities.PromptScopeRoom, RoomNumber: intPtr(4), Name: " Room 4 ", PromptText: "Focus", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Room 4", created.Name)
	require.Len(t, repo.prompts, 1)

	updated, err := d.SavePrompt(ctx, PromptInput{ID: &created.ID, Scope: entities.PromptScopeGlobal, RoomNumber: intPtr(4), Name: "Global", PromptText: "All rooms"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Nil(t, updated.RoomNumber)
	assert.False(t, updated.IsActive)
	assert.Len(t, repo.prompts, 1)
}

func TestDashboard_SavePromptValidation(t *testing.T) {
	d := NewDashboard(newFakeQueueRepo(), newFakeAnalysisRepo(), &fakePromptRepo{})
	missing := uuid.New()

	tests := []struct {
		name string
		in   PromptInput
		want error
	}{
		{"bad scope", PromptInput{Scope: "team", Name: "n", PromptText: "p"}, ucerrors.ErrInvalidScope},
		{"room without number", PromptInput{Scope: entities.PromptScopeRoom, Name: "n", PromptText: "p"}, ucerrors.ErrRoomNumberMissing},
		{"room out of range", PromptInput{Scope: entities.PromptScopeRoom, RoomNumber: intPtr(9), Name: "n", PromptText: "p"}, ucerrors.ErrRoomOutOfRange},
		{"blank text", PromptInput{Scope: entities.PromptScopeGlobal, Name: "n", PromptText: "  "}, ucerrors.ErrInvalidInput},
		{"unknown id", PromptInput{ID: &missing, Scope: entities.PromptScopeGlobal, Name: "n", PromptText: "p"}, ucerrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.SavePrompt(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDashboard_SeedPrompts(t *testing.T) {
	existing := globalPrompt("old text")
	existing.Name = "Meeting goals"
	repo := &fakePromptRepo{prompts: []*entities.PromptConfig{existing}}
	d := NewDashboard(newFakeQueueRepo(), newFakeAnalysisRepo(), repo)
	room := 2

	report, err := d.SeedPrompts(context.Background(), []PromptInput{
		{Scope: entities.PromptScopeGlobal, Name: "Meeting goals", PromptText: "new text", IsActive: true},
		{Scope: entities.PromptScopeRoom, RoomNumber: &room, Name: "Room 2", PromptText: "focus on hiring", IsActive: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	require.Len(t, repo.prompts, 2)
	assert.Equal(t, existing.ID, repo.prompts[0].ID)
	assert.Equal(t, "new text", repo.prompts[0].PromptText)

	// a second pass only updates
	report, err = d.SeedPrompts(context.Background(), []PromptInput{
		{Scope: entities.PromptScopeRoom, RoomNumber: &room, Name: "Room 2", PromptText: "focus on budget", IsActive: false},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Len(t, repo.prompts, 2)
	assert.False(t, repo.prompts[1].IsActive)
}

func TestDashboard_SeedPromptsStopsOnInvalid(t *testing.T) {
	d := NewDashboard(newFakeQueueRepo(), newFakeAnalysisRepo(), &fakePromptRepo{})

	report, err := d.SeedPrompts(context.Background(), []PromptInput{
		{Scope: entities.PromptScopeGlobal, Name: "ok", PromptText: "x", IsActive: true},
		{Scope: entities.PromptScopeRoom, Name: "broken", PromptText: "x"},
	})
	assert.ErrorIs(t, err, ucerrors.ErrRoomNumberMissing)
	assert.Equal(t, 1, report.Created)
}
