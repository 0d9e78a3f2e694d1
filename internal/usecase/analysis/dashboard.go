package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
)

// Dashboard serves the read side of the admin UI and prompt editing
type Dashboard struct {
	queueRepo    repositories.QueueRepository
	analysisRepo repositories.AnalysisRepository
	promptRepo   repositories.PromptRepository
}

func NewDashboard(queueRepo repositories.QueueRepository, analysisRepo repositories.AnalysisRepository, promptRepo repositories.PromptRepository) *Dashboard {
	return &Dashboard{queueRepo: queueRepo, analysisRepo: analysisRepo, promptRepo: promptRepo}
}

// LatestSummaries returns the newest summary per room, ordered by room number
func (d *Dashboard) LatestSummaries(ctx context.Context, meetingID string) ([]*entities.AnalysisSummary, error) {
	rows, err := d.analysisRepo.ListSummaries(ctx, meetingID, 200)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	out := make([]*entities.AnalysisSummary, 0, entities.MaxRoomNumber+1)
	for _, s := range rows {
		if s.SummaryType != entities.SummaryTypeRoom || seen[s.RoomNumber] {
			continue
		}
		seen[s.RoomNumber] = true
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (d *Dashboard) Insights(ctx context.Context, meetingID string, limit int) ([]*entities.InsightEvent, error) {
	return d.analysisRepo.ListInsights(ctx, meetingID, limit)
}

func (d *Dashboard) Topics(ctx context.Context, limit int) ([]*entities.TopicNode, error) {
	return d.analysisRepo.ListTopics(ctx, limit)
}

func (d *Dashboard) Edges(ctx context.Context, limit int) ([]*entities.TopicEdge, error) {
	return d.analysisRepo.ListEdges(ctx, limit)
}

func (d *Dashboard) QueueStats(ctx context.Context) (map[entities.QueueStatus]int64, error) {
	return d.queueRepo.CountByStatus(ctx)
}

func (d *Dashboard) QueueItems(ctx context.Context, status entities.QueueStatus, limit int) ([]*entities.AnalysisQueueItem, error) {
	switch status {
	case "", entities.QueueStatusPending, entities.QueueStatusProcessing, entities.QueueStatusCompleted, entities.QueueStatusFailed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ucerrors.ErrInvalidInput, status)
	}
	return d.queueRepo.List(ctx, status, limit)
}

func (d *Dashboard) Prompts(ctx context.Context) ([]*entities.PromptConfig, error) {
	return d.promptRepo.ListPrompts(ctx)
}

// PromptInput is an admin create or update of a prompt config
type PromptInput struct {
	ID         *uuid.UUID
	Scope      entities.PromptScope
	RoomNumber *int
	Name       string
	PromptText string
	IsActive   bool
}

// SavePrompt validates and stores a prompt config. An ID that does not exist is an error.
func (d *Dashboard) SavePrompt(ctx context.Context, in PromptInput) (*entities.PromptConfig, error) {
	if err := validatePromptInput(in); err != nil {
		return nil, err
	}

	p := &entities.PromptConfig{ID: uuid.New()}
	if in.ID != nil {
		existing, err := d.promptRepo.GetPromptByID(ctx, *in.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ucerrors.ErrNotFound
		}
		p = existing
	}

	p.Scope = in.Scope
	p.RoomNumber = in.RoomNumber
	if in.Scope == entities.PromptScopeGlobal {
		p.RoomNumber = nil
	}
	p.Name = strings.TrimSpace(in.Name)
	p.PromptText = in.PromptText
	p.IsActive = in.IsActive

	if err := d.promptRepo.SavePrompt(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func validatePromptInput(in PromptInput) error {
	switch in.Scope {
	case entities.PromptScopeGlobal:
	case entities.PromptScopeRoom:
		if in.RoomNumber == nil {
			return ucerrors.ErrRoomNumberMissing
		}
		if !entities.ValidRoomNumber(*in.RoomNumber) {
			return ucerrors.ErrRoomOutOfRange
		}
	default:
		return ucerrors.ErrInvalidScope
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.PromptText) == "" {
		return fmt.Errorf("%w: name and prompt_text are required", ucerrors.ErrInvalidInput)
	}
	return nil
}

// SeedReport counts what SeedPrompts changed
type SeedReport struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// SeedPrompts upserts prompt configs by name. Existing prompts with the same
// name are overwritten in place; the first failure stops the pass.
func (d *Dashboard) SeedPrompts(ctx context.Context, seeds []PromptInput) (*SeedReport, error) {
	existing, err := d.promptRepo.ListPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	byName := make(map[string]uuid.UUID, len(existing))
	for _, p := range existing {
		byName[p.Name] = p.ID
	}

	report := &SeedReport{}
	for _, in := range seeds {
		in.ID = nil
		if id, ok := byName[strings.TrimSpace(in.Name)]; ok {
			in.ID = &id
		}
		p, err := d.SavePrompt(ctx, in)
		if err != nil {
			return report, fmt.Errorf("seed prompt %q: %w", in.Name, err)
		}
		if in.ID != nil {
			report.Updated++
		} else {
			report.Created++
			byName[p.Name] = p.ID
		}
	}
	return report, nil
}
