package analysis

import (
	"context"
	"fmt"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// noRoom matches no room-scoped prompt, leaving only global rows
const noRoom = -1

// PromptResolver picks the active global and room prompt for an analysis
type PromptResolver struct {
	repo repositories.PromptRepository
}

func NewPromptResolver(repo repositories.PromptRepository) *PromptResolver {
	return &PromptResolver{repo: repo}
}

// Resolve returns the active prompts for roomNumber. Missing configs yield empty strings.
// When several rows are active for the same scope the oldest wins.
func (r *PromptResolver) Resolve(ctx context.Context, roomNumber int) (entities.ResolvedPrompts, error) {
	var out entities.ResolvedPrompts
	rows, err := r.repo.ActivePrompts(ctx, roomNumber)
	if err != nil {
		return out, fmt.Errorf("load prompts: %w", err)
	}

	var haveGlobal, haveRoom bool
	for _, p := range rows {
		if p == nil || !p.IsActive {
			continue
		}
		switch p.Scope {
		case entities.PromptScopeGlobal:
			if !haveGlobal {
				out.Global = p.PromptText
				haveGlobal = true
			}
		case entities.PromptScopeRoom:
			if !haveRoom && p.RoomNumber != nil && *p.RoomNumber == roomNumber {
				out.Room = p.PromptText
				haveRoom = true
			}
		}
	}
	return out, nil
}

// ResolveGlobal returns only the active global prompt
func (r *PromptResolver) ResolveGlobal(ctx context.Context) (string, error) {
	p, err := r.Resolve(ctx, noRoom)
	if err != nil {
		return "", err
	}
	return p.Global, nil
}
