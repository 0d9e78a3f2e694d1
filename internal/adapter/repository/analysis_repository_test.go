package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestAnalysisRepository_UpsertEdgeOverwritesPair(t *testing.T) {
	db, rec := newDryRunDB(t)
	source, target := uuid.New(), uuid.New()

	edge := entities.NewTopicEdge(source, target, "blocks", 4)
	require.NoError(t, NewAnalysisRepository(db).UpsertEdge(context.Background(), edge))

	sql := rec.only(t)
	assert.Contains(t, sql, `INSERT INTO "topic_edges"`)
	assert.Contains(t, sql, `ON CONFLICT ("source_id","target_id") DO UPDATE SET`)
	for _, col := range []string{"relationship_type", "weight", "room_context", "updated_at"} {
		assert.Contains(t, sql, `"`+col+`"="excluded"."`+col+`"`)
	}
	assert.NotContains(t, sql, `"created_at"="excluded"`)
	assert.Contains(t, sql, "'"+source.String()+"'")
	assert.Contains(t, sql, "'"+target.String()+"'")
}

func TestAnalysisRepository_NilInputsAreRejected(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewAnalysisRepository(db)
	ctx := context.Background()

	assert.Error(t, repo.UpsertEdge(ctx, nil))
	assert.Error(t, repo.SaveSummary(ctx, nil))
	assert.Error(t, repo.SaveTopic(ctx, nil))
	assert.Error(t, repo.SaveInsight(ctx, nil))
	assert.Empty(t, rec.all())
}

func TestAnalysisRepository_FindTopicByExactLabel(t *testing.T) {
	db, rec := newDryRunDB(t)

	_, err := NewAnalysisRepository(db).FindTopicByLabel(context.Background(), "Cloud Migration")
	require.NoError(t, err)

	sql := rec.only(t)
	assert.Contains(t, sql, `FROM "topic_nodes"`)
	assert.Contains(t, sql, "WHERE label = 'Cloud Migration'")
	assert.Contains(t, sql, "LIMIT 1")
}

func TestAnalysisRepository_RecentSummariesAreRoomScoped(t *testing.T) {
	db, rec := newDryRunDB(t)

	_, err := NewAnalysisRepository(db).RecentSummaries(context.Background(), 9)
	require.NoError(t, err)

	sql := rec.only(t)
	assert.Contains(t, sql, `FROM "analysis_summaries"`)
	assert.Contains(t, sql, "WHERE summary_type = 'room' ORDER BY created_at DESC LIMIT 9")
}

func TestAnalysisRepository_ListInsightsFiltersByMeeting(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewAnalysisRepository(db)

	_, err := repo.ListInsights(context.Background(), "M-42", 0)
	require.NoError(t, err)
	_, err = repo.ListInsights(context.Background(), "", 0)
	require.NoError(t, err)

	stmts := rec.all()
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "WHERE meeting_id = 'M-42' ORDER BY created_at DESC LIMIT 50")
	assert.NotContains(t, stmts[1], "WHERE")
}
