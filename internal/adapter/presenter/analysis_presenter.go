package presenter

import (
	"sort"
	"strconv"

	dto "github.com/johnquangdev/meeting-insights/internal/adapter/dto/analysis"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	analysisuc "github.com/johnquangdev/meeting-insights/internal/usecase/analysis"
	"github.com/johnquangdev/meeting-insights/internal/usecase/ingest"
)

// ToIngestResponse converts an ingestion result
func ToIngestResponse(r *ingest.Result) *dto.IngestTranscriptResponse {
	if r == nil || r.Transcript == nil {
		return nil
	}
	resp := &dto.IngestTranscriptResponse{
		TranscriptID: r.Transcript.ID.String(),
		Queued:       r.Queued,
	}
	if r.QueueItem != nil {
		id := r.QueueItem.ID.String()
		priority := r.QueueItem.Priority
		resp.QueueItemID = &id
		resp.Priority = &priority
	}
	return resp
}

func ToSummaryResponse(s *entities.AnalysisSummary) *dto.SummaryResponse {
	if s == nil {
		return nil
	}
	return &dto.SummaryResponse{
		ID:             s.ID.String(),
		MeetingID:      s.MeetingID,
		RoomNumber:     s.RoomNumber,
		RoomLabel:      analysisuc.RoomLabel(s.RoomNumber),
		Content:        s.Content,
		SentimentScore: s.SentimentScore,
		KeyTopics:      stringsOrEmpty(s.KeyTopics),
		KeySpeakers:    stringsOrEmpty(s.KeySpeakers),
		ActionItems:    stringsOrEmpty(s.ActionItems),
		CreatedAt:      s.CreatedAt,
	}
}

func ToSummaryList(rows []*entities.AnalysisSummary) []*dto.SummaryResponse {
	out := make([]*dto.SummaryResponse, 0, len(rows))
	for _, s := range rows {
		if r := ToSummaryResponse(s); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func ToInsightResponse(i *entities.InsightEvent) *dto.InsightResponse {
	if i == nil {
		return nil
	}
	rooms := intsOrEmpty(i.InvolvedRooms)
	return &dto.InsightResponse{
		ID:            i.ID.String(),
		MeetingID:     i.MeetingID,
		Type:          string(i.Type),
		Severity:      string(i.Severity),
		Title:         i.Title,
		Description:   i.Description,
		InvolvedRooms: rooms,
		RelatedTopics: stringsOrEmpty(i.RelatedTopics),
		CrossRoom:     len(rooms) > 1,
		CreatedAt:     i.CreatedAt,
	}
}

func ToInsightList(rows []*entities.InsightEvent) []*dto.InsightResponse {
	out := make([]*dto.InsightResponse, 0, len(rows))
	for _, i := range rows {
		if r := ToInsightResponse(i); r != nil {
			out = append(out, r)
		}
	}
	return out
}

// ToTopicResponse renders room mentions with string keys for JSON clients
func ToTopicResponse(n *entities.TopicNode) *dto.TopicResponse {
	if n == nil {
		return nil
	}
	mentions := make(map[string]int)
	for room, count := range n.RoomMentions.Data() {
		mentions[strconv.Itoa(room)] = count
	}
	return &dto.TopicResponse{
		ID:              n.ID.String(),
		Label:           n.Label,
		Description:     n.Description,
		Category:        n.Category,
		MentionCount:    n.MentionCount,
		RoomMentions:    mentions,
		ImportanceScore: n.ImportanceScore,
		FirstSeen:       n.FirstSeen,
		LastSeen:        n.LastSeen,
	}
}

func ToTopicList(rows []*entities.TopicNode) []*dto.TopicResponse {
	out := make([]*dto.TopicResponse, 0, len(rows))
	for _, n := range rows {
		if r := ToTopicResponse(n); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func ToEdgeList(rows []*entities.TopicEdge) []*dto.EdgeResponse {
	out := make([]*dto.EdgeResponse, 0, len(rows))
	for _, e := range rows {
		if e == nil {
			continue
		}
		out = append(out, &dto.EdgeResponse{
			ID:               e.ID.String(),
			SourceID:         e.SourceID.String(),
			TargetID:         e.TargetID.String(),
			RelationshipType: string(e.RelationshipType),
			Weight:           e.Weight,
			RoomContext:      intsOrEmpty(e.RoomContext),
			UpdatedAt:        e.UpdatedAt,
		})
	}
	return out
}

func ToQueueItemList(rows []*entities.AnalysisQueueItem) []*dto.QueueItemResponse {
	out := make([]*dto.QueueItemResponse, 0, len(rows))
	for _, q := range rows {
		if q == nil {
			continue
		}
		out = append(out, &dto.QueueItemResponse{
			ID:           q.ID.String(),
			TranscriptID: q.TranscriptID.String(),
			MeetingID:    q.MeetingID,
			RoomNumber:   q.RoomNumber,
			Status:       string(q.Status),
			Priority:     q.Priority,
			RetryCount:   q.RetryCount,
			ErrorMessage: q.ErrorMessage,
			CreatedAt:    q.CreatedAt,
			UpdatedAt:    q.UpdatedAt,
		})
	}
	return out
}

func ToQueueStats(counts map[entities.QueueStatus]int64) *dto.QueueStatsResponse {
	resp := &dto.QueueStatsResponse{
		Pending:    counts[entities.QueueStatusPending],
		Processing: counts[entities.QueueStatusProcessing],
		Completed:  counts[entities.QueueStatusCompleted],
		Failed:     counts[entities.QueueStatusFailed],
	}
	resp.Total = resp.Pending + resp.Processing + resp.Completed + resp.Failed
	return resp
}

func ToPromptResponse(p *entities.PromptConfig) *dto.PromptResponse {
	if p == nil {
		return nil
	}
	return &dto.PromptResponse{
		ID:         p.ID.String(),
		Scope:      string(p.Scope),
		RoomNumber: p.RoomNumber,
		Name:       p.Name,
		PromptText: p.PromptText,
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ToPromptList orders global prompts first, then by room number
func ToPromptList(rows []*entities.PromptConfig) []*dto.PromptResponse {
	out := make([]*dto.PromptResponse, 0, len(rows))
	for _, p := range rows {
		if r := ToPromptResponse(p); r != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return promptRank(out[i]) < promptRank(out[j])
	})
	return out
}

func promptRank(p *dto.PromptResponse) int {
	if p.RoomNumber == nil {
		return -1
	}
	return *p.RoomNumber
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func intsOrEmpty(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
