package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/pkg/jobcontext"
)

const (
	DefaultBatchSize     = 10
	DefaultSummaryWindow = 9

	// LastRunKey holds the JSON RunReport of the most recent run
	LastRunKey = "analysis:last_run"
	lastRunTTL = 24 * time.Hour
)

// ProcessorConfig tunes one queue processor
type ProcessorConfig struct {
	BatchSize     int
	SummaryWindow int
	// GroupTimeout bounds one group's analysis and persistence. Zero disables it.
	GroupTimeout time.Duration
}

// RunReport describes one ProcessQueue invocation. Processed counts claimed
// items, not successful ones.
type RunReport struct {
	RunID             string    `json:"run_id"`
	Processed         int       `json:"processed"`
	Fetched           int       `json:"fetched"`
	Groups            int       `json:"groups"`
	CompletedGroups   int       `json:"completed_groups"`
	FailedGroups      int       `json:"failed_groups"`
	DegradedGroups    int       `json:"degraded_groups"`
	OrphanedItems     int       `json:"orphaned_items"`
	CrossRoomRan      bool      `json:"cross_room_ran"`
	CrossRoomInsights int       `json:"cross_room_insights"`
	CrossRoomError    string    `json:"cross_room_error,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}

// Processor dequeues pending transcript work, analyzes it per (meeting, room)
// and synthesizes cross-room insights
type Processor struct {
	queueRepo    repositories.QueueRepository
	analysisRepo repositories.AnalysisRepository
	analyzer     *RoomAnalyzer
	synthesizer  *Synthesizer
	publisher    EventPublisher
	archive      ResponseArchive
	graph        GraphProjector
	status       KeyValueStore
	cfg          ProcessorConfig
	logger       *zap.Logger
	now          func() time.Time
	newRunID     func() string
}

// ProcessorOption wires optional collaborators
type ProcessorOption func(*Processor)

func WithPublisher(pub EventPublisher) ProcessorOption {
	return func(p *Processor) { p.publisher = pub }
}

func WithArchive(a ResponseArchive) ProcessorOption {
	return func(p *Processor) { p.archive = a }
}

func WithGraphProjector(g GraphProjector) ProcessorOption {
	return func(p *Processor) { p.graph = g }
}

func WithStatusStore(s KeyValueStore) ProcessorOption {
	return func(p *Processor) { p.status = s }
}

func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

func WithRunIDGenerator(gen func() string) ProcessorOption {
	return func(p *Processor) { p.newRunID = gen }
}

// NewProcessor constructs a queue processor
func NewProcessor(
	queueRepo repositories.QueueRepository,
	analysisRepo repositories.AnalysisRepository,
	analyzer *RoomAnalyzer,
	synthesizer *Synthesizer,
	cfg ProcessorConfig,
	logger *zap.Logger,
	opts ...ProcessorOption,
) *Processor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.SummaryWindow <= 0 {
		cfg.SummaryWindow = DefaultSummaryWindow
	}
	p := &Processor{
		queueRepo:    queueRepo,
		analysisRepo: analysisRepo,
		analyzer:     analyzer,
		synthesizer:  synthesizer,
		cfg:          cfg,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		newRunID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// queueGroup is the claimed work for one (meeting, room) key
type queueGroup struct {
	meetingID  string
	roomNumber int
	lines      []TranscriptLine
	itemIDs    []uuid.UUID
}

type groupKey struct {
	meetingID  string
	roomNumber int
}

// groupOutcome is what one group committed
type groupOutcome struct {
	summary  *entities.AnalysisSummary
	topics   []*entities.TopicNode
	links    []entities.TopicLink
	insights []*entities.InsightEvent
}

// ProcessQueue runs one pass over the pending queue. Only a failure to read the
// queue is returned as an error; group failures are recorded on the queue items.
func (p *Processor) ProcessQueue(ctx context.Context) (*RunReport, error) {
	report := &RunReport{RunID: p.newRunID(), StartedAt: p.now()}

	items, err := p.queueRepo.FetchPending(ctx, p.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch pending queue items: %w", err)
	}
	report.Fetched = len(items)

	claimed := p.claim(ctx, items)
	report.Processed = len(claimed)
	if len(claimed) == 0 {
		p.finish(ctx, report)
		return report, nil
	}

	groups, orphans := groupItems(claimed)
	report.Groups = len(groups)
	if len(orphans) > 0 {
		report.OrphanedItems = len(orphans)
		if err := p.queueRepo.MarkFailed(ctx, orphans, "transcript not found"); err != nil && p.logger != nil {
			p.logger.Error("❌ Failed to mark orphaned queue items", zap.Int("count", len(orphans)), zap.Error(err))
		}
	}

	if p.logger != nil {
		p.logger.Info("🔄 Processing analysis queue",
			zap.String("run_id", report.RunID),
			zap.Int("fetched", report.Fetched),
			zap.Int("claimed", report.Processed),
			zap.Int("groups", len(groups)),
		)
	}

	// Groups run one at a time; a failure never stops the next group
	for _, g := range groups {
		p.processGroup(ctx, report, g)
	}

	p.synthesizeCrossRoom(ctx, report)
	p.finish(ctx, report)
	return report, nil
}

// claim moves each fetched item pending→processing; items another run took are dropped
func (p *Processor) claim(ctx context.Context, items []*entities.AnalysisQueueItem) []*entities.AnalysisQueueItem {
	claimed := make([]*entities.AnalysisQueueItem, 0, len(items))
	for _, item := range items {
		ok, err := p.queueRepo.ClaimPending(ctx, item.ID)
		if err != nil {
			if p.logger != nil {
				p.logger.Error("❌ Failed to claim queue item", zap.String("item_id", item.ID.String()), zap.Error(err))
			}
			continue
		}
		if !ok {
			if p.logger != nil {
				p.logger.Debug("Queue item already claimed by another run", zap.String("item_id", item.ID.String()))
			}
			continue
		}
		item.Status = entities.QueueStatusProcessing
		claimed = append(claimed, item)
	}
	return claimed
}

// groupItems groups by (meeting, room) in first-seen order, keeping queue order
// of lines within a group. Items without a transcript are returned separately.
func groupItems(items []*entities.AnalysisQueueItem) ([]*queueGroup, []uuid.UUID) {
	var (
		groups  []*queueGroup
		orphans []uuid.UUID
		index   = make(map[groupKey]*queueGroup)
	)
	for _, item := range items {
		if item.Transcript == nil {
			orphans = append(orphans, item.ID)
			continue
		}
		key := groupKey{meetingID: item.MeetingID, roomNumber: item.RoomNumber}
		g, ok := index[key]
		if !ok {
			g = &queueGroup{meetingID: item.MeetingID, roomNumber: item.RoomNumber}
			index[key] = g
			groups = append(groups, g)
		}
		g.lines = append(g.lines, TranscriptLine{Speaker: item.Transcript.SpeakerName, Content: item.Transcript.Content})
		g.itemIDs = append(g.itemIDs, item.ID)
	}
	return groups, orphans
}

func (p *Processor) processGroup(ctx context.Context, report *RunReport, g *queueGroup) {
	gctx, cancel := jobcontext.GroupBegin(ctx, report.RunID, g.meetingID, g.roomNumber, p.cfg.GroupTimeout)
	defer cancel()

	var (
		result  *entities.RoomAnalysisResult
		outcome *groupOutcome
	)
	err := jobcontext.GroupRun(gctx, func(ctx context.Context) error {
		r, err := p.analyzer.Analyze(ctx, g.meetingID, g.roomNumber, g.lines)
		if err != nil {
			return err
		}
		result = r
		return p.analysisRepo.Transaction(ctx, func(tx repositories.AnalysisRepository) error {
			o, err := p.persistGroup(ctx, tx, g, r)
			if err != nil {
				return err
			}
			outcome = o
			return nil
		})
	})

	if err != nil {
		report.FailedGroups++
		if p.logger != nil {
			p.logger.Error("❌ Room analysis failed",
				zap.String("run_id", report.RunID),
				zap.String("meeting_id", g.meetingID),
				zap.Int("room_number", g.roomNumber),
				zap.Int("items", len(g.itemIDs)),
				zap.Bool("retryable", jobcontext.IsRetryableError(err)),
				zap.Error(err),
			)
		}
		if mErr := p.queueRepo.MarkFailed(ctx, g.itemIDs, err.Error()); mErr != nil && p.logger != nil {
			p.logger.Error("❌ Failed to mark queue items as failed", zap.Error(mErr))
		}
		return
	}

	if err := p.queueRepo.MarkCompleted(ctx, g.itemIDs); err != nil && p.logger != nil {
		// items stay processing until a forced requeue releases them
		p.logger.Error("❌ Failed to mark queue items as completed",
			zap.String("meeting_id", g.meetingID),
			zap.Int("room_number", g.roomNumber),
			zap.Int("items", len(g.itemIDs)),
			zap.Error(err),
		)
	}
	report.CompletedGroups++
	if result.Degraded {
		report.DegradedGroups++
	}

	if p.logger != nil {
		p.logger.Info("✅ Room analysis saved",
			zap.String("run_id", report.RunID),
			zap.String("meeting_id", g.meetingID),
			zap.Int("room_number", g.roomNumber),
			zap.Int("topics", len(outcome.topics)),
			zap.Int("edges", len(outcome.links)),
			zap.Int("insights", len(outcome.insights)),
		)
	}

	p.afterGroupCommit(ctx, report.RunID, g, result, outcome)
}

// persistGroup writes the summary, topic upserts, edge upserts and insights for one group
func (p *Processor) persistGroup(ctx context.Context, tx repositories.AnalysisRepository, g *queueGroup, r *entities.RoomAnalysisResult) (*groupOutcome, error) {
	now := p.now()
	out := &groupOutcome{}

	summary := entities.NewRoomSummary(g.meetingID, g.roomNumber, r, now)
	if err := tx.SaveSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}
	out.summary = summary

	touched := make(map[string]*entities.TopicNode)
	var order []string
	for _, t := range r.Topics {
		node, err := tx.FindTopicByLabel(ctx, t.Label)
		if err != nil {
			return nil, fmt.Errorf("find topic %q: %w", t.Label, err)
		}
		if node == nil {
			node = entities.NewTopicNode(t.Label, t.Description, t.Category, g.roomNumber, now)
		} else {
			node.RecordMention(g.roomNumber, t.Description, t.Category, now)
		}
		if err := tx.SaveTopic(ctx, node); err != nil {
			return nil, fmt.Errorf("save topic %q: %w", t.Label, err)
		}
		if _, seen := touched[t.Label]; !seen {
			order = append(order, t.Label)
		}
		touched[t.Label] = node
	}
	for _, label := range order {
		out.topics = append(out.topics, touched[label])
	}

	for _, rel := range r.Relationships {
		source, err := tx.FindTopicByLabel(ctx, rel.Source)
		if err != nil {
			return nil, fmt.Errorf("find topic %q: %w", rel.Source, err)
		}
		target, err := tx.FindTopicByLabel(ctx, rel.Target)
		if err != nil {
			return nil, fmt.Errorf("find topic %q: %w", rel.Target, err)
		}
		// Relationships to topics that do not exist yet are dropped, not deferred
		if source == nil || target == nil {
			continue
		}
		edge := entities.NewTopicEdge(source.ID, target.ID, rel.Type, g.roomNumber)
		if err := tx.UpsertEdge(ctx, edge); err != nil {
			return nil, fmt.Errorf("upsert edge %q -> %q: %w", rel.Source, rel.Target, err)
		}
		out.links = append(out.links, entities.TopicLink{
			Source: source.Label,
			Target: target.Label,
			Type:   edge.RelationshipType,
			Weight: edge.Weight,
			Rooms:  []int{g.roomNumber},
		})
	}

	labels := r.TopicLabels()
	for _, m := range r.Insights {
		insight := entities.NewRoomInsight(g.meetingID, g.roomNumber, m, labels, now)
		if err := tx.SaveInsight(ctx, insight); err != nil {
			return nil, fmt.Errorf("save insight: %w", err)
		}
		out.insights = append(out.insights, insight)
	}

	return out, nil
}

// afterGroupCommit archives, publishes and projects committed output. Failures are logged only.
func (p *Processor) afterGroupCommit(ctx context.Context, runID string, g *queueGroup, r *entities.RoomAnalysisResult, o *groupOutcome) {
	if p.archive != nil && r.Raw != "" {
		object := fmt.Sprintf("analysis/%s/room-%d/%s.txt", g.meetingID, g.roomNumber, runID)
		if err := p.archive.UploadText(ctx, object, r.Raw); err != nil && p.logger != nil {
			p.logger.Warn("⚠️ Failed to archive raw analysis response", zap.String("object", object), zap.Error(err))
		}
	}

	if p.graph != nil && (len(o.topics) > 0 || len(o.links) > 0) {
		if err := p.graph.ProjectTopics(ctx, o.topics, o.links); err != nil && p.logger != nil {
			p.logger.Warn("⚠️ Failed to project topics to graph", zap.String("meeting_id", g.meetingID), zap.Error(err))
		}
	}

	room := g.roomNumber
	p.publish(ctx, &entities.PipelineEvent{Type: entities.EventRoomSummary, RunID: runID, MeetingID: g.meetingID, RoomNumber: &room, Payload: o.summary})
	if len(o.topics) > 0 {
		p.publish(ctx, &entities.PipelineEvent{Type: entities.EventTopicsUpdate, RunID: runID, MeetingID: g.meetingID, RoomNumber: &room, Payload: o.topics})
	}
	for _, insight := range o.insights {
		p.publish(ctx, &entities.PipelineEvent{Type: entities.EventInsight, RunID: runID, MeetingID: g.meetingID, RoomNumber: &room, Payload: insight})
	}
}

// synthesizeCrossRoom compares the latest summary per room when at least two rooms are present
func (p *Processor) synthesizeCrossRoom(ctx context.Context, report *RunReport) {
	recent, err := p.analysisRepo.RecentSummaries(ctx, p.cfg.SummaryWindow)
	if err != nil {
		report.CrossRoomError = err.Error()
		if p.logger != nil {
			p.logger.Error("❌ Failed to load recent summaries", zap.Error(err))
		}
		return
	}

	inputs, meetingID := LatestPerRoom(recent)
	if DistinctRooms(inputs) < 2 {
		return
	}

	report.CrossRoomRan = true
	insights, raw, err := p.synthesizer.Synthesize(ctx, inputs)
	if err != nil {
		report.CrossRoomError = err.Error()
		if p.logger != nil {
			p.logger.Error("❌ Cross-room synthesis failed", zap.String("run_id", report.RunID), zap.Error(err))
		}
		return
	}

	if p.archive != nil && raw != "" {
		object := fmt.Sprintf("analysis/cross-room/%s.txt", report.RunID)
		if err := p.archive.UploadText(ctx, object, raw); err != nil && p.logger != nil {
			p.logger.Warn("⚠️ Failed to archive cross-room response", zap.String("object", object), zap.Error(err))
		}
	}

	if len(insights) == 0 {
		return
	}

	now := p.now()
	saved := make([]*entities.InsightEvent, 0, len(insights))
	err = p.analysisRepo.Transaction(ctx, func(tx repositories.AnalysisRepository) error {
		for _, ci := range insights {
			event := entities.NewCrossRoomInsight(meetingID, ci, now)
			if err := tx.SaveInsight(ctx, event); err != nil {
				return fmt.Errorf("save cross-room insight: %w", err)
			}
			saved = append(saved, event)
		}
		return nil
	})
	if err != nil {
		report.CrossRoomError = err.Error()
		if p.logger != nil {
			p.logger.Error("❌ Failed to save cross-room insights", zap.Error(err))
		}
		return
	}

	report.CrossRoomInsights = len(saved)
	for _, event := range saved {
		p.publish(ctx, &entities.PipelineEvent{Type: entities.EventInsight, RunID: report.RunID, MeetingID: meetingID, Payload: event})
	}
}

// LatestPerRoom keeps the newest summary for each room, ordered by room number.
// The meeting ID is returned only when every kept summary belongs to the same meeting.
func LatestPerRoom(summaries []*entities.AnalysisSummary) ([]entities.RoomSummaryInput, string) {
	latest := make(map[int]*entities.AnalysisSummary)
	for _, s := range summaries {
		if s == nil {
			continue
		}
		if cur, ok := latest[s.RoomNumber]; !ok || s.CreatedAt.After(cur.CreatedAt) {
			latest[s.RoomNumber] = s
		}
	}

	rooms := make([]int, 0, len(latest))
	for room := range latest {
		rooms = append(rooms, room)
	}
	sort.Ints(rooms)

	inputs := make([]entities.RoomSummaryInput, 0, len(rooms))
	meetingID := ""
	for i, room := range rooms {
		s := latest[room]
		topics := []string(s.KeyTopics)
		if topics == nil {
			topics = []string{}
		}
		inputs = append(inputs, entities.RoomSummaryInput{RoomNumber: room, Summary: s.Content, Topics: topics})
		switch {
		case i == 0:
			meetingID = s.MeetingID
		case meetingID != s.MeetingID:
			meetingID = ""
		}
	}
	return inputs, meetingID
}

func (p *Processor) publish(ctx context.Context, event *entities.PipelineEvent) {
	if p.publisher == nil {
		return
	}
	event.At = p.now()
	if err := p.publisher.Publish(ctx, event); err != nil && p.logger != nil {
		p.logger.Warn("⚠️ Failed to publish pipeline event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

// finish records the run report in the status store
func (p *Processor) finish(ctx context.Context, report *RunReport) {
	report.FinishedAt = p.now()

	if p.status != nil {
		if data, err := json.Marshal(report); err == nil {
			p.status.Set(LastRunKey, string(data), lastRunTTL)
		}
	}
	if report.Processed > 0 {
		p.publish(ctx, &entities.PipelineEvent{Type: entities.EventRunFinished, RunID: report.RunID, Payload: report})
	}

	if p.logger != nil {
		p.logger.Info("🏁 Analysis queue run finished",
			zap.String("run_id", report.RunID),
			zap.Int("processed", report.Processed),
			zap.Int("completed_groups", report.CompletedGroups),
			zap.Int("failed_groups", report.FailedGroups),
			zap.Int("cross_room_insights", report.CrossRoomInsights),
			zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
		)
	}
}

// LastRun reads the most recent run report from the status store
func (p *Processor) LastRun() (*RunReport, bool) {
	if p.status == nil {
		return nil, false
	}
	raw, ok := p.status.Get(LastRunKey)
	if !ok {
		return nil, false
	}
	var report RunReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, false
	}
	return &report, true
}
