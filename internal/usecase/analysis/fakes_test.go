package analysis

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// ---- queue ----

type fakeQueueRepo struct {
	mu         sync.Mutex
	items      []*entities.AnalysisQueueItem
	stolen     map[uuid.UUID]bool
	fetchErr   error
	markFailed map[uuid.UUID]string
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{stolen: map[uuid.UUID]bool{}, markFailed: map[uuid.UUID]string{}}
}

func (f *fakeQueueRepo) add(meetingID string, room int, speaker, content string, createdAt time.Time) *entities.AnalysisQueueItem {
	t := entities.NewTranscript(meetingID, room, speaker, content, true)
	item := entities.NewAnalysisQueueItem(t)
	item.Transcript = t
	item.CreatedAt = createdAt
	item.UpdatedAt = createdAt
	f.mu.Lock()
	f.items = append(f.items, item)
	f.mu.Unlock()
	return item
}

func (f *fakeQueueRepo) get(id uuid.UUID) *entities.AnalysisQueueItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == id {
			cp := *it
			return &cp
		}
	}
	return nil
}

func (f *fakeQueueRepo) Enqueue(ctx context.Context, item *entities.AnalysisQueueItem) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.TranscriptID == item.TranscriptID {
			return false, nil
		}
	}
	f.items = append(f.items, item)
	return true, nil
}

func (f *fakeQueueRepo) FetchPending(ctx context.Context, limit int) ([]*entities.AnalysisQueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []*entities.AnalysisQueueItem
	for _, it := range f.items {
		if it.Status == entities.QueueStatusPending {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeQueueRepo) ClaimPending(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID != id {
			continue
		}
		if f.stolen[id] {
			// another run claimed it between fetch and claim
			it.Status = entities.QueueStatusProcessing
			return false, nil
		}
		if it.Status != entities.QueueStatusPending {
			return false, nil
		}
		it.Status = entities.QueueStatusProcessing
		return true, nil
	}
	return false, nil
}

func (f *fakeQueueRepo) MarkCompleted(ctx context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if containsID(ids, it.ID) && it.Status == entities.QueueStatusProcessing {
			it.Status = entities.QueueStatusCompleted
			it.ErrorMessage = nil
		}
	}
	return nil
}

func (f *fakeQueueRepo) MarkFailed(ctx context.Context, ids []uuid.UUID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if containsID(ids, it.ID) && it.Status == entities.QueueStatusProcessing {
			msg := errMsg
			it.Status = entities.QueueStatusFailed
			it.ErrorMessage = &msg
			it.RetryCount++
			f.markFailed[it.ID] = errMsg
		}
	}
	return nil
}

func (f *fakeQueueRepo) ListFailed(ctx context.Context, maxRetries int) ([]*entities.AnalysisQueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.AnalysisQueueItem
	for _, it := range f.items {
		if it.Status == entities.QueueStatusFailed && it.RetryCount < maxRetries {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeQueueRepo) Requeue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, it := range f.items {
		if containsID(ids, it.ID) && it.Status == entities.QueueStatusFailed {
			it.Status = entities.QueueStatusPending
			n++
		}
	}
	return n, nil
}

func (f *fakeQueueRepo) ResetStale(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, it := range f.items {
		if it.Status == entities.QueueStatusProcessing && it.UpdatedAt.Before(cutoff) {
			it.Status = entities.QueueStatusPending
			n++
		}
	}
	return n, nil
}

func (f *fakeQueueRepo) CountByStatus(ctx context.Context) (map[entities.QueueStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[entities.QueueStatus]int64{}
	for _, it := range f.items {
		out[it.Status]++
	}
	return out, nil
}

func (f *fakeQueueRepo) List(ctx context.Context, status entities.QueueStatus, limit int) ([]*entities.AnalysisQueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.AnalysisQueueItem
	for _, it := range f.items {
		if status == "" || it.Status == status {
			out = append(out, it)
		}
	}
	return out, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// ---- analysis ----

type fakeAnalysisRepo struct {
	mu        sync.Mutex
	summaries []*entities.AnalysisSummary
	topics    map[string]*entities.TopicNode
	edges     map[[2]uuid.UUID]*entities.TopicEdge
	insights  []*entities.InsightEvent

	failSaveInsight error
	recentErr       error
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{
		topics: map[string]*entities.TopicNode{},
		edges:  map[[2]uuid.UUID]*entities.TopicEdge{},
	}
}

func copyTopic(n *entities.TopicNode) *entities.TopicNode {
	cp := *n
	mentions := map[int]int{}
	for k, v := range n.RoomMentions.Data() {
		mentions[k] = v
	}
	cp.RoomMentions = datatypes.NewJSONType(mentions)
	return &cp
}

func (f *fakeAnalysisRepo) Transaction(ctx context.Context, fn func(tx repositories.AnalysisRepository) error) error {
	f.mu.Lock()
	summaries := append([]*entities.AnalysisSummary(nil), f.summaries...)
	insights := append([]*entities.InsightEvent(nil), f.insights...)
	topics := make(map[string]*entities.TopicNode, len(f.topics))
	for k, v := range f.topics {
		topics[k] = copyTopic(v)
	}
	edges := make(map[[2]uuid.UUID]*entities.TopicEdge, len(f.edges))
	for k, v := range f.edges {
		cp := *v
		edges[k] = &cp
	}
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.summaries, f.insights, f.topics, f.edges = summaries, insights, topics, edges
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeAnalysisRepo) SaveSummary(ctx context.Context, s *entities.AnalysisSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, s)
	return nil
}

func (f *fakeAnalysisRepo) RecentSummaries(ctx context.Context, limit int) ([]*entities.AnalysisSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	out := append([]*entities.AnalysisSummary(nil), f.summaries...)
	// newest first; insertion order breaks ties
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAnalysisRepo) ListSummaries(ctx context.Context, meetingID string, limit int) ([]*entities.AnalysisSummary, error) {
	all, _ := f.RecentSummaries(ctx, 1<<30)
	var out []*entities.AnalysisSummary
	for _, s := range all {
		if meetingID == "" || s.MeetingID == meetingID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAnalysisRepo) FindTopicByLabel(ctx context.Context, label string) (*entities.TopicNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.topics[label]
	if !ok {
		return nil, nil
	}
	return copyTopic(n), nil
}

func (f *fakeAnalysisRepo) SaveTopic(ctx context.Context, n *entities.TopicNode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics[n.Label] = copyTopic(n)
	return nil
}

func (f *fakeAnalysisRepo) UpsertEdge(ctx context.Context, e *entities.TopicEdge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uuid.UUID{e.SourceID, e.TargetID}
	if existing, ok := f.edges[key]; ok {
		existing.RelationshipType = e.RelationshipType
		existing.Weight = e.Weight
		existing.RoomContext = e.RoomContext
		return nil
	}
	cp := *e
	f.edges[key] = &cp
	return nil
}

func (f *fakeAnalysisRepo) ListTopics(ctx context.Context, limit int) ([]*entities.TopicNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.TopicNode
	for _, n := range f.topics {
		out = append(out, copyTopic(n))
	}
	return out, nil
}

func (f *fakeAnalysisRepo) ListEdges(ctx context.Context, limit int) ([]*entities.TopicEdge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.TopicEdge
	for _, e := range f.edges {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeAnalysisRepo) SaveInsight(ctx context.Context, i *entities.InsightEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaveInsight != nil {
		return f.failSaveInsight
	}
	f.insights = append(f.insights, i)
	return nil
}

func (f *fakeAnalysisRepo) ListInsights(ctx context.Context, meetingID string, limit int) ([]*entities.InsightEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.InsightEvent
	for _, i := range f.insights {
		if meetingID == "" || i.MeetingID == meetingID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeAnalysisRepo) topic(label string) *entities.TopicNode {
	n, _ := f.FindTopicByLabel(context.Background(), label)
	return n
}

func (f *fakeAnalysisRepo) summariesFor(room int) []*entities.AnalysisSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.AnalysisSummary
	for _, s := range f.summaries {
		if s.RoomNumber == room {
			out = append(out, s)
		}
	}
	return out
}

// ---- prompts & documents ----

type fakePromptRepo struct {
	prompts []*entities.PromptConfig
	err     error
}

func (f *fakePromptRepo) ActivePrompts(ctx context.Context, roomNumber int) ([]*entities.PromptConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*entities.PromptConfig
	for _, p := range f.prompts {
		if !p.IsActive {
			continue
		}
		if p.Scope == entities.PromptScopeGlobal ||
			(p.Scope == entities.PromptScopeRoom && p.RoomNumber != nil && *p.RoomNumber == roomNumber) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePromptRepo) ListPrompts(ctx context.Context) ([]*entities.PromptConfig, error) {
	return f.prompts, nil
}

func (f *fakePromptRepo) GetPromptByID(ctx context.Context, id uuid.UUID) (*entities.PromptConfig, error) {
	for _, p := range f.prompts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePromptRepo) SavePrompt(ctx context.Context, p *entities.PromptConfig) error {
	for i, existing := range f.prompts {
		if existing.ID == p.ID {
			f.prompts[i] = p
			return nil
		}
	}
	f.prompts = append(f.prompts, p)
	return nil
}

func globalPrompt(text string) *entities.PromptConfig {
	return &entities.PromptConfig{ID: uuid.New(), Scope: entities.PromptScopeGlobal, Name: "global", PromptText: text, IsActive: true}
}

func roomPrompt(room int, text string) *entities.PromptConfig {
	r := room
	return &entities.PromptConfig{ID: uuid.New(), Scope: entities.PromptScopeRoom, RoomNumber: &r, Name: "room", PromptText: text, IsActive: true}
}

type fakeDocumentRepo struct {
	chunks []*entities.ReferenceChunk
	err    error
}

func (f *fakeDocumentRepo) SampleChunks(ctx context.Context, limit int) ([]*entities.ReferenceChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.chunks) > limit {
		return f.chunks[:limit], nil
	}
	return f.chunks, nil
}

// ---- LLM ----

// mockLLM answers by looking for a marker in the prompt
type mockLLM struct {
	mu       sync.Mutex
	prompts  []string
	byMarker map[string]string
	errs     map[string]error
	fallback string
}

func newMockLLM() *mockLLM {
	return &mockLLM{byMarker: map[string]string{}, errs: map[string]error{}, fallback: `{"summary":"ok","sentiment":0}`}
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	for marker, err := range m.errs {
		if strings.Contains(prompt, marker) {
			return "", err
		}
	}
	for marker, resp := range m.byMarker {
		if strings.Contains(prompt, marker) {
			return resp, nil
		}
	}
	return m.fallback, nil
}

func (m *mockLLM) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func (m *mockLLM) crossRoomCalls() int {
	n := 0
	for _, p := range m.calls() {
		if strings.Contains(p, crossRoomMarker) {
			n++
		}
	}
	return n
}

const crossRoomMarker = "Compare the following room discussions"

// ---- side effects ----

type fakePublisher struct {
	mu     sync.Mutex
	events []*entities.PipelineEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, e *entities.PipelineEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakePublisher) count(t entities.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type fakeArchive struct {
	objects map[string]string
}

func (f *fakeArchive) UploadText(ctx context.Context, objectName string, content string) error {
	if f.objects == nil {
		f.objects = map[string]string{}
	}
	f.objects[objectName] = content
	return nil
}

type fakeGraph struct {
	nodes []*entities.TopicNode
	links []entities.TopicLink
	err   error
}

func (f *fakeGraph) ProjectTopics(ctx context.Context, nodes []*entities.TopicNode, links []entities.TopicLink) error {
	f.nodes = append(f.nodes, nodes...)
	f.links = append(f.links, links...)
	return f.err
}

type mapStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *mapStore) Set(key, value string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
}

func (m *mapStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

var errNetwork = errors.New("dial tcp 10.0.0.1:443: connection refused")
