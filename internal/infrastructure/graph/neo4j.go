package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// Driver runs Cypher against Neo4j or Memgraph
type Driver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	Close(ctx context.Context) error
}

// Neo4jDriver wraps the official bolt driver
type Neo4jDriver struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jDriver connects and verifies connectivity
func NewNeo4jDriver(ctx context.Context, uri, username, password string) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create graph driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}
	return &Neo4jDriver{driver: driver}, nil
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

const (
	constraintQuery = `CREATE CONSTRAINT topic_label IF NOT EXISTS FOR (t:Topic) REQUIRE t.label IS UNIQUE`

	mergeTopicsQuery = `
UNWIND $topics AS topic
MERGE (t:Topic {label: topic.label})
SET t.id = topic.id,
    t.category = topic.category,
    t.description = topic.description,
    t.mention_count = topic.mention_count,
    t.importance_score = topic.importance_score,
    t.rooms = topic.rooms,
    t.last_seen = topic.last_seen`

	mergeLinksQuery = `
UNWIND $links AS link
MATCH (s:Topic {label: link.source})
MATCH (t:Topic {label: link.target})
MERGE (s)-[r:RELATES]->(t)
SET r.type = link.type,
    r.weight = link.weight,
    r.rooms = link.rooms`
)

// TopicProjector mirrors the topic graph into a property graph for exploration.
// Postgres stays the source of truth; projection is replayable from it.
type TopicProjector struct {
	driver Driver
	logger *zap.Logger
}

func NewTopicProjector(driver Driver, logger *zap.Logger) *TopicProjector {
	return &TopicProjector{driver: driver, logger: logger}
}

// EnsureSchema creates the unique label constraint
func (p *TopicProjector) EnsureSchema(ctx context.Context) error {
	if _, err := p.driver.ExecuteQuery(ctx, constraintQuery, nil); err != nil {
		return fmt.Errorf("create topic constraint: %w", err)
	}
	return nil
}

// ProjectTopics merges nodes by label, then merges RELATES edges between them
func (p *TopicProjector) ProjectTopics(ctx context.Context, nodes []*entities.TopicNode, links []entities.TopicLink) error {
	if len(nodes) > 0 {
		params := map[string]interface{}{"topics": topicParams(nodes)}
		if _, err := p.driver.ExecuteQuery(ctx, mergeTopicsQuery, params); err != nil {
			return fmt.Errorf("merge topics: %w", err)
		}
	}
	if len(links) > 0 {
		params := map[string]interface{}{"links": linkParams(links)}
		if _, err := p.driver.ExecuteQuery(ctx, mergeLinksQuery, params); err != nil {
			return fmt.Errorf("merge topic links: %w", err)
		}
	}
	if p.logger != nil {
		p.logger.Debug("Projected topics to graph", zap.Int("topics", len(nodes)), zap.Int("links", len(links)))
	}
	return nil
}

// bolt maps need string keys, so room mentions are flattened to a sorted room list
func topicParams(nodes []*entities.TopicNode) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		rooms := make([]int64, 0)
		for room := range n.RoomMentions.Data() {
			rooms = append(rooms, int64(room))
		}
		sort.Slice(rooms, func(i, j int) bool { return rooms[i] < rooms[j] })
		out = append(out, map[string]interface{}{
			"id":               n.ID.String(),
			"label":            n.Label,
			"category":         n.Category,
			"description":      n.Description,
			"mention_count":    int64(n.MentionCount),
			"importance_score": n.ImportanceScore,
			"rooms":            rooms,
			"last_seen":        n.LastSeen,
		})
	}
	return out
}

func linkParams(links []entities.TopicLink) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(links))
	for _, l := range links {
		rooms := make([]int64, 0, len(l.Rooms))
		for _, r := range l.Rooms {
			rooms = append(rooms, int64(r))
		}
		out = append(out, map[string]interface{}{
			"source": l.Source,
			"target": l.Target,
			"type":   string(l.Type),
			"weight": l.Weight,
			"rooms":  rooms,
		})
	}
	return out
}
