package analysis

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// DegradedSummaryLength bounds the summary kept from unparseable output
const DegradedSummaryLength = 500

// jsonObjectPattern matches from the first '{' to the last '}'
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// actionItemTextKeys are tried in order when an action item comes back as an object
var actionItemTextKeys = []string{"task", "title", "description", "text", "action"}

// Parser turns free-form model output into structured results. It never fails:
// unparseable output becomes a degraded result.
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseRoomAnalysis decodes a room analysis field by field. A field or list
// element of the wrong shape is coerced or dropped; only an extracted region
// that is not a JSON object yields a degraded result.
func (p *Parser) ParseRoomAnalysis(raw string) *entities.RoomAnalysisResult {
	fields, ok := decodeObject(raw)
	if !ok {
		return DegradedResult(raw)
	}

	result := &entities.RoomAnalysisResult{
		Summary:       textValue(fields["summary"]),
		Topics:        decodeTopics(fields["topics"]),
		Relationships: decodeRelationships(fields["relationships"]),
		Insights:      decodeInsights(fields["insights"]),
		ActionItems:   decodeActionItems(fields["actionItems"]),
		Speakers:      decodeStrings(fields["speakers"]),
		Raw:           raw,
	}
	if v, ok := fields["sentiment"]; ok {
		// Sentiment never rejects a well-formed value
		_ = json.Unmarshal(v, &result.Sentiment)
	}
	return result
}

// ParseCrossRoomInsights decodes {"insights": [...]}. Elements that are not
// objects are dropped; an unusable payload yields an empty list.
func (p *Parser) ParseCrossRoomInsights(raw string) []entities.CrossRoomInsight {
	fields, ok := decodeObject(raw)
	if !ok {
		return []entities.CrossRoomInsight{}
	}

	elements := arrayElements(fields["insights"])
	insights := make([]entities.CrossRoomInsight, 0, len(elements))
	for _, el := range elements {
		obj, ok := objectValue(el)
		if !ok {
			continue
		}
		insights = append(insights, entities.CrossRoomInsight{
			Type:        textValue(obj["type"]),
			Severity:    textValue(obj["severity"]),
			Title:       textValue(obj["title"]),
			Description: textValue(obj["description"]),
			Rooms:       decodeRooms(obj["rooms"]),
		})
	}
	return insights
}

// DegradedResult keeps the first characters of the raw text as the summary,
// with neutral sentiment and empty lists
func DegradedResult(raw string) *entities.RoomAnalysisResult {
	return &entities.RoomAnalysisResult{
		Summary:       truncateRunes(raw, DegradedSummaryLength),
		Sentiment:     0,
		Topics:        []entities.TopicMention{},
		Relationships: []entities.RelationshipMention{},
		Insights:      []entities.InsightMention{},
		ActionItems:   []string{},
		Speakers:      []string{},
		Raw:           raw,
		Degraded:      true,
	}
}

// extractJSONObject strips markdown fences and returns the outermost {...} region
func extractJSONObject(content string) (string, bool) {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	match := jsonObjectPattern.FindString(content)
	return match, match != ""
}

// decodeObject extracts the {...} region of raw and decodes its top-level keys
func decodeObject(raw string) (map[string]json.RawMessage, bool) {
	candidate, ok := extractJSONObject(raw)
	if !ok {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func objectValue(v json.RawMessage) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(v, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// arrayElements returns the elements of a JSON array; any other value has none
func arrayElements(v json.RawMessage) []json.RawMessage {
	var elements []json.RawMessage
	if len(v) == 0 || json.Unmarshal(v, &elements) != nil {
		return nil
	}
	return elements
}

// textValue renders strings as-is and numbers or booleans as their literal.
// Objects, arrays and null render as "".
func textValue(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	default:
		return string(v)
	}
}

func decodeTopics(v json.RawMessage) []entities.TopicMention {
	elements := arrayElements(v)
	topics := make([]entities.TopicMention, 0, len(elements))
	for _, el := range elements {
		var t entities.TopicMention
		if obj, ok := objectValue(el); ok {
			t = entities.TopicMention{
				Label:       textValue(obj["label"]),
				Category:    textValue(obj["category"]),
				Description: textValue(obj["description"]),
			}
		} else {
			t.Label = textValue(el)
		}
		if strings.TrimSpace(t.Label) != "" {
			topics = append(topics, t)
		}
	}
	return topics
}

func decodeRelationships(v json.RawMessage) []entities.RelationshipMention {
	elements := arrayElements(v)
	rels := make([]entities.RelationshipMention, 0, len(elements))
	for _, el := range elements {
		obj, ok := objectValue(el)
		if !ok {
			continue
		}
		rels = append(rels, entities.RelationshipMention{
			Source: textValue(obj["source"]),
			Target: textValue(obj["target"]),
			Type:   textValue(obj["type"]),
		})
	}
	return rels
}

func decodeInsights(v json.RawMessage) []entities.InsightMention {
	elements := arrayElements(v)
	insights := make([]entities.InsightMention, 0, len(elements))
	for _, el := range elements {
		obj, ok := objectValue(el)
		if !ok {
			continue
		}
		insights = append(insights, entities.InsightMention{
			Type:        textValue(obj["type"]),
			Severity:    textValue(obj["severity"]),
			Title:       textValue(obj["title"]),
			Description: textValue(obj["description"]),
		})
	}
	return insights
}

// decodeActionItems accepts plain strings or objects carrying the task text
func decodeActionItems(v json.RawMessage) []string {
	elements := arrayElements(v)
	items := make([]string, 0, len(elements))
	for _, el := range elements {
		text := textValue(el)
		if obj, ok := objectValue(el); ok {
			for _, key := range actionItemTextKeys {
				if text = textValue(obj[key]); text != "" {
					break
				}
			}
		}
		if text != "" {
			items = append(items, text)
		}
	}
	return items
}

func decodeStrings(v json.RawMessage) []string {
	elements := arrayElements(v)
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		if s := textValue(el); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// decodeRooms accepts integers or numeric strings and drops the rest
func decodeRooms(v json.RawMessage) []int {
	elements := arrayElements(v)
	rooms := make([]int, 0, len(elements))
	for _, el := range elements {
		n, err := strconv.Atoi(strings.TrimSpace(textValue(el)))
		if err != nil {
			continue
		}
		rooms = append(rooms, n)
	}
	return rooms
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
