package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/adapter/dto/common"
	dto "github.com/johnquangdev/meeting-insights/internal/adapter/dto/analysis"
	"github.com/johnquangdev/meeting-insights/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	analysisuc "github.com/johnquangdev/meeting-insights/internal/usecase/analysis"
)

const defaultListLimit = 50

// QueueProcessor runs queue passes and reports the last one
type QueueProcessor interface {
	ProcessQueue(ctx context.Context) (*analysisuc.RunReport, error)
	LastRun() (*analysisuc.RunReport, bool)
}

// FailedRequeuer re-enqueues failed items
type FailedRequeuer interface {
	RequeueFailed(ctx context.Context, force bool) (*analysisuc.RequeueReport, error)
}

// DashboardReader serves dashboard reads and prompt edits
type DashboardReader interface {
	LatestSummaries(ctx context.Context, meetingID string) ([]*entities.AnalysisSummary, error)
	Insights(ctx context.Context, meetingID string, limit int) ([]*entities.InsightEvent, error)
	Topics(ctx context.Context, limit int) ([]*entities.TopicNode, error)
	Edges(ctx context.Context, limit int) ([]*entities.TopicEdge, error)
	QueueStats(ctx context.Context) (map[entities.QueueStatus]int64, error)
	QueueItems(ctx context.Context, status entities.QueueStatus, limit int) ([]*entities.AnalysisQueueItem, error)
	Prompts(ctx context.Context) ([]*entities.PromptConfig, error)
	SavePrompt(ctx context.Context, in analysisuc.PromptInput) (*entities.PromptConfig, error)
}

// Analysis exposes the queue processor and the dashboard read side
type Analysis struct {
	processor QueueProcessor
	requeuer  FailedRequeuer
	dashboard DashboardReader
	logger    *zap.Logger
}

func NewAnalysisHandler(processor QueueProcessor, requeuer FailedRequeuer, dashboard DashboardReader, logger *zap.Logger) *Analysis {
	return &Analysis{processor: processor, requeuer: requeuer, dashboard: dashboard, logger: logger}
}

// ProcessQueue handles POST /analysis/process
// @Summary      Run one queue pass
// @Description  Claims pending items, analyzes each (meeting, room) group and runs cross-room synthesis
// @Tags         Analysis
// @Produce      json
// @Success      200  {object}  analysis.RunReport
// @Failure      500  {object}  map[string]interface{}
// @Router       /analysis/process [post]
func (h *Analysis) ProcessQueue(c echo.Context) error {
	// a disconnecting caller must not abort half-written groups
	ctx := context.WithoutCancel(c.Request().Context())
	report, err := h.processor.ProcessQueue(ctx)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrQueueProcessingFailed(err))
	}
	return HandleSuccess(h.logger, c, report)
}

// Requeue handles POST /analysis/requeue
// @Summary      Re-enqueue failed items
// @Tags         Analysis
// @Accept       json
// @Produce      json
// @Param        request  body      analysis.RequeueRequest  false  "force skips retryability and backoff checks"
// @Success      200      {object}  analysis.RequeueReport
// @Router       /analysis/requeue [post]
func (h *Analysis) Requeue(c echo.Context) error {
	var req dto.RequeueRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidPayload())
		}
	}
	report, err := h.requeuer.RequeueFailed(c.Request().Context(), req.Force)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrQueueProcessingFailed(err))
	}
	return HandleSuccess(h.logger, c, report)
}

// Status handles GET /analysis/status
func (h *Analysis) Status(c echo.Context) error {
	report, ok := h.processor.LastRun()
	if !ok {
		return HandleError(h.logger, c, errors.ErrNotFound("last run"))
	}
	return HandleSuccess(h.logger, c, report)
}

// QueueStats handles GET /analysis/queue
func (h *Analysis) QueueStats(c echo.Context) error {
	counts, err := h.dashboard.QueueStats(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("count queue", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToQueueStats(counts))
}

// QueueItems handles GET /analysis/queue/items
func (h *Analysis) QueueItems(c echo.Context) error {
	var q dto.QueueItemsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return HandleError(h.logger, c, err)
	}
	rows, err := h.dashboard.QueueItems(c.Request().Context(), entities.QueueStatus(q.Status), limitOrDefault(q.Limit))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	items := presenter.ToQueueItemList(rows)
	return HandleSuccess(h.logger, c, common.NewListResponse(items, len(items)))
}

// Summaries handles GET /analysis/summaries
// @Summary      Latest summary per room
// @Tags         Analysis
// @Produce      json
// @Param        meeting_id  query     string  false  "Meeting ID"
// @Success      200         {object}  common.ListResponse
// @Router       /analysis/summaries [get]
func (h *Analysis) Summaries(c echo.Context) error {
	var q dto.ListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return HandleError(h.logger, c, err)
	}
	rows, err := h.dashboard.LatestSummaries(c.Request().Context(), q.MeetingID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list summaries", err))
	}
	items := presenter.ToSummaryList(rows)
	return HandleSuccess(h.logger, c, common.NewListResponse(items, len(items)))
}

// Insights handles GET /analysis/insights
func (h *Analysis) Insights(c echo.Context) error {
	var q dto.ListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return HandleError(h.logger, c, err)
	}
	rows, err := h.dashboard.Insights(c.Request().Context(), q.MeetingID, limitOrDefault(q.Limit))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list insights", err))
	}
	items := presenter.ToInsightList(rows)
	return HandleSuccess(h.logger, c, common.NewListResponse(items, len(items)))
}

// Topics handles GET /analysis/topics
func (h *Analysis) Topics(c echo.Context) error {
	var q dto.ListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return HandleError(h.logger, c, err)
	}
	rows, err := h.dashboard.Topics(c.Request().Context(), limitOrDefault(q.Limit))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list topics", err))
	}
	items := presenter.ToTopicList(rows)
	return HandleSuccess(h.logger, c, common.NewListResponse(items, len(items)))
}

// Edges handles GET /analysis/edges
func (h *Analysis) Edges(c echo.Context) error {
	var q dto.ListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return HandleError(h.logger, c, err)
	}
	rows, err := h.dashboard.Edges(c.Request().Context(), limitOrDefault(q.Limit))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list edges", err))
	}
	items := presenter.ToEdgeList(rows)
	return HandleSuccess(h.logger, c, common.NewListResponse(items, len(items)))
}

// Prompts handles GET /prompts
func (h *Analysis) Prompts(c echo.Context) error {
	rows, err := h.dashboard.Prompts(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list prompts", err))
	}
	items := presenter.ToPromptList(rows)
	return HandleSuccess(h.logger, c, common.NewListResponse(items, len(items)))
}

// SavePrompt handles POST /prompts and PUT /prompts/:id
// @Summary      Create or update a prompt config
// @Tags         Prompts
// @Accept       json
// @Produce      json
// @Param        id       path      string                      false  "Prompt ID (update only)"
// @Param        request  body      analysis.SavePromptRequest  true   "Prompt config"
// @Success      200      {object}  analysis.PromptResponse
// @Failure      400      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]interface{}
// @Router       /prompts/{id} [put]
func (h *Analysis) SavePrompt(c echo.Context) error {
	var req dto.SavePromptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	in := analysisuc.PromptInput{
		Scope:      entities.PromptScope(req.Scope),
		RoomNumber: req.RoomNumber,
		Name:       req.Name,
		PromptText: req.PromptText,
		IsActive:   req.Active(),
	}
	if raw := c.Param("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid prompt id"))
		}
		in.ID = &id
	}

	p, err := h.dashboard.SavePrompt(c.Request().Context(), in)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToPromptResponse(p))
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}
