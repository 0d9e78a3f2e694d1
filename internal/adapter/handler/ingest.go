package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	dto "github.com/johnquangdev/meeting-insights/internal/adapter/dto/analysis"
	"github.com/johnquangdev/meeting-insights/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-insights/internal/usecase/ingest"
)

// TranscriptIngester stores transcript lines
type TranscriptIngester interface {
	IngestTranscript(ctx context.Context, in ingest.TranscriptInput) (*ingest.Result, error)
}

// Ingest receives transcript lines from the meeting stream bridge
type Ingest struct {
	svc    TranscriptIngester
	logger *zap.Logger
}

func NewIngestHandler(svc TranscriptIngester, logger *zap.Logger) *Ingest {
	return &Ingest{svc: svc, logger: logger}
}

// IngestTranscript handles POST /transcripts
// @Summary      Ingest a transcript line
// @Description  Stores one transcript line. Final lines are queued for analysis.
// @Tags         Transcripts
// @Accept       json
// @Produce      json
// @Param        X-Signature  header    string                       false  "hex sha256 HMAC of the body when an ingest secret is configured"
// @Param        request      body      analysis.IngestTranscriptRequest  true   "Transcript line"
// @Success      202          {object}  analysis.IngestTranscriptResponse
// @Failure      400          {object}  map[string]interface{}
// @Failure      401          {object}  map[string]interface{}
// @Router       /transcripts [post]
func (h *Ingest) IngestTranscript(c echo.Context) error {
	var req dto.IngestTranscriptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	res, err := h.svc.IngestTranscript(c.Request().Context(), ingest.TranscriptInput{
		MeetingID:   req.MeetingID,
		RoomNumber:  *req.RoomNumber,
		SpeakerName: req.SpeakerName,
		Content:     req.Content,
		IsFinal:     req.IsFinal,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleAccepted(h.logger, c, presenter.ToIngestResponse(res))
}
