package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/accordfamily/accord-backend/errors"
	calldto "github.com/accordfamily/accord-backend/internal/adapter/dto/call"
	"github.com/accordfamily/accord-backend/internal/adapter/dto/common"
	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/usecase/call"
)

// CallHandler handles call scheduling and live session endpoints
type CallHandler struct {
	scheduler   *call.Scheduler
	coordinator *call.Coordinator
	monitor     *call.Monitor
	logger      *zap.Logger
}

// NewCallHandler creates a new call handler
func NewCallHandler(scheduler *call.Scheduler, coordinator *call.Coordinator, monitor *call.Monitor, logger *zap.Logger) *CallHandler {
	return &CallHandler{
		scheduler:   scheduler,
		coordinator: coordinator,
		monitor:     monitor,
		logger:      logger,
	}
}

// Schedule godoc
// @Summary Schedule a call with the other parent
// @Tags calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body call.ScheduleCallRequest true "Call details"
// @Success 201 {object} entities.ScheduledCall
// @Router /v1/calls/schedule [post]
func (h *CallHandler) Schedule(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req calldto.ScheduleCallRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	scheduled, err := h.scheduler.Schedule(c.Request().Context(), call.ScheduleInput{
		Caller:          user,
		RecipientName:   req.RecipientName,
		RecipientEmail:  req.RecipientEmail,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(c, scheduled)
}

// ListPending godoc
// @Summary List pending call invitations addressed to the user
// @Tags calls
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entities.ScheduledCall
// @Router /v1/calls/pending [get]
func (h *CallHandler) ListPending(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	calls, err := h.scheduler.ListPending(c.Request().Context(), user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, calls)
}

// ListScheduled godoc
// @Summary List the user's calls, past and upcoming
// @Tags calls
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} entities.ScheduledCall
// @Router /v1/calls/scheduled [get]
func (h *CallHandler) ListScheduled(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var query common.ListQuery
	if err := c.Bind(&query); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid query parameters"))
	}
	query.Normalize()

	calls, err := h.scheduler.ListScheduled(c.Request().Context(), user, query.Limit, query.Offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, calls)
}

// History godoc
// @Summary List the user's calls with violation and report counts
// @Tags calls
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} call.HistoryEntry
// @Router /v1/calls/history [get]
func (h *CallHandler) History(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var query common.ListQuery
	if err := c.Bind(&query); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid query parameters"))
	}
	query.Normalize()

	entries, err := h.monitor.History(c.Request().Context(), user, query.Limit, query.Offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, entries)
}

// Respond godoc
// @Summary Accept or reject a pending call invitation
// @Tags calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Call ID"
// @Param request body call.RespondRequest true "Decision"
// @Success 200 {object} call.RespondResponse
// @Router /v1/calls/{id}/respond [post]
func (h *CallHandler) Respond(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid call id"))
	}

	var req calldto.RespondRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	accept := req.Response == string(entities.CallStatusAccepted)
	out, err := h.scheduler.Respond(c.Request().Context(), callID, user, accept)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, calldto.RespondResponse{
		CallID:       out.Call.ID,
		Status:       req.Response,
		SessionToken: out.SessionToken,
	})
}

// Join godoc
// @Summary Join an accepted call inside its join window
// @Tags calls
// @Produce json
// @Security BearerAuth
// @Param id path string true "Call ID"
// @Success 200 {object} call.JoinResponse
// @Router /v1/calls/{id}/join [post]
func (h *CallHandler) Join(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid call id"))
	}

	out, err := h.coordinator.Join(c.Request().Context(), callID, user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, calldto.JoinResponse{
		SessionID:       out.Session.ID,
		SessionToken:    out.SessionToken,
		Party:           string(out.Party),
		Status:          string(out.Session.Status),
		BothJoined:      out.BothJoined,
		CallActive:      out.CallActive,
		ScheduledDate:   out.ScheduledDate,
		ScheduledTime:   out.ScheduledTime,
		DurationMinutes: out.DurationMinutes,
	})
}

// PostTranscription godoc
// @Summary Submit a live utterance for screening
// @Tags calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body call.TranscriptionRequest true "Utterance"
// @Success 200 {object} call.TranscriptionResponse
// @Router /v1/sessions/{id}/transcription [post]
func (h *CallHandler) PostTranscription(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid session id"))
	}

	var req calldto.TranscriptionRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	out, err := h.monitor.Append(c.Request().Context(), call.AppendInput{
		SessionID:  sessionID,
		Speaker:    user,
		Text:       req.Text,
		Confidence: req.Confidence,
		IsFinal:    req.IsFinal,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, calldto.TranscriptionResponse{
		ViolationDetected: out.ViolationDetected,
		CallEnded:         out.CallEnded,
		Message:           out.Message,
	})
}

// GetTranscript godoc
// @Summary Retrieve the session transcript
// @Tags calls
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {array} call.SegmentResponse
// @Router /v1/sessions/{id}/transcription [get]
func (h *CallHandler) GetTranscript(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid session id"))
	}

	segments, err := h.monitor.Transcript(c.Request().Context(), sessionID, user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	responses := make([]calldto.SegmentResponse, 0, len(segments))
	for _, segment := range segments {
		responses = append(responses, calldto.SegmentResponse{
			ID:                segment.ID,
			Speaker:           segment.Speaker,
			Text:              segment.Text,
			Confidence:        segment.Confidence,
			IsFinal:           segment.IsFinal,
			ViolationDetected: segment.ViolationDetected,
			AnalysisNote:      segment.AnalysisNote,
			Timestamp:         segment.Timestamp,
		})
	}
	return HandleSuccess(c, responses)
}

// Report godoc
// @Summary File a manual violation report during a call
// @Tags calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body call.ReportViolationRequest true "Report details"
// @Success 201 {object} entities.CallReport
// @Router /v1/sessions/{id}/report [post]
func (h *CallHandler) Report(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid session id"))
	}

	var req calldto.ReportViolationRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	report, err := h.monitor.Report(c.Request().Context(), call.ReportInput{
		SessionID:   sessionID,
		Reporter:    user,
		ReportType:  req.ReportType,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(c, report)
}

// End godoc
// @Summary End an active call session
// @Tags calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body call.EndCallRequest false "End reason"
// @Success 200 {object} call.EndCallResponse
// @Router /v1/sessions/{id}/end [post]
func (h *CallHandler) End(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid session id"))
	}

	var req calldto.EndCallRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid request body"))
	}

	out, err := h.coordinator.End(c.Request().Context(), sessionID, user, req.Reason)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, calldto.EndCallResponse{
		SessionID:         sessionID,
		DurationSeconds:   out.DurationSeconds,
		AnalysisCompleted: out.AnalysisCompleted,
	})
}

// GetAnalysis godoc
// @Summary Retrieve the post-call analysis
// @Tags calls
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} entities.CallAnalysis
// @Router /v1/sessions/{id}/analysis [get]
func (h *CallHandler) GetAnalysis(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid session id"))
	}

	analysis, err := h.monitor.Analysis(c.Request().Context(), sessionID, user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, analysis)
}
