package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/errors"
	convdto "github.com/kindcoach/kindcoach-api/internal/adapter/dto/conversation"
	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	"github.com/kindcoach/kindcoach-api/internal/usecase/analysis"
	"github.com/kindcoach/kindcoach-api/internal/usecase/classifier"
	"github.com/kindcoach/kindcoach-api/internal/usecase/pipeline"
)

// Conversation handles conversation upload, analysis and export requests
type Conversation struct {
	pipeline *pipeline.Service
	sessions *analysis.Manager
	logger   *zap.Logger
}

// NewConversation creates a new conversation handler
func NewConversation(pipelineService *pipeline.Service, sessions *analysis.Manager, logger *zap.Logger) *Conversation {
	return &Conversation{
		pipeline: pipelineService,
		sessions: sessions,
		logger:   logger,
	}
}

// owner returns the authenticated username set by the auth middleware.
func owner(c echo.Context) (string, error) {
	username, ok := c.Get("username").(string)
	if !ok || username == "" {
		return "", errors.ErrUnauthenticated()
	}
	return username, nil
}

// Upload runs the full pipeline on an uploaded recording
// @Summary      Upload and analyze a recording
// @Description  Transcribes the audio, assigns teacher/child roles and runs the comprehensive analysis
// @Tags         Conversations
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        audio  formData  file  true  "Audio file (wav/mp3/m4a/flac/ogg/wma/aac, max 50MB)"
// @Success      201  {object}  entities.ConversationSession
// @Failure      400  {object}  map[string]interface{}  "Invalid upload"
// @Failure      422  {object}  map[string]interface{}  "Role classification rejected the recording"
// @Router       /conversations [post]
func (h *Conversation) Upload(c echo.Context) error {
	username, err := owner(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req convdto.UploadRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrUploadInvalid("오디오 파일이 없습니다."))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer src.Close()

	metadata := entities.ConversationMetadata{
		TeacherName:   req.TeacherName,
		ChildName:     req.ChildName,
		ChildAge:      req.ChildAge,
		SituationType: req.SituationType,
		Purpose:       req.Purpose,
		Description:   req.Description,
	}

	session, err := h.pipeline.ProcessUpload(
		c.Request().Context(),
		username,
		fileHeader.Filename,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
		src,
		metadata,
	)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusCreated, session)
}

// List returns conversation summaries for the operator
// @Summary      List conversations
// @Tags         Conversations
// @Produce      json
// @Security     BearerAuth
// @Param        q    query  string  false  "Keyword search"
// @Param        all  query  bool    false  "List conversations of every owner"
// @Success      200  {object}  convdto.ListResponse
// @Router       /conversations [get]
func (h *Conversation) List(c echo.Context) error {
	username, err := owner(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req convdto.ListRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	ctx := c.Request().Context()
	var summaries []entities.ConversationSummary
	switch {
	case req.All:
		summaries, err = h.sessions.ListAll(ctx)
	case req.Query != "":
		summaries, err = h.sessions.Search(ctx, username, req.Query)
	default:
		summaries, err = h.sessions.List(ctx, username)
	}
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, convdto.ListResponse{
		Total:         len(summaries),
		Conversations: summaries,
	})
}

// Get returns the full conversation document
// @Summary      Get a conversation
// @Tags         Conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  convdto.DetailResponse
// @Failure      404  {object}  map[string]interface{}  "Conversation not found"
// @Router       /conversations/{id} [get]
func (h *Conversation) Get(c echo.Context) error {
	username, err := owner(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	session, err := h.sessions.GetSession(c.Request().Context(), username, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, convdto.DetailResponse{
		ConversationSession: session,
		SpeakingBalance:     classifier.CalculateSpeakingBalance(session.RoleAssignment),
	})
}

// Delete removes a conversation document
// @Summary      Delete a conversation
// @Tags         Conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Conversation ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /conversations/{id} [delete]
func (h *Conversation) Delete(c echo.Context) error {
	username, err := owner(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	conversationID := c.Param("id")
	if err := h.sessions.Delete(c.Request().Context(), username, conversationID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, map[string]string{
		"conversation_id": conversationID,
	})
}

// Status reports which analyses have completed
// @Summary      Conversation completion status
// @Tags         Conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Conversation ID"
// @Success      200  {object}  convdto.StatusResponse
// @Router       /conversations/{id}/status [get]
func (h *Conversation) Status(c echo.Context) error {
	username, err := owner(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	session, err := h.sessions.GetSession(c.Request().Context(), username, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, convdto.StatusResponse{
		ConversationID: session.ConversationID,
		Complete:       session.IsComplete(),
		Analyses:       session.CompletionMap(),
	})
}

// RunAnalysis runs or re-runs one analysis kind
// @Summary      Run an analysis
// @Tags         Conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "Conversation ID"
// @Param        kind  path  string  true  "Analysis kind"
// @Success      200  {object}  entities.AnalysisResult
// @Router       /conversations/{id}/analyses/{kind} [post]
func (h *Conversation) RunAnalysis(c echo.Context) error {
	username, err := owner(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	kind := entities.AnalysisKind(c.Param("kind"))
	result, err := h.pipeline.RunAnalysis(c.Request().Context(), username, c.Param("id"), kind)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, result)
}

// GetAnalysis returns a stored analysis result
// @Summary      Get an analysis result
// @Tags         Conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "Conversation ID"
// @Param        kind  path  string  true  "Analysis kind"
// @Success      200  {object}  entities.AnalysisResult
// @Router       /conversations/{id}/analyses/{kind} [get]
func (h *Conversation) GetAnalysis(c echo.Context) error {
	username, err := owner(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if !entities.IsValidAnalysisKind(c.Param("kind")) {
		return HandleError(h.logger, c, entities.ErrInvalidAnalysisKind)
	}
	kind := entities.AnalysisKind(c.Param("kind"))

	result, err := h.sessions.GetResult(c.Request().Context(), username, c.Param("id"), kind)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, result)
}

// Export downloads the conversation as a report
// @Summary      Export a conversation
// @Description  Downloads the analysis document as JSON or as a plain-text report
// @Tags         Conversations
// @Produce      json
// @Produce      plain
// @Security     BearerAuth
// @Param        id      path   string  true   "Conversation ID"
// @Param        format  query  string  false  "json or txt"  default(json)
// @Success      200
// @Router       /conversations/{id}/export [get]
func (h *Conversation) Export(c echo.Context) error {
	username, err := owner(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	session, err := h.sessions.GetSession(c.Request().Context(), username, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}

	switch format {
	case "json":
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="%s.json"`, session.ConversationID))
		return c.JSON(http.StatusOK, session)
	case "txt":
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="%s.txt"`, session.ConversationID))
		return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(analysis.ExportText(session)))
	default:
		return HandleError(h.logger, c, errors.ErrInvalidArgument("format must be json or txt"))
	}
}
