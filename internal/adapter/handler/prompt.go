package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/errors"
	promptdto "github.com/kindcoach/kindcoach-api/internal/adapter/dto/prompt"
	promptuse "github.com/kindcoach/kindcoach-api/internal/usecase/prompt"
)

// Prompt handles the prompt editor backend
type Prompt struct {
	prompts *promptuse.Manager
	logger  *zap.Logger
}

// NewPrompt creates a new prompt handler
func NewPrompt(prompts *promptuse.Manager, logger *zap.Logger) *Prompt {
	return &Prompt{
		prompts: prompts,
		logger:  logger,
	}
}

// List returns all prompt templates
// @Summary      List prompt templates
// @Tags         Prompts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  promptdto.ListResponse
// @Router       /prompts [get]
func (h *Prompt) List(c echo.Context) error {
	return HandleSuccess(h.logger, c, http.StatusOK, promptdto.ListResponse{
		Prompts: h.prompts.GetAll(),
	})
}

// Get returns one prompt template
// @Summary      Get a prompt template
// @Tags         Prompts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Prompt ID"
// @Success      200  {object}  entities.PromptTemplate
// @Router       /prompts/{id} [get]
func (h *Prompt) Get(c echo.Context) error {
	info, err := h.prompts.GetInfo(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, info)
}

// Update replaces a prompt template after validating it
// @Summary      Update a prompt template
// @Tags         Prompts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                   true  "Prompt ID"
// @Param        request  body  promptdto.UpdateRequest  true  "New template"
// @Success      200  {object}  entities.PromptTemplate
// @Failure      400  {object}  map[string]interface{}  "Template failed validation"
// @Router       /prompts/{id} [put]
func (h *Prompt) Update(c echo.Context) error {
	var req promptdto.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	promptID := c.Param("id")
	modifiedBy := req.ModifiedBy
	if modifiedBy == "" {
		if username, ok := c.Get("username").(string); ok {
			modifiedBy = username
		}
	}

	if err := h.prompts.Update(promptID, req.Template, modifiedBy); err != nil {
		return HandleError(h.logger, c, err)
	}

	info, err := h.prompts.GetInfo(promptID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, info)
}

// Validate checks a candidate template without saving it
// @Summary      Validate a prompt template
// @Tags         Prompts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                     true  "Prompt ID"
// @Param        request  body  promptdto.ValidateRequest  true  "Candidate template"
// @Success      200  {object}  entities.PromptValidation
// @Router       /prompts/{id}/validate [post]
func (h *Prompt) Validate(c echo.Context) error {
	var req promptdto.ValidateRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	validation := h.prompts.Validate(c.Param("id"), req.Template)
	return HandleSuccess(h.logger, c, http.StatusOK, validation)
}

// ListBackups lists stored prompt backups, newest first
// @Summary      List prompt backups
// @Tags         Prompts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  promptdto.BackupsResponse
// @Router       /prompts/backups [get]
func (h *Prompt) ListBackups(c echo.Context) error {
	backups, err := h.prompts.ListBackups()
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, promptdto.BackupsResponse{Backups: backups})
}

// Restore replaces the live prompts with a stored backup
// @Summary      Restore a prompt backup
// @Tags         Prompts
// @Produce      json
// @Security     BearerAuth
// @Param        filename  path  string  true  "Backup filename"
// @Success      200  {object}  map[string]interface{}
// @Router       /prompts/backups/{filename}/restore [post]
func (h *Prompt) Restore(c echo.Context) error {
	filename := c.Param("filename")
	if err := h.prompts.Restore(filename); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, map[string]string{
		"restored": filename,
	})
}
