package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/pkg/logger"
	"github.com/futig/issue-assistant/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   AssistantUsecase
	validator Validator
}

func NewHandler(usecase AssistantUsecase, validator Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// CreateConversation handles POST /conversations
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateConversation")

	var req entity.CreateConversationRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	conversation, err := h.usecase.NewConversation(ctx, req.Model, req.UseHistory)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, toConversationDTO(conversation))
}

// GetConversation handles GET /conversations/{id}
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.conversationContext(r, "GetConversation")

	conversation, err := h.usecase.GetConversation(ctx, id)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toConversationDTO(conversation))
}

// AskQuestion handles POST /conversations/{id}/questions. Pipeline failures are
// reported in the body with 200, the conversation stays usable.
func (h *Handler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.conversationContext(r, "AskQuestion")

	var req entity.AskQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateQuestion(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	result, err := h.usecase.Ask(ctx, id, req.Question)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	conversation, err := h.usecase.GetConversation(ctx, id)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toAnswerDTO(id, conversation.State(), result, conversation.Feedback()))
}

// ResetConversation handles POST /conversations/{id}/reset
func (h *Handler) ResetConversation(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.conversationContext(r, "ResetConversation")

	conversation, err := h.usecase.Reset(ctx, id)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toConversationDTO(conversation))
}

// UpdateSettings handles PATCH /conversations/{id}/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.conversationContext(r, "UpdateSettings")

	var req entity.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSettings(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	conversation, err := h.usecase.UpdateSettings(ctx, id, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toConversationDTO(conversation))
}

// GetFeedback handles GET /conversations/{id}/feedback
func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.conversationContext(r, "GetFeedback")

	records, err := h.usecase.Feedback(ctx, id)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.FeedbackHistoryDTO{ConversationID: id, Records: records})
}

// GetTranscript handles GET /conversations/{id}/transcript?format=md|docx|pdf
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.conversationContext(r, "GetTranscript")

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(entity.FormatMarkdown)
	}

	format, ok := entity.ParseResultFormat(formatParam)
	if !ok {
		h.respondError(ctx, w, http.StatusBadRequest, "format must be one of md, docx, pdf",
			fmt.Errorf("%w: %s", entity.ErrInvalidFormat, formatParam))
		return
	}

	data, fmtr, err := h.usecase.Transcript(ctx, id, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Attachment(w, fmtr.ContentType(), "conversation-"+id+fmtr.FileExtension(), data)
}

// ListModels handles GET /models
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string][]string{"models": h.usecase.Models()})
}

func (h *Handler) conversationContext(r *http.Request, action string) (context.Context, string) {
	id := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("conversation_id", id),
		zap.String("action", action),
	)
	return ctx, id
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrConversationNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "conversation not found", err)
	case errors.Is(err, entity.ErrTurnInProgress):
		h.respondError(ctx, w, http.StatusConflict, "a question is already being answered", err)
	case errors.Is(err, entity.ErrUnsupportedModel):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrEmptyQuestion), errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidFormat), errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
