package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// HandleCommand routes a bot command
func (h *Handler) HandleCommand(ctx context.Context, msg *Message) error {
	ctxzap.Info(ctx, "command received",
		zap.String("command", msg.Command),
		zap.Int64("chat_id", msg.ChatID),
	)

	switch msg.Command {
	case "start", "help":
		return h.handleStart(ctx, msg)
	case "reset":
		return h.handleReset(ctx, msg)
	case "model":
		return h.handleModel(ctx, msg)
	case "history":
		return h.handleHistory(ctx, msg)
	case "feedback":
		return h.handleFeedback(ctx, msg)
	case "docs":
		return h.handleDocs(ctx, msg)
	case "export":
		return h.handleExport(ctx, msg)
	default:
		h.send(msg.ChatID, render.ErrUnknownCommand, nil)
		return nil
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *Message) error {
	if _, err := h.conversation(ctx, msg.ChatID); err != nil {
		return err
	}
	h.send(msg.ChatID, render.MsgWelcome, nil)
	return nil
}

func (h *Handler) handleReset(ctx context.Context, msg *Message) error {
	conv, err := h.conversation(ctx, msg.ChatID)
	if err != nil {
		return err
	}
	if _, err := h.assistant.Reset(ctx, conv.ID); err != nil {
		return fmt.Errorf("reset conversation: %w", err)
	}
	h.send(msg.ChatID, render.MsgResetDone, nil)
	return nil
}

func (h *Handler) handleModel(ctx context.Context, msg *Message) error {
	conv, err := h.conversation(ctx, msg.ChatID)
	if err != nil {
		return err
	}

	model := strings.TrimSpace(msg.Args)
	if model == "" {
		current, _ := conv.Settings()
		h.send(msg.ChatID, fmt.Sprintf(render.MsgChooseModel, current), h.keyboard.ModelKeyboard(h.assistant.Models(), current))
		return nil
	}

	return h.selectModel(ctx, msg.ChatID, conv.ID, model)
}

func (h *Handler) selectModel(ctx context.Context, chatID int64, conversationID, model string) error {
	if _, err := h.assistant.SelectModel(ctx, conversationID, model); err != nil {
		if errors.Is(err, entity.ErrUnsupportedModel) {
			h.send(chatID, fmt.Sprintf(render.ErrUnsupportedModel, model), nil)
			return nil
		}
		return fmt.Errorf("select model: %w", err)
	}
	h.send(chatID, fmt.Sprintf(render.MsgModelSelected, model), nil)
	return nil
}

func (h *Handler) handleHistory(ctx context.Context, msg *Message) error {
	conv, err := h.conversation(ctx, msg.ChatID)
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(msg.Args)) {
	case "":
		_, enabled := conv.Settings()
		h.send(msg.ChatID, fmt.Sprintf(render.MsgHistoryState, render.HistoryLabel(enabled)), h.keyboard.HistoryKeyboard(enabled))
		return nil
	case "on":
		return h.setHistory(ctx, msg.ChatID, conv.ID, true)
	case "off":
		return h.setHistory(ctx, msg.ChatID, conv.ID, false)
	default:
		h.send(msg.ChatID, render.ErrHistoryUsage, nil)
		return nil
	}
}

func (h *Handler) setHistory(ctx context.Context, chatID int64, conversationID string, enabled bool) error {
	if _, err := h.assistant.SetUseHistory(ctx, conversationID, enabled); err != nil {
		return fmt.Errorf("set history: %w", err)
	}
	h.send(chatID, fmt.Sprintf(render.MsgHistoryState, render.HistoryLabel(enabled)), nil)
	return nil
}

func (h *Handler) handleFeedback(ctx context.Context, msg *Message) error {
	conv, err := h.conversation(ctx, msg.ChatID)
	if err != nil {
		return err
	}
	records, err := h.assistant.Feedback(ctx, conv.ID)
	if err != nil {
		return fmt.Errorf("get feedback: %w", err)
	}
	h.send(msg.ChatID, render.Feedback(records, feedbackLimit), nil)
	return nil
}

func (h *Handler) handleDocs(ctx context.Context, msg *Message) error {
	docs, err := h.documents.ListDocuments(ctx)
	if err != nil {
		ctxzap.Error(ctx, "failed to list documents", zap.Error(err))
		h.send(msg.ChatID, render.ErrDocumentsFailed, nil)
		return nil
	}
	h.send(msg.ChatID, render.Documents(docs), nil)
	return nil
}

func (h *Handler) handleExport(ctx context.Context, msg *Message) error {
	conv, err := h.conversation(ctx, msg.ChatID)
	if err != nil {
		return err
	}

	format := entity.FormatMarkdown
	if arg := strings.TrimSpace(msg.Args); arg != "" {
		parsed, ok := entity.ParseResultFormat(arg)
		if !ok {
			h.send(msg.ChatID, "Usage: /export md|docx|pdf", nil)
			return nil
		}
		format = parsed
	}

	data, fmtr, err := h.assistant.Transcript(ctx, conv.ID, format)
	if err != nil {
		return fmt.Errorf("export transcript: %w", err)
	}
	return h.sender.SendDocument(msg.ChatID, "conversation"+fmtr.FileExtension(), data)
}
