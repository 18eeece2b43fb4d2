package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/issue-assistant/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// HandleQuestion runs one assistant turn for a text message
func (h *Handler) HandleQuestion(ctx context.Context, msg *Message) error {
	if strings.TrimSpace(msg.Text) == "" {
		return nil
	}

	conv, err := h.conversation(ctx, msg.ChatID)
	if err != nil {
		return err
	}

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)
	result, err := h.assistant.Ask(ctx, conv.ID, msg.Text)
	typing.Stop()

	if err != nil {
		h.sendError(ctx, msg.ChatID, "question rejected", err)
		return nil
	}

	if result.Err != nil {
		ctxzap.Warn(ctx, "turn failed", zap.Error(result.Err), zap.String("conversation_id", conv.ID))
		h.send(msg.ChatID, fmt.Sprintf(render.ErrAnswerFailed, result.Err.Error()), h.keyboard.ResetKeyboard())
		return nil
	}

	h.send(msg.ChatID, result.Response, nil)
	if scores := render.Scores(result.Feedback); scores != "" {
		h.send(msg.ChatID, scores, nil)
	}
	return nil
}
