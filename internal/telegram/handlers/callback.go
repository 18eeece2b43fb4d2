package handlers

import (
	"context"
	"fmt"

	"github.com/futig/issue-assistant/internal/telegram/keyboard"
	"github.com/futig/issue-assistant/internal/telegram/render"
)

// HandleCallback applies an inline keyboard choice
func (h *Handler) HandleCallback(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		h.sender.AnswerCallback(msg.CallbackID, "❌ Invalid data")
		return nil
	}
	h.sender.AnswerCallback(msg.CallbackID, "")

	conv, err := h.conversation(ctx, msg.ChatID)
	if err != nil {
		return err
	}

	switch data.Action {
	case keyboard.ActionModel:
		return h.selectModel(ctx, msg.ChatID, conv.ID, data.Value)
	case keyboard.ActionHistory:
		return h.setHistory(ctx, msg.ChatID, conv.ID, data.Value == "on")
	case keyboard.ActionReset:
		if _, err := h.assistant.Reset(ctx, conv.ID); err != nil {
			return fmt.Errorf("reset conversation: %w", err)
		}
		h.send(msg.ChatID, render.MsgResetDone, nil)
		return nil
	default:
		return fmt.Errorf("unknown callback action %q", data.Action)
	}
}
