package handlers

import (
	"context"
	"fmt"

	"github.com/futig/issue-assistant/internal/telegram/render"
)

// HandleDocument extracts the text of an attached PDF or TXT file and echoes it.
// Failures are shown to the user and never touch the conversation.
func (h *Handler) HandleDocument(ctx context.Context, msg *Message) error {
	if msg.Document == nil {
		return nil
	}

	data, err := h.downloader.Download(ctx, msg.Document.FileID)
	if err != nil {
		h.sendError(ctx, msg.ChatID, "failed to download document", err)
		return nil
	}

	doc, err := h.documents.Extract(ctx, msg.Document.FileName, data)
	if err != nil {
		h.sendError(ctx, msg.ChatID, "failed to extract document", err)
		return nil
	}

	h.send(msg.ChatID, fmt.Sprintf(render.MsgExtractedHeader, doc.Filename)+doc.Text, nil)
	return nil
}
