package keyboard

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Builder creates inline keyboards
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// ModelKeyboard lists the allowed models, one per row, marking the current one
func (b *Builder) ModelKeyboard(models []string, current string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(models))
	for _, model := range models {
		label := model
		if model == current {
			label = "✅ " + model
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallback(ActionModel, model)),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// HistoryKeyboard offers the opposite of the current history setting
func (b *Builder) HistoryKeyboard(enabled bool) tgbotapi.InlineKeyboardMarkup {
	button := tgbotapi.NewInlineKeyboardButtonData("🧠 Use chat history", EncodeCallback(ActionHistory, "on"))
	if enabled {
		button = tgbotapi.NewInlineKeyboardButtonData("🚫 Ignore chat history", EncodeCallback(ActionHistory, "off"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(button))
}

// ResetKeyboard is attached to failed answers so the user can start over
func (b *Builder) ResetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", EncodeCallback(ActionReset, "confirm")),
		),
	)
}
