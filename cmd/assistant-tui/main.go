package main

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/futig/issue-assistant/internal/builder"
	"github.com/futig/issue-assistant/internal/tui"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	terminal, err := builder.BuildTerminal(ctx)
	if err != nil {
		log.Fatal("Failed to build terminal UI:", err)
	}
	defer terminal.Close()

	model := tui.New(ctx, terminal.Assistant, terminal.Conversation, terminal.Title)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		terminal.Logger.Error("terminal UI stopped", zap.Error(err))
		log.Fatal("Terminal UI error:", err)
	}
}
