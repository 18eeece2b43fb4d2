package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/issue-assistant/internal/telegram"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// shutdownGrace bounds how long in-flight turns may finish after a signal
const shutdownGrace = 30 * time.Second

// App is the assembled HTTP API
type App struct {
	server *http.Server
	db     *pgxpool.Pool
	logger *zap.Logger
}

// Run serves until SIGINT/SIGTERM or a server error
func (a *App) Run() error {
	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		closeResources(a.db, a.logger)
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")

	err := a.server.Shutdown(ctx)
	if err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
	}

	closeResources(a.db, a.logger)
	a.logger.Info("Application stopped")
	return err
}

// BotApp is the assembled Telegram bot
type BotApp struct {
	bot    telegram.Bot
	db     *pgxpool.Pool
	logger *zap.Logger
}

// Run polls updates until SIGINT/SIGTERM, then lets in-flight turns finish
func (a *BotApp) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.bot.Start(ctx); err != nil {
		closeResources(a.db, a.logger)
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	err := a.bot.Stop()
	if err != nil {
		a.logger.Error("Bot shutdown error", zap.Error(err))
	}
	cancel()

	closeResources(a.db, a.logger)
	a.logger.Info("Telegram bot stopped")
	return err
}

func closeResources(db *pgxpool.Pool, logger *zap.Logger) {
	if db != nil {
		logger.Info("Closing database connections")
		db.Close()
	}
	_ = logger.Sync()
}
