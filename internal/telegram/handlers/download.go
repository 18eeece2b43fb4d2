package handlers

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/futig/issue-assistant/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const downloadTimeout = 30 * time.Second

// FileDownloader downloads message attachments from the Telegram file API
type FileDownloader struct {
	bot         *tgbotapi.BotAPI
	client      *http.Client
	maxFileSize int64
}

var _ Downloader = &FileDownloader{}

func NewFileDownloader(bot *tgbotapi.BotAPI, maxFileSize int64) *FileDownloader {
	return &FileDownloader{
		bot: bot,
		client: &http.Client{
			Timeout: downloadTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		maxFileSize: maxFileSize,
	}
}

func (d *FileDownloader) Download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := d.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file info: %w", err)
	}

	if int64(file.FileSize) > d.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", entity.ErrFileTooLarge, file.FileSize, d.maxFileSize)
	}

	fileURL := file.Link(d.bot.Token)
	parsedURL, err := url.Parse(fileURL)
	if err != nil {
		return nil, fmt.Errorf("invalid file URL: %w", err)
	}
	if parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("insecure URL scheme: %s (expected https)", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file data: %w", err)
	}
	if int64(len(data)) > d.maxFileSize {
		return nil, fmt.Errorf("%w: more than %d bytes", entity.ErrFileTooLarge, d.maxFileSize)
	}

	return data, nil
}
