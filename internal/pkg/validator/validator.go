package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/issue-assistant/internal/config"
	"github.com/futig/issue-assistant/internal/entity"
)

var AllowedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
}

// Validator validates surface input before it reaches the use cases
type Validator struct {
	cfg config.FileUploadConfig
}

func NewValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateDocument checks the extension and size of an uploaded document
func (v *Validator) ValidateDocument(filename string, size int64) error {
	if filename == "" {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("%w: %q (allowed: pdf, txt)", entity.ErrUnsupportedFileType, ext)
	}

	if size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, filename, size, v.cfg.MaxFileSize)
	}

	return nil
}

func (v *Validator) ValidateQuestion(req *entity.AskQuestionRequest) error {
	if strings.TrimSpace(req.Question) == "" {
		return fmt.Errorf("%w: question", entity.ErrMissingField)
	}
	return nil
}

func (v *Validator) ValidateSettings(req *entity.UpdateSettingsRequest) error {
	if req.Model == nil && req.UseHistory == nil {
		return fmt.Errorf("%w: model or use_history", entity.ErrMissingField)
	}
	if req.Model != nil && *req.Model == "" {
		return fmt.Errorf("%w: model must not be empty", entity.ErrInvalidParameter)
	}
	return nil
}

// SanitizeFilename strips directories and characters that are awkward in stage paths
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}
