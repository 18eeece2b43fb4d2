package validator

import (
	"testing"

	"github.com/futig/issue-assistant/internal/config"
	"github.com/futig/issue-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestValidateDocument(t *testing.T) {
	v := NewValidator(config.FileUploadConfig{MaxFileSize: 1024})

	assert.NoError(t, v.ValidateDocument("crash.log.TXT", 10))
	assert.NoError(t, v.ValidateDocument("manual.pdf", 1024))
	assert.ErrorIs(t, v.ValidateDocument("notes.docx", 10), entity.ErrUnsupportedFileType)
	assert.ErrorIs(t, v.ValidateDocument("README", 10), entity.ErrUnsupportedFileType)
	assert.ErrorIs(t, v.ValidateDocument("big.pdf", 1025), entity.ErrFileTooLarge)
	assert.ErrorIs(t, v.ValidateDocument("", 1), entity.ErrMissingField)
}

func TestValidateQuestion(t *testing.T) {
	v := NewValidator(config.FileUploadConfig{})

	assert.NoError(t, v.ValidateQuestion(&entity.AskQuestionRequest{Question: "why?"}))
	assert.ErrorIs(t, v.ValidateQuestion(&entity.AskQuestionRequest{Question: " \n"}), entity.ErrMissingField)
}

func TestValidateSettings(t *testing.T) {
	v := NewValidator(config.FileUploadConfig{})
	empty := ""
	on := true

	assert.ErrorIs(t, v.ValidateSettings(&entity.UpdateSettingsRequest{}), entity.ErrMissingField)
	assert.ErrorIs(t, v.ValidateSettings(&entity.UpdateSettingsRequest{Model: &empty}), entity.ErrInvalidParameter)
	assert.NoError(t, v.ValidateSettings(&entity.UpdateSettingsRequest{UseHistory: &on}))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "crash_report_1.pdf", SanitizeFilename("../tmp/crash report (1).pdf"))
}
