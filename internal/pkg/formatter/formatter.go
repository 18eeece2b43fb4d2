package formatter

import (
	"fmt"

	"github.com/futig/issue-assistant/internal/entity"
)

const defaultTitle = "Software Issue Assistant"

type Formatter interface {
	Format(transcript Transcript) ([]byte, error)
	ContentType() string
	FileExtension() string
}

// Transcript is a titled sequence of conversation turns ready for export
type Transcript struct {
	Title string
	Turns []entity.Turn
}

func (t Transcript) title() string {
	if t.Title == "" {
		return defaultTitle
	}
	return t.Title
}

func speaker(role entity.Role) string {
	if role == entity.RoleAssistant {
		return "Assistant"
	}
	return "User"
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidFormat, format)
	}
}
