package entity

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// ParseResultFormat accepts the format names and the "md" shorthand
func ParseResultFormat(s string) (ResultFormat, bool) {
	if s == "md" {
		return FormatMarkdown, true
	}
	f := ResultFormat(s)
	return f, f.IsValid()
}

// ExtractedDocument is the plain text extracted from an uploaded file
type ExtractedDocument struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// StageDocument is a file available in the documents stage
type StageDocument struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}
