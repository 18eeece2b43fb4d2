package document

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/ledongthuc/pdf"
)

// extractPDF concatenates the plain text of every page, with newlines turned into spaces
func extractPDF(content []byte) (text string, err error) {
	// the reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed pdf: %v", entity.ErrFileParse, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %w", entity.ErrFileParse, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", entity.ErrFileParse, i, err)
		}
		b.WriteString(strings.ReplaceAll(pageText, "\n", " "))
	}

	return strings.TrimSpace(b.String()), nil
}

func extractTXT(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", entity.ErrFileParse)
	}
	return strings.TrimSpace(string(content)), nil
}
