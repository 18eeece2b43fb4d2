package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "row wrapper", raw: "Row(RESPONSE=Restart the app.)", want: "Restart the app."},
		{name: "wrapper with padding", raw: "  Row(RESPONSE=  Restart  )  ", want: "Restart"},
		{name: "escaped paragraph break", raw: `Row(RESPONSE=First.\n\nSecond.)`, want: "First. Second."},
		{name: "real newlines", raw: "First.\n\nSecond.\nThird.", want: "First. Second. Third."},
		{name: "nested wrapper", raw: "Row(RESPONSE=Row(RESPONSE=x))", want: "x"},
		{name: "no wrapper", raw: "plain text", want: "plain text"},
		{name: "unterminated wrapper kept", raw: "Row(RESPONSE=abc", want: "Row(RESPONSE=abc"},
		{name: "empty response", raw: "Row(RESPONSE=)", want: ""},
		{name: "only newlines", raw: "\n\n\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.raw))
		})
	}
}

func TestCleanResponse_Idempotent(t *testing.T) {
	fragment := rapid.SampledFrom([]string{
		"Row(RESPONSE=", ")", `\n\n`, `\n`, "\n\n", "\n", " ", "\t", "\\", "n", "a", "Row", "RESPONSE=", "(",
	})

	rapid.Check(t, func(t *rapid.T) {
		parts := rapid.SliceOf(rapid.OneOf(fragment, rapid.String())).Draw(t, "parts")
		raw := ""
		for _, p := range parts {
			raw += p
		}

		once := CleanResponse(raw)
		if twice := CleanResponse(once); twice != once {
			t.Fatalf("not idempotent for %q: %q != %q", raw, twice, once)
		}
	})
}

func TestCleanResponse_NoNewlinesLeft(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.String().Draw(t, "raw")
		cleaned := CleanResponse(raw)
		for _, r := range cleaned {
			if r == '\n' {
				t.Fatalf("newline left in %q", cleaned)
			}
		}
	})
}
