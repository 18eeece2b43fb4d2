package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/futig/issue-assistant/internal/config"
	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/pkg/formatter"
	"github.com/futig/issue-assistant/internal/pkg/response"
	"github.com/futig/issue-assistant/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	conversations map[string]*entity.Conversation
	askResult     *entity.TurnResult
	askErr        error
	settingsReq   *entity.UpdateSettingsRequest
}

func newFakeAssistant() *fakeAssistant {
	return &fakeAssistant{conversations: map[string]*entity.Conversation{}}
}

func (f *fakeAssistant) NewConversation(_ context.Context, model string, useHistory *bool) (*entity.Conversation, error) {
	if model == "" {
		model = "mistral-large2"
	}
	if model != "mistral-large2" && model != "llama3.1-70b" {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedModel, model)
	}
	use := true
	if useHistory != nil {
		use = *useHistory
	}
	conv := entity.NewConversation("c-1", model, use)
	f.conversations[conv.ID] = conv
	return conv, nil
}

func (f *fakeAssistant) GetConversation(_ context.Context, id string) (*entity.Conversation, error) {
	conv, ok := f.conversations[id]
	if !ok {
		return nil, entity.ErrConversationNotFound
	}
	return conv, nil
}

func (f *fakeAssistant) Ask(ctx context.Context, id, question string) (*entity.TurnResult, error) {
	conv, err := f.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.askErr != nil {
		return nil, f.askErr
	}
	conv.Append(entity.RoleUser, question)
	if f.askResult.Err == nil {
		conv.Append(entity.RoleAssistant, f.askResult.Response)
		conv.RecordFeedback(entity.FeedbackRecord{Name: "Answer Relevance", Score: 1})
	}
	return f.askResult, nil
}

func (f *fakeAssistant) Reset(ctx context.Context, id string) (*entity.Conversation, error) {
	conv, err := f.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := conv.Reset(); err != nil {
		return nil, err
	}
	return conv, nil
}

func (f *fakeAssistant) UpdateSettings(ctx context.Context, id string, req *entity.UpdateSettingsRequest) (*entity.Conversation, error) {
	conv, err := f.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	f.settingsReq = req
	if req.Model != nil {
		conv.SetModel(*req.Model)
	}
	if req.UseHistory != nil {
		conv.SetUseHistory(*req.UseHistory)
	}
	return conv, nil
}

func (f *fakeAssistant) Feedback(ctx context.Context, id string) ([]entity.FeedbackRecord, error) {
	conv, err := f.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	return conv.Feedback(), nil
}

func (f *fakeAssistant) Transcript(ctx context.Context, id string, format entity.ResultFormat) ([]byte, formatter.Formatter, error) {
	conv, err := f.GetConversation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	fmtr, err := formatter.NewFactory().Create(format)
	if err != nil {
		return nil, nil, err
	}
	data, err := fmtr.Format(formatter.Transcript{Turns: conv.Turns()})
	return data, fmtr, err
}

func (f *fakeAssistant) Models() []string {
	return []string{"mistral-large2", "llama3.1-70b"}
}

func newTestRouter(fake *fakeAssistant) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(fake, validator.NewValidator(config.FileUploadConfig{MaxFileSize: 1024})))
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateConversation(t *testing.T) {
	t.Run("empty body uses defaults", func(t *testing.T) {
		rec := do(t, newTestRouter(newFakeAssistant()), http.MethodPost, "/conversations/", "")
		require.Equal(t, http.StatusCreated, rec.Code)

		dto := decode[entity.ConversationDTO](t, rec)
		assert.Equal(t, "c-1", dto.ID)
		assert.Equal(t, "mistral-large2", dto.Model)
		assert.True(t, dto.UseHistory)
		assert.Equal(t, entity.TurnStateIdle, dto.State)
	})

	t.Run("explicit settings", func(t *testing.T) {
		rec := do(t, newTestRouter(newFakeAssistant()), http.MethodPost, "/conversations/",
			`{"model":"llama3.1-70b","use_history":false}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		dto := decode[entity.ConversationDTO](t, rec)
		assert.Equal(t, "llama3.1-70b", dto.Model)
		assert.False(t, dto.UseHistory)
	})

	t.Run("unsupported model", func(t *testing.T) {
		rec := do(t, newTestRouter(newFakeAssistant()), http.MethodPost, "/conversations/", `{"model":"gpt-x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(t, newTestRouter(newFakeAssistant()), http.MethodPost, "/conversations/", `{"model":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetConversation_NotFound(t *testing.T) {
	rec := do(t, newTestRouter(newFakeAssistant()), http.MethodGet, "/conversations/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decode[response.ErrorResponse](t, rec)
	assert.Equal(t, http.StatusText(http.StatusNotFound), body.Error)
	assert.Equal(t, "conversation not found", body.Message)
}

func TestAskQuestion(t *testing.T) {
	t.Run("answer with feedback", func(t *testing.T) {
		fake := newFakeAssistant()
		fake.askResult = &entity.TurnResult{
			Response: "Restart the service.",
			Feedback: map[string]float64{"Answer Relevance": 1},
		}
		router := newTestRouter(fake)
		do(t, router, http.MethodPost, "/conversations/", "")

		rec := do(t, router, http.MethodPost, "/conversations/c-1/questions", `{"question":"Why does it crash?"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		dto := decode[entity.AnswerDTO](t, rec)
		assert.Equal(t, "Restart the service.", dto.Response)
		assert.Empty(t, dto.Error)
		assert.InDelta(t, 1.0, dto.Feedback["Answer Relevance"], 1e-9)
		assert.NotNil(t, dto.EvaluatedAt)
	})

	t.Run("turn failure is reported in the body", func(t *testing.T) {
		fake := newFakeAssistant()
		fake.askResult = &entity.TurnResult{Err: entity.ErrCompletionFailed}
		router := newTestRouter(fake)
		do(t, router, http.MethodPost, "/conversations/", "")

		rec := do(t, router, http.MethodPost, "/conversations/c-1/questions", `{"question":"hi"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		dto := decode[entity.AnswerDTO](t, rec)
		assert.Equal(t, entity.ErrCompletionFailed.Error(), dto.Error)
		assert.Empty(t, dto.Response)
		assert.Nil(t, dto.EvaluatedAt)
	})

	t.Run("blank question", func(t *testing.T) {
		fake := newFakeAssistant()
		router := newTestRouter(fake)
		do(t, router, http.MethodPost, "/conversations/", "")

		rec := do(t, router, http.MethodPost, "/conversations/c-1/questions", `{"question":"   "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("turn in progress", func(t *testing.T) {
		fake := newFakeAssistant()
		fake.askErr = entity.ErrTurnInProgress
		router := newTestRouter(fake)
		do(t, router, http.MethodPost, "/conversations/", "")

		rec := do(t, router, http.MethodPost, "/conversations/c-1/questions", `{"question":"hi"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unexpected failure", func(t *testing.T) {
		fake := newFakeAssistant()
		fake.askErr = errors.New("boom")
		router := newTestRouter(fake)
		do(t, router, http.MethodPost, "/conversations/", "")

		rec := do(t, router, http.MethodPost, "/conversations/c-1/questions", `{"question":"hi"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "boom")
	})
}

func TestResetConversation(t *testing.T) {
	fake := newFakeAssistant()
	fake.askResult = &entity.TurnResult{Response: "ok"}
	router := newTestRouter(fake)
	do(t, router, http.MethodPost, "/conversations/", "")
	do(t, router, http.MethodPost, "/conversations/c-1/questions", `{"question":"hi"}`)

	rec := do(t, router, http.MethodPost, "/conversations/c-1/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decode[entity.ConversationDTO](t, rec)
	assert.Empty(t, dto.Turns)
	assert.Equal(t, entity.TurnStateIdle, dto.State)
}

func TestResetConversation_WhileAnswering(t *testing.T) {
	fake := newFakeAssistant()
	router := newTestRouter(fake)
	do(t, router, http.MethodPost, "/conversations/", "")
	fake.conversations["c-1"].Append(entity.RoleUser, "hi")
	require.NoError(t, fake.conversations["c-1"].Begin())

	rec := do(t, router, http.MethodPost, "/conversations/c-1/reset", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, fake.conversations["c-1"].Turns(), 1)
}

func TestUpdateSettings(t *testing.T) {
	t.Run("toggle history", func(t *testing.T) {
		fake := newFakeAssistant()
		router := newTestRouter(fake)
		do(t, router, http.MethodPost, "/conversations/", "")

		rec := do(t, router, http.MethodPatch, "/conversations/c-1/settings", `{"use_history":false}`)
		require.Equal(t, http.StatusOK, rec.Code)

		dto := decode[entity.ConversationDTO](t, rec)
		assert.False(t, dto.UseHistory)
		assert.Nil(t, fake.settingsReq.Model)
	})

	t.Run("empty patch", func(t *testing.T) {
		fake := newFakeAssistant()
		router := newTestRouter(fake)
		do(t, router, http.MethodPost, "/conversations/", "")

		rec := do(t, router, http.MethodPatch, "/conversations/c-1/settings", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, fake.settingsReq)
	})
}

func TestGetFeedback(t *testing.T) {
	fake := newFakeAssistant()
	fake.askResult = &entity.TurnResult{Response: "ok"}
	router := newTestRouter(fake)
	do(t, router, http.MethodPost, "/conversations/", "")
	do(t, router, http.MethodPost, "/conversations/c-1/questions", `{"question":"hi"}`)

	rec := do(t, router, http.MethodGet, "/conversations/c-1/feedback", "")
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decode[entity.FeedbackHistoryDTO](t, rec)
	assert.Equal(t, "c-1", dto.ConversationID)
	require.Len(t, dto.Records, 1)
	assert.Equal(t, "Answer Relevance", dto.Records[0].Name)
}

func TestGetTranscript(t *testing.T) {
	fake := newFakeAssistant()
	fake.askResult = &entity.TurnResult{Response: "Check the logs."}
	router := newTestRouter(fake)
	do(t, router, http.MethodPost, "/conversations/", "")
	do(t, router, http.MethodPost, "/conversations/c-1/questions", `{"question":"Why 500?"}`)

	t.Run("markdown by default", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/conversations/c-1/transcript", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="conversation-c-1.md"`, rec.Header().Get("Content-Disposition"))
		assert.Contains(t, rec.Body.String(), "Check the logs.")
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/conversations/c-1/transcript?format=html", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/conversations/nope/transcript?format=pdf", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListModels(t *testing.T) {
	rec := do(t, newTestRouter(newFakeAssistant()), http.MethodGet, "/models", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"mistral-large2", "llama3.1-70b"}, body["models"])
}
