package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/pkg/formatter"
	"github.com/futig/issue-assistant/internal/pkg/logger"
	"github.com/futig/issue-assistant/internal/pkg/metrics"
	"github.com/futig/issue-assistant/internal/repository"
	"github.com/futig/issue-assistant/internal/usecase/feedback"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

type Options struct {
	SlideWindow  int
	DefaultModel string
	UseHistory   bool
	Title        string
}

// AssistantUsecase runs question/response turns over explicitly passed conversations
type AssistantUsecase struct {
	conversations repository.ConversationRepository
	feedbackStore repository.FeedbackRepository
	retriever     *Retriever
	summarizer    *Summarizer
	completer     *Completer
	evaluator     FeedbackEvaluator
	catalog       *entity.ModelCatalog
	formatters    *formatter.Factory
	metrics       Metrics
	opts          Options
	logger        *zap.Logger
}

func NewUsecase(
	conversations repository.ConversationRepository,
	feedbackStore repository.FeedbackRepository,
	retriever *Retriever,
	summarizer *Summarizer,
	completer *Completer,
	evaluator FeedbackEvaluator,
	catalog *entity.ModelCatalog,
	formatters *formatter.Factory,
	metrics Metrics,
	opts Options,
	logger *zap.Logger,
) *AssistantUsecase {
	if opts.SlideWindow < 1 {
		opts.SlideWindow = entity.DefaultSlideWindow
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = catalog.Default()
	}

	return &AssistantUsecase{
		conversations: conversations,
		feedbackStore: feedbackStore,
		retriever:     retriever,
		summarizer:    summarizer,
		completer:     completer,
		evaluator:     evaluator,
		catalog:       catalog,
		formatters:    formatters,
		metrics:       metrics,
		opts:          opts,
		logger:        logger,
	}
}

// NewConversation creates and stores a conversation. Empty model and nil useHistory
// fall back to the configured defaults.
func (uc *AssistantUsecase) NewConversation(ctx context.Context, model string, useHistory *bool) (*entity.Conversation, error) {
	if model == "" {
		model = uc.opts.DefaultModel
	}
	if !uc.catalog.Allowed(model) {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedModel, model)
	}

	history := uc.opts.UseHistory
	if useHistory != nil {
		history = *useHistory
	}

	conversation := entity.NewConversation(uuid.New().String(), model, history)
	if err := uc.conversations.Save(ctx, conversation); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	ctxzap.Info(ctx, "conversation created",
		zap.String("conversation_id", conversation.ID),
		zap.String("model", model),
		zap.Bool("use_history", history),
	)

	return conversation, nil
}

func (uc *AssistantUsecase) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	return uc.conversations.Get(ctx, id)
}

// Ask runs one turn on a stored conversation
func (uc *AssistantUsecase) Ask(ctx context.Context, conversationID, question string) (*entity.TurnResult, error) {
	conversation, err := uc.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	result, err := uc.Turn(ctx, conversation, question)
	if err != nil {
		return nil, err
	}

	if err := uc.conversations.Save(ctx, conversation); err != nil {
		ctxzap.Warn(ctx, "failed to refresh conversation", zap.Error(err))
	}
	return result, nil
}

// Turn answers question within conversation. The returned error covers only requests
// that never started a turn (empty question, a turn already in flight). Pipeline
// failures are reported in TurnResult.Err and leave the conversation ready for the
// next question.
func (uc *AssistantUsecase) Turn(ctx context.Context, conversation *entity.Conversation, question string) (*entity.TurnResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, entity.ErrEmptyQuestion
	}

	if err := conversation.Begin(); err != nil {
		return nil, err
	}

	ctx = logger.WithAction(ctx, "turn")
	ctx = logger.AddFields(ctx, zap.String("conversation_id", conversation.ID))

	model, useHistory := conversation.Settings()
	history := conversation.HistoryWindow(uc.opts.SlideWindow)
	conversation.Append(entity.RoleUser, question)

	result := &entity.TurnResult{Question: question}
	result.Err = uc.answer(ctx, model, useHistory, history, result)

	if result.Err == nil {
		conversation.Append(entity.RoleAssistant, result.Response)
	}

	if err := conversation.Complete(); err != nil {
		ctxzap.Error(ctx, "unexpected turn state", zap.Error(err))
	}

	if result.Err == nil {
		uc.evaluate(ctx, conversation, result)
		uc.metrics.RecordTurn(outcomeSuccess)
		ctxzap.Info(ctx, "turn answered",
			zap.String("model", model),
			zap.Int("passage_count", len(result.Passages)),
			zap.Int("response_length", len(result.Response)),
		)
	} else {
		uc.metrics.RecordTurn(outcomeError)
		ctxzap.Error(ctx, "turn failed", zap.String("model", model), zap.Error(result.Err))
	}

	if err := conversation.Ready(); err != nil {
		ctxzap.Error(ctx, "unexpected turn state", zap.Error(err))
	}

	return result, nil
}

func (uc *AssistantUsecase) answer(ctx context.Context, model string, useHistory bool, history string, result *entity.TurnResult) error {
	result.Rephrased = result.Question
	if useHistory && history != "" {
		summary, err := uc.summarize(ctx, model, history, result.Question)
		if err != nil {
			return err
		}
		result.Rephrased = summary
	}

	passages, contextText, err := uc.retrieve(ctx, result.Rephrased)
	if err != nil {
		return err
	}
	result.Passages = passages
	result.Context = contextText

	result.Prompt = AssemblePrompt(result.Question, result.Rephrased, contextText)

	response, err := uc.complete(ctx, model, result.Prompt)
	if err != nil {
		return err
	}
	if strings.TrimSpace(contextText) == "" {
		response = ensureNoContextNotice(response)
	}
	result.Response = response

	return nil
}

func (uc *AssistantUsecase) summarize(ctx context.Context, model, history, question string) (summary string, err error) {
	defer uc.metrics.ObserveStage(metrics.StageSummarize, time.Now(), &err)
	return uc.summarizer.Summarize(ctx, model, history, question)
}

func (uc *AssistantUsecase) retrieve(ctx context.Context, question string) (passages []entity.RetrievedPassage, contextText string, err error) {
	defer uc.metrics.ObserveStage(metrics.StageRetrieve, time.Now(), &err)
	return uc.retriever.Retrieve(ctx, question)
}

func (uc *AssistantUsecase) complete(ctx context.Context, model, prompt string) (response string, err error) {
	defer uc.metrics.ObserveStage(metrics.StageComplete, time.Now(), &err)
	return uc.completer.Complete(ctx, model, prompt)
}

// evaluate scores the turn and persists the records. Nothing here fails the turn.
func (uc *AssistantUsecase) evaluate(ctx context.Context, conversation *entity.Conversation, result *entity.TurnResult) {
	start := time.Now()
	scores, records := uc.evaluator.Evaluate(ctx, feedback.Input{
		Question: result.Question,
		Response: result.Response,
		Passages: result.Passages,
	})
	uc.metrics.ObserveStage(metrics.StageEvaluate, start, nil)

	result.Feedback = scores
	if len(records) == 0 {
		return
	}

	conversation.RecordFeedback(records...)

	if err := uc.feedbackStore.Save(ctx, records); err != nil {
		uc.metrics.RecordStoreFailure()
		ctxzap.Warn(ctx, "failed to persist feedback", zap.Error(err))
	}
}

// Reset clears the conversation's turns and returns it to IDLE
func (uc *AssistantUsecase) Reset(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	conversation, err := uc.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if err := conversation.Reset(); err != nil {
		return nil, err
	}
	ctxzap.Info(ctx, "conversation reset", zap.String("conversation_id", conversationID))
	return conversation, nil
}

func (uc *AssistantUsecase) SelectModel(ctx context.Context, conversationID, model string) (*entity.Conversation, error) {
	if !uc.catalog.Allowed(model) {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedModel, model)
	}

	conversation, err := uc.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	conversation.SetModel(model)
	return conversation, nil
}

func (uc *AssistantUsecase) SetUseHistory(ctx context.Context, conversationID string, use bool) (*entity.Conversation, error) {
	conversation, err := uc.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	conversation.SetUseHistory(use)
	return conversation, nil
}

// UpdateSettings applies the optional model and history changes together, validating first
func (uc *AssistantUsecase) UpdateSettings(ctx context.Context, conversationID string, req *entity.UpdateSettingsRequest) (*entity.Conversation, error) {
	if req.Model != nil && !uc.catalog.Allowed(*req.Model) {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedModel, *req.Model)
	}

	conversation, err := uc.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if req.Model != nil {
		conversation.SetModel(*req.Model)
	}
	if req.UseHistory != nil {
		conversation.SetUseHistory(*req.UseHistory)
	}
	return conversation, nil
}

func (uc *AssistantUsecase) Feedback(ctx context.Context, conversationID string) ([]entity.FeedbackRecord, error) {
	conversation, err := uc.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return conversation.Feedback(), nil
}

func (uc *AssistantUsecase) Models() []string {
	return uc.catalog.Models()
}

// NextModel cycles the conversation to the next model of the allow-list
func (uc *AssistantUsecase) NextModel(conversation *entity.Conversation) string {
	model, _ := conversation.Settings()
	next := uc.catalog.Next(model)
	conversation.SetModel(next)
	return next
}

// Transcript renders the conversation's turns in the requested format
func (uc *AssistantUsecase) Transcript(ctx context.Context, conversationID string, format entity.ResultFormat) ([]byte, formatter.Formatter, error) {
	conversation, err := uc.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, nil, err
	}

	title := uc.opts.Title
	if title == "" {
		title = "Conversation " + conversation.ID
	}

	data, err := f.Format(formatter.Transcript{Title: title, Turns: conversation.Turns()})
	if err != nil {
		return nil, nil, fmt.Errorf("format transcript: %w", err)
	}
	return data, f, nil
}

// IsTurnError reports whether err belongs to the per-turn taxonomy shown to the user
// in place of a response
func IsTurnError(err error) bool {
	return errors.Is(err, entity.ErrSearchFailed) ||
		errors.Is(err, entity.ErrCompletionFailed) ||
		errors.Is(err, entity.ErrEmptyCompletion) ||
		errors.Is(err, entity.ErrUnsupportedModel)
}
