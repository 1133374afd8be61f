package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"carelink/internal/util"
	"carelink/pkg/ai"
	"carelink/pkg/domain"
)

// transcriptLimit bounds the history handed to the oracle. Always the
// most recent turns, chronological order preserved.
const transcriptLimit = 20

const (
	oracleUnavailableReply = "죄송해요, 잠시 연결이 불안정하네요. 다시 말씀해주실 수 있으세요?"
	analysisFailedSummary  = "대화 분석 중 오류 발생"
)

// StartResult is the outcome of opening a chat session.
type StartResult struct {
	ConversationID string `json:"conversationId"`
	Greeting       string `json:"firstMessage"`
}

// EndResult is the analysis persisted when a session ends.
type EndResult struct {
	Summary  string           `json:"summary"`
	Mood     domain.MoodScore `json:"mood"`
	Concerns []string         `json:"concerns"`
}

// StartConversation opens an active session and seeds it with a
// time-of-day greeting naming the senior.
func (a *App) StartConversation(ctx context.Context, seniorID string) (StartResult, error) {
	senior, found, err := a.store.GetSenior(seniorID)
	if err != nil {
		return StartResult{}, fmt.Errorf("lookup senior: %w", err)
	}
	if !found {
		return StartResult{}, ErrSeniorNotFound
	}

	now := a.now()
	conversation := domain.Conversation{
		ID:        util.NewID(),
		SeniorID:  seniorID,
		StartedAt: now.UTC(),
	}
	if err := a.store.CreateConversation(conversation); err != nil {
		return StartResult{}, fmt.Errorf("create conversation: %w", err)
	}

	greeting := greetingFor(senior.Name, now.Hour())
	if err := a.store.AppendMessage(domain.Message{
		ID:             util.NewID(),
		ConversationID: conversation.ID,
		Role:           domain.RoleAssistant,
		Content:        greeting,
		CreatedAt:      now.UTC(),
	}); err != nil {
		return StartResult{}, fmt.Errorf("append greeting: %w", err)
	}
	return StartResult{ConversationID: conversation.ID, Greeting: greeting}, nil
}

// PostMessage appends the senior's turn, asks the oracle for the
// companion reply, and appends that reply. Oracle failure degrades to a
// fixed apology rather than failing the request.
func (a *App) PostMessage(ctx context.Context, conversationID, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content required", ErrInvalidInput)
	}
	conversation, found, err := a.store.GetConversation(conversationID)
	if err != nil {
		return "", fmt.Errorf("lookup conversation: %w", err)
	}
	if !found {
		return "", ErrConversationNotFound
	}
	if conversation.Ended() {
		return "", ErrConversationEnded
	}
	senior, found, err := a.store.GetSenior(conversation.SeniorID)
	if err != nil {
		return "", fmt.Errorf("lookup senior: %w", err)
	}
	if !found {
		return "", ErrSeniorNotFound
	}

	if err := a.store.AppendMessage(domain.Message{
		ID:             util.NewID(),
		ConversationID: conversationID,
		Role:           domain.RoleSenior,
		Content:        content,
		CreatedAt:      a.now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("append message: %w", err)
	}

	transcript, err := a.transcript(conversationID, transcriptLimit)
	if err != nil {
		return "", err
	}
	reply, err := a.oracle.Converse(ctx, senior.Name, transcript)
	if err != nil {
		slog.Warn("oracle converse failed", "conversation_id", conversationID, "err", err)
		reply = oracleUnavailableReply
	}

	if err := a.store.AppendMessage(domain.Message{
		ID:             util.NewID(),
		ConversationID: conversationID,
		Role:           domain.RoleAssistant,
		Content:        reply,
		CreatedAt:      a.now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("append reply: %w", err)
	}
	return reply, nil
}

// EndConversation analyzes the transcript and closes the session,
// persisting end time, summary, mood and concerns together. Non-empty
// concerns fan out one summary alert to the linked family.
func (a *App) EndConversation(ctx context.Context, conversationID string) (EndResult, error) {
	conversation, found, err := a.store.GetConversation(conversationID)
	if err != nil {
		return EndResult{}, fmt.Errorf("lookup conversation: %w", err)
	}
	if !found {
		return EndResult{}, ErrConversationNotFound
	}
	if conversation.Ended() {
		return EndResult{}, ErrConversationEnded
	}

	transcript, err := a.transcript(conversationID, 0)
	if err != nil {
		return EndResult{}, err
	}
	analysis, err := a.oracle.Analyze(ctx, transcript)
	if err != nil {
		slog.Warn("oracle analyze failed", "conversation_id", conversationID, "err", err)
		analysis = ai.Analysis{Summary: analysisFailedSummary, Mood: string(domain.MoodNeutral), Concerns: []string{}}
	}
	mood := moodOrNeutral(analysis.Mood)
	concerns := analysis.Concerns
	if concerns == nil {
		concerns = []string{}
	}

	if err := a.store.EndConversation(conversationID, a.now().UTC(), analysis.Summary, mood, concerns); err != nil {
		return EndResult{}, fmt.Errorf("end conversation: %w", err)
	}

	if len(concerns) > 0 {
		a.dispatch(ctx, conversation.SeniorID, domain.NotificationConversationSummary,
			"💬 오늘 대화에서 주의사항이 감지되었습니다",
			strings.Join(concerns, ", "),
			map[string]any{"conversationId": conversationID},
		)
	}
	return EndResult{Summary: analysis.Summary, Mood: mood, Concerns: concerns}, nil
}

// ListConversations returns a linked senior's sessions, newest first.
func (a *App) ListConversations(familyID, seniorID string, limit, offset int) ([]domain.Conversation, error) {
	if _, err := a.requireLinkedSenior(familyID, seniorID); err != nil {
		return nil, err
	}
	conversations, err := a.store.ListConversationsBySenior(seniorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

// ListConversationMessages returns the full transcript chronologically.
func (a *App) ListConversationMessages(familyID, conversationID string) ([]domain.Message, error) {
	conversation, found, err := a.store.GetConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("lookup conversation: %w", err)
	}
	if !found {
		return nil, ErrConversationNotFound
	}
	if _, err := a.requireLinkedSenior(familyID, conversation.SeniorID); err != nil {
		return nil, err
	}
	messages, err := a.store.ListMessages(conversationID, 0)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// transcript loads the most recent turns as oracle input.
func (a *App) transcript(conversationID string, limit int) ([]ai.Turn, error) {
	messages, err := a.store.ListMessages(conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	turns := make([]ai.Turn, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == domain.RoleAssistant {
			role = "assistant"
		}
		turns = append(turns, ai.Turn{Role: role, Content: msg.Content})
	}
	return turns, nil
}

func greetingFor(name string, hour int) string {
	switch {
	case hour < 12:
		return fmt.Sprintf("%s 어르신, 좋은 아침이에요! 오늘 컨디션은 어떠세요?", name)
	case hour < 18:
		return fmt.Sprintf("%s 어르신, 안녕하세요! 오늘 하루 어떻게 보내고 계세요?", name)
	default:
		return fmt.Sprintf("%s 어르신, 안녕하세요! 오늘 하루 잘 보내셨어요?", name)
	}
}

func moodOrNeutral(mood string) domain.MoodScore {
	switch domain.MoodScore(mood) {
	case domain.MoodVeryGood, domain.MoodGood, domain.MoodNeutral, domain.MoodBad, domain.MoodVeryBad:
		return domain.MoodScore(mood)
	default:
		return domain.MoodNeutral
	}
}
