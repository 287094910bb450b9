package services

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/model"
)

const (
	// DefaultChatTitle names sessions until their first message arrives.
	DefaultChatTitle = "New Chat"
	autoTitleLen     = 50
	previewLen       = 100
)

type ChatService struct {
	Deps
	gen *ai.Generator
}

func NewChatService(d Deps, gen *ai.Generator) *ChatService {
	return &ChatService{Deps: d, gen: gen}
}

// CreateSession starts an empty session. An empty title becomes DefaultChatTitle.
func (s *ChatService) CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultChatTitle
	}
	if err := validateTitle("title", title); err != nil {
		return nil, err
	}
	now := s.now()
	cs := &model.ChatSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.Store.ChatSessions().Create(ctx, cs)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("create chat session failed")
		return nil, translate(err, "chat session", cs.ID)
	}
	s.publish(changefeed.ChatSessions, changefeed.OpAdded, userID, created.ID, created)
	return created, nil
}

func (s *ChatService) GetSession(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	cs, err := s.Store.ChatSessions().Get(ctx, userID, sessionID)
	return cs, translate(err, "chat session", sessionID)
}

// ListSessions returns sessions most recently active first. If the ordered
// query fails the unordered one is sorted here instead.
func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	sessions, err := s.Store.ChatSessions().List(ctx, userID, true)
	if err == nil {
		return sessions, nil
	}
	s.Log.Warn().Err(err).Str("user_id", userID).Msg("ordered session query failed; sorting in memory")

	sessions, err = s.Store.ChatSessions().List(ctx, userID, false)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("list chat sessions failed")
		return nil, translate(err, "chat sessions", userID)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (s *ChatService) RenameSession(ctx context.Context, userID, sessionID, title string) (*model.ChatSession, error) {
	if err := validateTitle("title", title); err != nil {
		return nil, err
	}
	cs, err := s.Store.ChatSessions().Rename(ctx, userID, sessionID, strings.TrimSpace(title), s.now())
	if err != nil {
		return nil, translate(err, "chat session", sessionID)
	}
	s.publish(changefeed.ChatSessions, changefeed.OpModified, userID, cs.ID, cs)
	return cs, nil
}

// DeleteSession removes the session together with its messages.
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if err := s.Store.ChatSessions().Delete(ctx, userID, sessionID); err != nil {
		return translate(err, "chat session", sessionID)
	}
	s.publish(changefeed.ChatSessions, changefeed.OpRemoved, userID, sessionID, nil)
	return nil
}

// Messages returns the session transcript, oldest first.
func (s *ChatService) Messages(ctx context.Context, userID, sessionID string) ([]*model.ChatMessage, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	msgs, err := s.Store.ChatMessages().List(ctx, userID, sessionID)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("session_id", sessionID).Msg("list chat messages failed")
		return nil, translate(err, "chat messages", sessionID)
	}
	return msgs, nil
}

// AppendMessage stores one message and bumps the session counters.
func (s *ChatService) AppendMessage(ctx context.Context, userID, sessionID string, role model.ChatRole, content string) (*model.ChatMessage, error) {
	if !role.Valid() {
		return nil, NewValidationError("role", "must be user or assistant")
	}
	if err := validateMessage(content); err != nil {
		return nil, err
	}
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.appendAt(ctx, userID, sessionID, role, content, s.now())
}

func (s *ChatService) appendAt(ctx context.Context, userID, sessionID string, role model.ChatRole, content string, at time.Time) (*model.ChatMessage, error) {
	m := &model.ChatMessage{
		ID:            uuid.New().String(),
		ChatSessionID: sessionID,
		UserID:        userID,
		Role:          role,
		Content:       content,
		Timestamp:     at,
	}
	saved, err := s.Store.ChatMessages().Create(ctx, m)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("session_id", sessionID).Msg("append chat message failed")
		return nil, translate(err, "chat message", m.ID)
	}
	cs, err := s.Store.ChatSessions().RecordMessage(ctx, userID, sessionID, truncate(content, previewLen), at)
	if err != nil {
		return nil, translate(err, "chat session", sessionID)
	}
	s.publish(changefeed.ChatSessions, changefeed.OpModified, userID, cs.ID, cs)
	return saved, nil
}

// ClearMessages deletes the transcript and resets the session counters.
func (s *ChatService) ClearMessages(ctx context.Context, userID, sessionID string) (int64, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return 0, err
	}
	n, err := s.Store.ChatMessages().DeleteBySession(ctx, userID, sessionID)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("session_id", sessionID).Msg("clear chat messages failed")
		return 0, translate(err, "chat messages", sessionID)
	}
	cs, err := s.Store.ChatSessions().ResetMessages(ctx, userID, sessionID, s.now())
	if err != nil {
		return 0, translate(err, "chat session", sessionID)
	}
	s.publish(changefeed.ChatSessions, changefeed.OpModified, userID, cs.ID, cs)
	return n, nil
}

// SendResult is the outcome of one chat exchange.
type SendResult struct {
	UserMessage      *model.ChatMessage `json:"userMessage"`
	AssistantMessage *model.ChatMessage `json:"assistantMessage"`
	Source           ai.Source          `json:"source"`
}

// Send stores the user's message, asks the assistant with the prior
// transcript as context and stores the reply. A session still carrying
// the default title is renamed after its first message.
func (s *ChatService) Send(ctx context.Context, userID, sessionID, content string) (*SendResult, error) {
	if err := validateMessage(content); err != nil {
		return nil, err
	}
	cs, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	prior, err := s.Store.ChatMessages().List(ctx, userID, sessionID)
	if err != nil {
		return nil, translate(err, "chat messages", sessionID)
	}

	userMsg, err := s.appendAt(ctx, userID, sessionID, model.RoleUser, content, s.now())
	if err != nil {
		return nil, err
	}
	if cs.MessageCount == 0 && cs.Title == DefaultChatTitle {
		if _, err := s.RenameSession(ctx, userID, sessionID, truncate(strings.TrimSpace(content), autoTitleLen)); err != nil {
			s.Log.Warn().Err(err).Str("session_id", sessionID).Msg("auto-title failed")
		}
	}

	history := make([]ai.Turn, 0, len(prior))
	for _, m := range prior {
		history = append(history, ai.Turn{Role: m.Role, Text: m.Content})
	}
	reply, source := s.gen.Reply(ctx, history, content)
	if reply == "" {
		reply, source = ai.FallbackReply, ai.SourceFallback
	}

	// keep the reply strictly after the question in timestamp order
	at := s.now()
	if !at.After(userMsg.Timestamp) {
		at = userMsg.Timestamp.Add(time.Millisecond)
	}
	botMsg, err := s.appendAt(ctx, userID, sessionID, model.RoleAssistant, reply, at)
	if err != nil {
		return nil, err
	}
	return &SendResult{UserMessage: userMsg, AssistantMessage: botMsg, Source: source}, nil
}

// SubscribeSessions streams the user's sessions, then diffs.
func (s *ChatService) SubscribeSessions(ctx context.Context, userID string, fn func(Update[model.ChatSession])) (func(), error) {
	return subscribe(ctx, s.Feed, s.Log, userID, changefeed.ChatSessions, func(ctx context.Context) ([]*model.ChatSession, error) {
		return s.ListSessions(ctx, userID)
	}, fn)
}

func validateMessage(s string) error {
	if strings.TrimSpace(s) == "" {
		return NewValidationError("content", "is required")
	}
	if utf8.RuneCountInString(s) > maxMessageLen {
		return NewValidationError("content", "must be at most 8000 characters")
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
