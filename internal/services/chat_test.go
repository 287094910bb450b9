package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/model"
)

type echoModel struct {
	history []ai.Turn
}

func (m *echoModel) Generate(context.Context, string) (string, error) { return "{}", nil }

func (m *echoModel) Chat(_ context.Context, history []ai.Turn, message string) (string, error) {
	m.history = history
	return "you said: " + message, nil
}

func TestChatService_SendAutoTitlesAndFallsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	cs, err := env.chat.CreateSession(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultChatTitle, cs.Title)

	long := strings.Repeat("plan my week ", 10)
	res, err := env.chat.Send(ctx, "u1", cs.ID, long)
	require.NoError(t, err)
	assert.Equal(t, ai.SourceFallback, res.Source)
	assert.Equal(t, ai.FallbackReply, res.AssistantMessage.Content)
	assert.Equal(t, model.RoleUser, res.UserMessage.Role)
	assert.Equal(t, model.RoleAssistant, res.AssistantMessage.Role)
	assert.True(t, res.AssistantMessage.Timestamp.After(res.UserMessage.Timestamp))

	got, err := env.chat.GetSession(ctx, "u1", cs.ID)
	require.NoError(t, err)
	assert.Equal(t, long[:50], got.Title)
	assert.Equal(t, 2, got.MessageCount)
	assert.Equal(t, ai.FallbackReply[:100], got.LastMessage)

	// a second message keeps the title
	_, err = env.chat.Send(ctx, "u1", cs.ID, "another")
	require.NoError(t, err)
	got, err = env.chat.GetSession(ctx, "u1", cs.ID)
	require.NoError(t, err)
	assert.Equal(t, long[:50], got.Title)
	assert.Equal(t, 4, got.MessageCount)
}

func TestChatService_SendPassesHistory(t *testing.T) {
	m := &echoModel{}
	env := newTestEnvWithModel(t, m)
	ctx := t.Context()

	cs, err := env.chat.CreateSession(ctx, "u1", "Planning")
	require.NoError(t, err)

	_, err = env.chat.Send(ctx, "u1", cs.ID, "hello")
	require.NoError(t, err)
	assert.Empty(t, m.history)

	res, err := env.chat.Send(ctx, "u1", cs.ID, "again")
	require.NoError(t, err)
	assert.Equal(t, ai.SourceAI, res.Source)
	assert.Equal(t, "you said: again", res.AssistantMessage.Content)
	require.Len(t, m.history, 2)
	assert.Equal(t, model.RoleUser, m.history[0].Role)
	assert.Equal(t, "you said: hello", m.history[1].Text)

	got, err := env.chat.GetSession(ctx, "u1", cs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Planning", got.Title)

	msgs, err := env.chat.Messages(ctx, "u1", cs.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "you said: again", msgs[3].Content)
}

func TestChatService_ListOrderingAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	a, err := env.chat.CreateSession(ctx, "u1", "A")
	require.NoError(t, err)
	env.clock.Advance(time.Second)
	b, err := env.chat.CreateSession(ctx, "u1", "B")
	require.NoError(t, err)
	env.clock.Advance(time.Second)
	_, err = env.chat.AppendMessage(ctx, "u1", a.ID, model.RoleUser, "bump")
	require.NoError(t, err)

	list, err := env.chat.ListSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	n, err := env.chat.ClearMessages(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	cleared, err := env.chat.GetSession(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cleared.MessageCount)
	assert.Empty(t, cleared.LastMessage)

	_, err = env.chat.Send(ctx, "u1", b.ID, "hi")
	require.NoError(t, err)
	require.NoError(t, env.chat.DeleteSession(ctx, "u1", b.ID))
	_, err = env.chat.Messages(ctx, "u1", b.ID)
	assert.True(t, IsNotFoundError(err))

	_, err = env.chat.Send(ctx, "u2", a.ID, "not yours")
	assert.True(t, IsNotFoundError(err))
	_, err = env.chat.Send(ctx, "u1", a.ID, "   ")
	assert.True(t, IsValidationError(err))
}
