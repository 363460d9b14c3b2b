package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-backend/internal/models"
)

func TestMeta_SetGet(t *testing.T) {
	t.Parallel()

	m := NewMeta()

	_, ok := m.Get("missing")
	require.False(t, ok)

	m.Set("key", 42)
	v, ok := m.Get("key")
	require.True(t, ok)
	require.Equal(t, 42, v)

	// Перезапись.
	m.Set("key", "other")
	v, _ = m.Get("key")
	require.Equal(t, "other", v)
}

func TestMeta_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Meta

	_, ok := m.Get("key")
	require.False(t, ok)

	_, ok = SessionFrom(m)
	require.False(t, ok)
	_, ok = UserFrom(m)
	require.False(t, ok)
	_, ok = ChatFrom(m)
	require.False(t, ok)
	_, ok = ParticipantFrom(m)
	require.False(t, ok)
}

func TestMeta_IsolatedPerRequest(t *testing.T) {
	t.Parallel()

	first := NewMeta()
	second := NewMeta()

	PutUser(first, &models.User{ID: 1})

	_, ok := UserFrom(second)
	require.False(t, ok)
}

func TestMeta_TypedAccessors(t *testing.T) {
	t.Parallel()

	m := NewMeta()

	session := &models.AuthSession{ID: 42}
	user := &models.User{ID: 100}
	chat := &models.Chat{ID: 10}
	participant := &models.ChatParticipant{ID: 2}

	PutSession(m, session)
	PutUser(m, user)
	PutChat(m, chat)
	PutParticipant(m, participant)

	gotSession, ok := SessionFrom(m)
	require.True(t, ok)
	require.Same(t, session, gotSession)

	gotUser, ok := UserFrom(m)
	require.True(t, ok)
	require.Same(t, user, gotUser)

	gotChat, ok := ChatFrom(m)
	require.True(t, ok)
	require.Same(t, chat, gotChat)

	gotParticipant, ok := ParticipantFrom(m)
	require.True(t, ok)
	require.Same(t, participant, gotParticipant)
}

func TestMeta_Context(t *testing.T) {
	t.Parallel()

	require.Nil(t, MetaFrom(context.Background()))

	m := NewMeta()
	ctx := IntoContext(context.Background(), m)
	require.Same(t, m, MetaFrom(ctx))
}
