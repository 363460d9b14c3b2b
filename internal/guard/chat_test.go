package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"chat-backend/internal/models"
	"chat-backend/internal/storage"
	"chat-backend/mocks"
)

func testChat(id int64) *models.Chat {
	return &models.Chat{ID: id, CreatedAt: time.Now().UTC().Add(-time.Hour)}
}

func carrierWithUser(user *models.User) *testCarrier {
	c := newTestCarrier()
	PutUser(c.Meta(), user)
	return c
}

func TestChatGuard_MemberAllowed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	chat := testChat(10)

	st.EXPECT().ChatByID(gomock.Any(), int64(10)).Return(chat, nil)
	st.EXPECT().ParticipantsByChatID(gomock.Any(), int64(10)).Return([]models.ChatParticipant{
		{ID: 1, ChatID: 10, UserID: 100},
		{ID: 2, ChatID: 10, UserID: 200},
	}, nil)

	g := NewChatGuard(st)

	carrier := carrierWithUser(&models.User{ID: 100, IsActive: true})
	carrier.params[ChatIDParam] = "10"

	require.Equal(t, Allow, g.Evaluate(context.Background(), carrier))

	got, ok := ChatFrom(carrier.Meta())
	require.True(t, ok)
	require.Equal(t, chat, got)
}

func TestChatGuard_NonMemberDenied(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	st.EXPECT().ChatByID(gomock.Any(), int64(10)).Return(testChat(10), nil)
	st.EXPECT().ParticipantsByChatID(gomock.Any(), int64(10)).Return([]models.ChatParticipant{
		{ID: 2, ChatID: 10, UserID: 200},
	}, nil)

	g := NewChatGuard(st)

	carrier := carrierWithUser(&models.User{ID: 100, IsActive: true})
	carrier.params[ChatIDParam] = "10"

	// Существующий чат без членства — Deny, а не NotFound.
	require.Equal(t, Deny, g.Evaluate(context.Background(), carrier))

	_, ok := ChatFrom(carrier.Meta())
	require.False(t, ok)
}

func TestChatGuard_RootBypassesMembership(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	chat := testChat(10)
	// Для root участники не запрашиваются.
	st.EXPECT().ChatByID(gomock.Any(), int64(10)).Return(chat, nil)

	g := NewChatGuard(st)

	carrier := carrierWithUser(&models.User{ID: 1, IsActive: true, IsRoot: true})
	carrier.params[ChatIDParam] = "10"

	require.Equal(t, Allow, g.Evaluate(context.Background(), carrier))
}

func TestChatGuard_MissingChatIsNotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	st.EXPECT().ChatByID(gomock.Any(), int64(10)).Return(nil, storage.ErrNotFound)

	g := NewChatGuard(st)

	carrier := carrierWithUser(&models.User{ID: 100, IsActive: true})
	carrier.params[ChatIDParam] = "10"

	require.Equal(t, NotFound, g.Evaluate(context.Background(), carrier))
}

func TestChatGuard_BadParam(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	g := NewChatGuard(st)

	for _, raw := range []string{"", "abc", "0", "-5", "1.5"} {
		carrier := carrierWithUser(&models.User{ID: 100, IsActive: true})
		carrier.params[ChatIDParam] = raw

		require.Equal(t, NotFound, g.Evaluate(context.Background(), carrier), "param=%q", raw)
	}
}

func TestChatGuard_NoUserInMeta(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	g := NewChatGuard(st)

	carrier := newTestCarrier()
	carrier.params[ChatIDParam] = "10"

	require.Equal(t, Deny, g.Evaluate(context.Background(), carrier))
}

func TestChatGuard_StorageFailureDenied(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	st.EXPECT().ChatByID(gomock.Any(), int64(10)).Return(nil, errors.New("db down"))

	g := NewChatGuard(st)

	carrier := carrierWithUser(&models.User{ID: 100, IsActive: true})
	carrier.params[ChatIDParam] = "10"

	require.Equal(t, Deny, g.Evaluate(context.Background(), carrier))
}
