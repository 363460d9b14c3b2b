package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"chat-backend/internal/device"
	"chat-backend/internal/models"
	"chat-backend/internal/storage"
	"chat-backend/internal/token"
	"chat-backend/mocks"
)

const (
	testSignature = "unit-secret"
	testUserAgent = "Mozilla/5.0 (X11; Linux x86_64)"
)

// testCarrier — минимальный Carrier для юнит-тестов гардов.
type testCarrier struct {
	auth   string
	bearer bool
	ua     string
	params map[string]string
	meta   *Meta
}

func newTestCarrier() *testCarrier {
	return &testCarrier{
		bearer: true,
		ua:     testUserAgent,
		params: map[string]string{},
		meta:   NewMeta(),
	}
}

func (c *testCarrier) Authorization() (string, bool) { return c.auth, c.bearer }
func (c *testCarrier) UserAgent() string             { return c.ua }
func (c *testCarrier) Param(name string) string      { return c.params[name] }
func (c *testCarrier) Meta() *Meta                   { return c.meta }

func testSession(userID int64) *models.AuthSession {
	now := time.Now().UTC()
	return &models.AuthSession{
		ID:            42,
		UserID:        userID,
		StartedAt:     now.Add(-time.Hour),
		ExpiresAt:     now.Add(time.Hour),
		AccessTokenID: 7,
		Device:        device.Fingerprint(testUserAgent),
	}
}

func mustToken(t *testing.T, sessionID, tokenID int64) string {
	t.Helper()
	raw, err := token.Encode(token.Payload{SessionID: sessionID, TokenID: tokenID}, testSignature)
	require.NoError(t, err)
	return raw
}

func TestSessionGuard_Allow(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	session := testSession(100)
	user := &models.User{ID: 100, Email: "user@example.com", IsActive: true}

	st.EXPECT().ActiveSessionByID(gomock.Any(), int64(42), gomock.Any()).Return(session, nil)
	st.EXPECT().UserByID(gomock.Any(), int64(100)).Return(user, nil)

	g := NewSessionGuard(st, st, testSignature, SessionOptions{})

	carrier := newTestCarrier()
	carrier.auth = "Bearer " + mustToken(t, 42, 7)

	require.Equal(t, Allow, g.Evaluate(context.Background(), carrier))

	gotSession, ok := SessionFrom(carrier.Meta())
	require.True(t, ok)
	require.Equal(t, session, gotSession)

	gotUser, ok := UserFrom(carrier.Meta())
	require.True(t, ok)
	require.Equal(t, user, gotUser)
}

func TestSessionGuard_RawTokenWithoutScheme(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	session := testSession(100)
	user := &models.User{ID: 100, IsActive: true}

	st.EXPECT().ActiveSessionByID(gomock.Any(), int64(42), gomock.Any()).Return(session, nil)
	st.EXPECT().UserByID(gomock.Any(), int64(100)).Return(user, nil)

	g := NewSessionGuard(st, st, testSignature, SessionOptions{})

	// WS-рукопожатие: токен приходит сырым, без "Bearer ".
	carrier := newTestCarrier()
	carrier.bearer = false
	carrier.auth = mustToken(t, 42, 7)

	require.Equal(t, Allow, g.Evaluate(context.Background(), carrier))
}

func TestSessionGuard_SkipsWhenAlreadyResolved(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Хранилище не трогаем вообще.
	st := mocks.NewMockStorage(ctrl)
	g := NewSessionGuard(st, st, testSignature, SessionOptions{})

	carrier := newTestCarrier()
	PutSession(carrier.Meta(), testSession(100))

	require.Equal(t, Allow, g.Evaluate(context.Background(), carrier))
}

func TestSessionGuard_DenyPaths(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name    string
		arrange func(t *testing.T, st *mocks.MockStorage, c *testCarrier)
	}

	tests := []testCase{
		{
			name:    "no_credential",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) { c.auth = "" },
		},
		{
			name: "empty_user_agent",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				c.auth = "Bearer " + mustToken(t, 42, 7)
				c.ua = ""
			},
		},
		{
			name: "lowercase_scheme",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				c.auth = "bearer " + mustToken(t, 42, 7)
			},
		},
		{
			name: "scheme_without_token",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				c.auth = "Bearer"
			},
		},
		{
			name: "malformed_token",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				c.auth = "Bearer not-a-jwt"
			},
		},
		{
			name: "wrong_signature",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				raw, err := token.Encode(token.Payload{SessionID: 42, TokenID: 7}, "other-secret")
				require.NoError(t, err)
				c.auth = "Bearer " + raw
			},
		},
		{
			name: "session_not_found",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				c.auth = "Bearer " + mustToken(t, 42, 7)
				st.EXPECT().ActiveSessionByID(gomock.Any(), int64(42), gomock.Any()).
					Return(nil, storage.ErrNotFound)
			},
		},
		{
			name: "storage_failure",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				c.auth = "Bearer " + mustToken(t, 42, 7)
				st.EXPECT().ActiveSessionByID(gomock.Any(), int64(42), gomock.Any()).
					Return(nil, errors.New("db down"))
			},
		},
		{
			name: "rotated_token_id",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				c.auth = "Bearer " + mustToken(t, 42, 6)
				st.EXPECT().ActiveSessionByID(gomock.Any(), int64(42), gomock.Any()).
					Return(testSession(100), nil)
			},
		},
		{
			name: "device_mismatch",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				c.auth = "Bearer " + mustToken(t, 42, 7)
				c.ua = "curl/8.5.0"
				st.EXPECT().ActiveSessionByID(gomock.Any(), int64(42), gomock.Any()).
					Return(testSession(100), nil)
			},
		},
		{
			name: "user_missing",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				c.auth = "Bearer " + mustToken(t, 42, 7)
				st.EXPECT().ActiveSessionByID(gomock.Any(), int64(42), gomock.Any()).
					Return(testSession(100), nil)
				st.EXPECT().UserByID(gomock.Any(), int64(100)).
					Return(nil, storage.ErrNotFound)
			},
		},
		{
			name: "user_inactive",
			arrange: func(t *testing.T, st *mocks.MockStorage, c *testCarrier) {
				c.auth = "Bearer " + mustToken(t, 42, 7)
				st.EXPECT().ActiveSessionByID(gomock.Any(), int64(42), gomock.Any()).
					Return(testSession(100), nil)
				st.EXPECT().UserByID(gomock.Any(), int64(100)).
					Return(&models.User{ID: 100, IsActive: false}, nil)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			st := mocks.NewMockStorage(ctrl)
			carrier := newTestCarrier()
			tc.arrange(t, st, carrier)

			g := NewSessionGuard(st, st, testSignature, SessionOptions{})
			require.Equal(t, Deny, g.Evaluate(context.Background(), carrier))

			// Отказ ничего не публикует в метаданные.
			_, ok := SessionFrom(carrier.Meta())
			require.False(t, ok)
			_, ok = UserFrom(carrier.Meta())
			require.False(t, ok)
		})
	}
}

func TestSessionGuard_OptionalAllowsAnonymous(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	g := NewSessionGuard(st, st, testSignature, SessionOptions{Optional: true})

	carrier := newTestCarrier()
	carrier.auth = ""

	require.Equal(t, Allow, g.Evaluate(context.Background(), carrier))

	// Анонимный пропуск: сессии в метаданных нет.
	_, ok := SessionFrom(carrier.Meta())
	require.False(t, ok)
}

func TestSessionGuard_ExpiredSessionRejected(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	// Хранилище отдаёт только активные сессии: просроченная — ErrNotFound.
	st.EXPECT().ActiveSessionByID(gomock.Any(), int64(42), gomock.Any()).
		Return(nil, storage.ErrNotFound)

	g := NewSessionGuard(st, st, testSignature, SessionOptions{})

	carrier := newTestCarrier()
	carrier.auth = "Bearer " + mustToken(t, 42, 7)

	require.Equal(t, Deny, g.Evaluate(context.Background(), carrier))
}
