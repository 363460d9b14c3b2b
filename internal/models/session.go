package models

import "time"

// AuthSession — серверная запись авторизационной сессии.
//
// Сессия связывает пользователя, устройство и окно действия:
//   - AccessTokenID — ID действующего access-токена; при пролонгации
//     инкрементируется, и все ранее выданные токены становятся недействительными
//     (защита от replay после ротации);
//   - Device — одностороний отпечаток User-Agent, к которому привязана сессия.
//
// Инвариант: ExpiresAt > StartedAt.
type AuthSession struct {
	ID            int64
	UserID        int64
	StartedAt     time.Time
	ExpiresAt     time.Time
	AccessTokenID int64
	Device        string
}
