// token реализует кодек авторизационного токена.
//
// Токен — это JWT (HS256), структурно привязанный ровно к одной сессии:
// payload содержит только {sub: ID сессии, jti: ID access-токена}. Токен
// намеренно не содержит временных клеймов — срок жизни контролируется
// строкой auth_sessions в БД, а не самим токеном.
//
// Decode молчалив: любая причина отказа (битая подпись, чужой алгоритм,
// лишние или отсутствующие поля, неположительные значения) неразличима для
// вызывающего — возвращается nil. Так отказ аутентификации не раскрывает,
// на каком шаге он произошёл.
package token

import (
	"fmt"
	"math"

	"github.com/golang-jwt/jwt/v5"
)

// Payload — расшифрованное содержимое токена.
type Payload struct {
	// SessionID — ID сессии (клейм "sub").
	SessionID int64
	// TokenID — ID действующего access-токена сессии (клейм "jti").
	TokenID int64
}

// Encode подписывает payload секретом signature и возвращает компактный JWT.
// Детерминирован: одинаковые payload и секрет дают одинаковую строку.
func Encode(p Payload, signature string) (string, error) {
	const op = "token.Encode"

	claims := jwt.MapClaims{
		"sub": p.SessionID,
		"jti": p.TokenID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signature))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Decode проверяет подпись и форму токена. Возвращает nil, если токен
// отклонён по любой причине; ошибок наружу не отдаёт.
func Decode(raw, signature string) *Payload {
	parsed, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(signature), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	// Строгая форма: ровно два клейма, оба — положительные целые.
	if len(claims) != 2 {
		return nil
	}

	sub, ok := positiveInt(claims["sub"])
	if !ok {
		return nil
	}

	jti, ok := positiveInt(claims["jti"])
	if !ok {
		return nil
	}

	return &Payload{SessionID: sub, TokenID: jti}
}

// positiveInt приводит JSON-число к положительному int64.
func positiveInt(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}

	if f <= 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}
