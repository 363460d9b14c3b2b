package models

// User — модель пользователя в системе.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	// IsActive — деактивированный пользователь не проходит авторизацию,
	// даже если у него есть живая сессия.
	IsActive bool
	// IsRoot — root-пользователь обходит проверки членства в чатах.
	IsRoot bool
}
