package models

import "time"

// Session серверная сессия с непрозрачным токеном.
type Session struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired сообщает, истекла ли сессия. Сессия с ExpiresAt <= now недействительна.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionWithUser результат поиска сессии вместе с владельцем.
type SessionWithUser struct {
	Session Session
	User    User
}

// LoginResult результат успешного входа.
type LoginResult struct {
	User      *PublicUser `json:"user"`
	Token     string      `json:"-"`
	ExpiresAt time.Time   `json:"expiresAt"`
}
