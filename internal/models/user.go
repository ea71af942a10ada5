// Package models содержит доменные структуры дашборда: пользователей, сессии,
// каталог сервисов и тарифов, подписки и учёт использования.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// PasswordHash никогда не сериализуется и не покидает сервисный слой.
type User struct {
	ID            string     // Уникальный идентификатор пользователя (uuid)
	Name          string     // Отображаемое имя
	Email         string     // Электронная почта в нижнем регистре
	EmailVerified *time.Time // Дата подтверждения почты
	Image         *string    // Ссылка на аватар
	PasswordHash  string     // bcrypt-хэш пароля
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser публичная проекция пользователя для ответов API.
type PublicUser struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Image         *string    `json:"image"`
	EmailVerified *time.Time `json:"emailVerified,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Public возвращает проекцию пользователя без хэша пароля.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Image:         u.Image,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// ProfileUpdate частичное обновление профиля.
type ProfileUpdate struct {
	Name  *string
	Image Optional[string]
}
