package models

import "time"

// SubscriptionStatus статус подписки пользователя на тариф.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

// Valid проверяет, что статус входит в допустимый набор.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Subscription связь пользователя с тарифом во времени.
type Subscription struct {
	ID        int                `json:"id"`
	UserID    string             `json:"userId"`
	PlanID    int                `json:"planId"`
	Status    SubscriptionStatus `json:"status"`
	StartedAt time.Time          `json:"startedAt"`
	EndsAt    *time.Time         `json:"endsAt"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// SubscriptionUpdate частичное обновление подписки. EndsAt можно сбросить через null.
type SubscriptionUpdate struct {
	PlanID *int
	Status *SubscriptionStatus
	EndsAt OptionalTime
}

// Empty сообщает, что обновлять нечего.
func (u SubscriptionUpdate) Empty() bool {
	return u.PlanID == nil && u.Status == nil && !u.EndsAt.Set
}
