package models

import "time"

// UsageLog счётчик использования сервиса пользователем за месяц.
// Для пары (UserID, ServiceID, Month) существует не более одной записи.
type UsageLog struct {
	ID         int       `json:"id"`
	UserID     string    `json:"userId"`
	ServiceID  int       `json:"serviceId"`
	UsageCount int       `json:"usageCount"`
	Month      string    `json:"month"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UsageSummary использование одного сервиса относительно его лимита.
type UsageSummary struct {
	ServiceID      int     `json:"serviceId"`
	ServiceName    string  `json:"serviceName"`
	Category       string  `json:"category"`
	MonthlyLimit   int     `json:"monthlyLimit"`
	UsageCount     int     `json:"usageCount"`
	RemainingUsage int     `json:"remainingUsage"`
	PercentageUsed float64 `json:"percentageUsed"`
}

// UsageOverview сводка для дашборда: активный тариф и использование сервисов.
type UsageOverview struct {
	Month        string         `json:"month"`
	Subscription *Subscription  `json:"subscription"`
	Plan         *Plan          `json:"plan"`
	Services     []UsageSummary `json:"services"`
}
