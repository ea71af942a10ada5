package models

import "time"

// DefaultPlanID тариф Free, назначаемый при регистрации.
const DefaultPlanID = 1

// Plan тарифный план.
type Plan struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	Features  []string  `json:"features"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlanUpdate частичное обновление тарифа.
type PlanUpdate struct {
	Name     *string
	Price    *int
	Features []string
}

// Service автоматизация из каталога с месячным лимитом.
type Service struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Icon         *string   `json:"icon"`
	MonthlyLimit int       `json:"monthlyLimit"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ServiceUpdate частичное обновление сервиса.
type ServiceUpdate struct {
	Name         *string
	Description  *string
	Category     *string
	Icon         Optional[string]
	MonthlyLimit *int
}
