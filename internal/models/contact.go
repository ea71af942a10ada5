package models

import "time"

// Contact заявка с формы обратной связи.
type Contact struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Company        string    `json:"company"`
	Message        string    `json:"message"`
	IP             string    `json:"ip"`
	UserAgent      string    `json:"userAgent"`
	RecaptchaScore *float64  `json:"recaptcha_score"`
	CreatedAt      time.Time `json:"timestamp"`
}
