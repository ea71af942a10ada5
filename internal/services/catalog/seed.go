package catalog

import (
	"time"

	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// Порядок тарифов важен: Free вставляется первым и получает id = 1.
var planBlueprint = []models.Plan{
	{
		Name:     "Free",
		Price:    0,
		Features: []string{"5 Automations/month", "Basic Support", "1 User"},
	},
	{
		Name:     "Starter",
		Price:    29,
		Features: []string{"50 Automations/month", "Email Support", "3 Users", "Analytics Dashboard"},
	},
	{
		Name:  "Pro",
		Price: 99,
		Features: []string{
			"500 Automations/month",
			"Priority Support",
			"10 Users",
			"Advanced Analytics",
			"Custom Integrations",
		},
	},
	{
		Name:  "Enterprise",
		Price: 299,
		Features: []string{
			"Unlimited Automations",
			"24/7 Support",
			"Unlimited Users",
			"White Label",
			"Dedicated Account Manager",
		},
	},
}

var serviceBlueprint = []models.Service{
	{
		Name:         "WhatsApp Automation",
		Description:  "Automated WhatsApp messaging and chatbots for customer engagement",
		Category:     "Communication",
		MonthlyLimit: 1000,
	},
	{
		Name:         "Email Automation",
		Description:  "Smart email campaigns with AI-powered personalization",
		Category:     "Communication",
		MonthlyLimit: 5000,
	},
	{
		Name:         "Data Analytics",
		Description:  "Real-time business intelligence and predictive analytics",
		Category:     "Analytics",
		MonthlyLimit: 100,
	},
	{
		Name:         "Workflow Automation",
		Description:  "Custom workflow automation with n8n integration",
		Category:     "Workflow",
		MonthlyLimit: 500,
	},
	{
		Name:         "AI Chatbot",
		Description:  "Intelligent chatbot for customer support and lead generation",
		Category:     "Communication",
		MonthlyLimit: 2000,
	},
	{
		Name:         "Document Processing",
		Description:  "Automated document extraction and processing with AI",
		Category:     "Workflow",
		MonthlyLimit: 200,
	},
}

// SeedServices возвращает базовый каталог сервисов с отметкой времени now.
func SeedServices(now time.Time) []models.Service {
	out := make([]models.Service, len(serviceBlueprint))
	for i, svc := range serviceBlueprint {
		svc.CreatedAt = now
		out[i] = svc
	}
	return out
}

// SeedPlans возвращает базовые тарифы с отметкой времени now.
func SeedPlans(now time.Time) []models.Plan {
	out := make([]models.Plan, len(planBlueprint))
	for i, p := range planBlueprint {
		p.Features = append([]string(nil), p.Features...)
		p.CreatedAt = now
		out[i] = p
	}
	return out
}
