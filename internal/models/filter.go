package models

// MaxPageSize максимальный размер страницы списков.
const MaxPageSize = 100

// ListFilter параметры фильтрации и пагинации списков.
type ListFilter struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

// Normalize приводит пагинацию к допустимым значениям.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 || f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// SubscriptionFilter параметры списка подписок пользователя.
type SubscriptionFilter struct {
	UserID string
	Status *SubscriptionStatus
	Limit  int
	Offset int
}
