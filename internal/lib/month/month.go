// Package month содержит функции для работы с ключом месяца учёта в формате YYYY-MM.
package month

import (
	"errors"
	"math"
	"time"
)

// Layout формат ключа месяца.
const Layout = "2006-01"

// ErrInvalidKey возвращается, если строка не является ключом месяца.
var ErrInvalidKey = errors.New("month must be in YYYY-MM format")

// Key возвращает ключ месяца для момента времени в UTC.
func Key(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse проверяет ключ месяца. Принимается только строгий формат YYYY-MM.
func Parse(key string) (time.Time, error) {
	if len(key) != len(Layout) {
		return time.Time{}, ErrInvalidKey
	}
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, ErrInvalidKey
	}
	return t, nil
}

// Validate возвращает ErrInvalidKey, если ключ некорректен.
func Validate(key string) error {
	_, err := Parse(key)
	return err
}

// Round2 округляет до двух знаков после запятой, половина округляется вверх.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// Percent считает процент использования лимита. При нулевом лимите возвращает 0.
func Percent(used, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	return Round2(float64(used) / float64(limit) * 100)
}
