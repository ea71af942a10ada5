package models

import (
	"encoding/json"
	"time"
)

// Optional различает отсутствующее поле JSON и явный null.
// Set == true, если поле присутствовало в запросе; Value == nil для null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON вызывается только для присутствующих полей, в том числе для null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Some возвращает заданное значение.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null возвращает явно обнулённое значение.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// OptionalTime поле с датой, которое можно сбросить через null.
type OptionalTime = Optional[time.Time]
