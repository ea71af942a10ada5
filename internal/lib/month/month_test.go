package month

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{name: "middle of month", in: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), want: "2024-03"},
		{name: "december", in: time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC), want: "2023-12"},
		{name: "local time converted to utc", in: time.Date(2024, 4, 1, 2, 0, 0, 0, loc), want: "2024-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{key: "2024-01"},
		{key: "1999-12"},
		{key: "2024-13", wantErr: true},
		{key: "2024-00", wantErr: true},
		{key: "2024-1", wantErr: true},
		{key: "24-01", wantErr: true},
		{key: "2024/01", wantErr: true},
		{key: "", wantErr: true},
		{key: "2024-01-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := Parse(tt.key)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, Validate(tt.key))
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		used  int
		limit int
		want  float64
	}{
		{name: "quarter", used: 250, limit: 1000, want: 25},
		{name: "zero usage", used: 0, limit: 1000, want: 0},
		{name: "zero limit", used: 10, limit: 0, want: 0},
		{name: "negative limit", used: 10, limit: -5, want: 0},
		{name: "over quota", used: 150, limit: 100, want: 150},
		{name: "repeating fraction", used: 1, limit: 3, want: 33.33},
		{name: "two thirds", used: 2, limit: 3, want: 66.67},
		{name: "half up", used: 1, limit: 8000, want: 0.01},
		{name: "below half", used: 1, limit: 30000, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percent(tt.used, tt.limit))
		})
	}
}
