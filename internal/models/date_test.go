package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDate_DaysUntil(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2026-03-01", "2026-03-05", 4},
		{"2026-03-05", "2026-03-01", -4},
		{"2024-02-28", "2024-03-01", 2},
		{"1700-01-01", "2026-01-01", 119069},
		{"0001-01-01", "9999-12-31", 3652058},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, MustDate(tt.from).DaysUntil(MustDate(tt.to)))
		})
	}
}
