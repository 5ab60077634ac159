package callbacksig

import (
	"testing"
	"time"
)

func TestIsFuture(t *testing.T) {
	now := time.UnixMilli(1754114831806)

	tests := []struct {
		name        string
		epochMillis int64
		want        bool
	}{
		{"one millisecond in the future", now.UnixMilli() + 1, true},
		{"exactly now is expired", now.UnixMilli(), false},
		{"one millisecond in the past", now.UnixMilli() - 1, false},
		{"zero timestamp", 0, false},
		{"negative timestamp", -1, false},
		{"far future", now.UnixMilli() + 365*24*3600*1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFuture(tt.epochMillis, now); got != tt.want {
				t.Errorf("isFuture(%d, %d) = %v, want %v", tt.epochMillis, now.UnixMilli(), got, tt.want)
			}
		})
	}
}
