package admin_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JaimeStill/outreach/internal/admin"
	"github.com/JaimeStill/outreach/internal/batches"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, admin.DefaultLimit},
		{-5, 1},
		{1, 1},
		{50, 50},
		{100, 100},
		{101, admin.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			if got := admin.ClampLimit(tt.in); got != tt.want {
				t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", admin.ErrNotFound, http.StatusNotFound},
		{"batch not found", batches.ErrNotFound, http.StatusNotFound},
		{"invalid limit", admin.ErrInvalidLimit, http.StatusBadRequest},
		{"transition", fmt.Errorf("x: %w", batches.ErrInvalidTransition), http.StatusConflict},
		{"store", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := admin.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
