package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("refresh: %w", &StatusError{Op: "list comments", Status: 500})

	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("errors.Is(%v, ErrHTTPStatus) = false", err)
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatal("errors.As should find *StatusError")
	}
	if se.Status != 500 {
		t.Errorf("Status = %d, want 500", se.Status)
	}
}

func TestAppErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with message",
			err:  &AppError{Op: "add watchlist", Message: "Already in watchlist"},
			want: "add watchlist: Already in watchlist",
		},
		{
			name: "without message",
			err:  &AppError{Op: "create comment"},
			want: "create comment: server reported failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, ErrApplication) {
				t.Error("AppError should unwrap to ErrApplication")
			}
		})
	}
}
