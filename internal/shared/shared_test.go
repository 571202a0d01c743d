package shared

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorForStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, ErrAuthentication},
		{http.StatusForbidden, ErrAuthentication},
		{http.StatusBadRequest, ErrInvalidInput},
		{http.StatusUnprocessableEntity, ErrInvalidInput},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusTooManyRequests, ErrRemoteService},
		{http.StatusInternalServerError, ErrRemoteService},
		{http.StatusServiceUnavailable, ErrRemoteService},
		{0, ErrRemoteService},
	}

	for _, tt := range tests {
		if got := ErrorForStatus(tt.code); !errors.Is(got, tt.want) {
			t.Errorf("ErrorForStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestRecordText(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		want    string
		wantErr bool
	}{
		{"present", Record{TextField: "My dog's name is Steve."}, "My dog's name is Steve.", false},
		{"missing", Record{"born": "July 19, 2023"}, "", true},
		{"not a string", Record{TextField: 42}, "", true},
		{"empty", Record{TextField: ""}, "", true},
		{"nil record", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rec.Text()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
