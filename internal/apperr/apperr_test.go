package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeInvalidGuess, "game finished")
	if !errors.Is(err, ErrInvalidGuess) {
		t.Fatalf("expected %v to match ErrInvalidGuess", err)
	}
	if errors.Is(err, ErrInvalidWord) {
		t.Fatalf("did not expect %v to match ErrInvalidWord", err)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("save session: %w", Wrap(CodeConflict, "update failed", cause))
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if got := CodeOf(err); got != CodeConflict {
		t.Fatalf("CodeOf() = %v, want %v", got, CodeConflict)
	}
	if got := CodeOf(cause); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %v, want %v", got, CodeUnknown)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidGuess, http.StatusBadRequest},
		{CodeAttemptsExhausted, http.StatusConflict},
		{CodeNoActiveSession, http.StatusNotFound},
		{CodeNoWordsAvailable, http.StatusServiceUnavailable},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatus(tt.code); got != tt.want {
				t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
