package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{New(CodeValidation, "bad input"), http.StatusBadRequest},
		{OutOfRange(120.4, 50), http.StatusBadRequest},
		{New(CodeUnauthorized, "no"), http.StatusUnauthorized},
		{New(CodeForbidden, "no"), http.StatusForbidden},
		{New(CodeNotFound, "gone"), http.StatusNotFound},
		{New(CodeConflict, "dup"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", New(CodeNotFound, "gone")), http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestIsSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("check-in: %w", New(CodeConflict, "already checked in"))
	if !Is(err, CodeConflict) {
		t.Error("wrapped conflict not recognized")
	}
	if Is(err, CodeNotFound) {
		t.Error("wrong code matched")
	}
	if Is(errors.New("plain"), CodeConflict) {
		t.Error("plain error matched a code")
	}
}

func TestOutOfRangeDetails(t *testing.T) {
	err := OutOfRange(83.7, 50)
	if err.Details["distance"] != 83 {
		t.Errorf("distance detail = %v, want 83", err.Details["distance"])
	}
	if err.Details["required_radius"] != 50 {
		t.Errorf("required_radius detail = %v, want 50", err.Details["required_radius"])
	}
}
