package review

import (
	"errors"
	"testing"
)

func TestResultText_Success(t *testing.T) {
	got := ResultText("Looks good", nil)
	if got != "Looks good" {
		t.Errorf("got %q, want %q", got, "Looks good")
	}
	if IsFailure(got) {
		t.Error("success text must not read as a failure")
	}
}

func TestResultText_BackendError(t *testing.T) {
	got := ResultText("", &BackendError{Msg: "rate limited"})
	if got != "❌ rate limited" {
		t.Errorf("got %q, want %q", got, "❌ rate limited")
	}
	if !IsFailure(got) {
		t.Error("backend failure must read as a failure")
	}
}

func TestResultText_TransportError(t *testing.T) {
	got := ResultText("", errors.New("connection refused"))
	if got != "❌ Error during review" {
		t.Errorf("got %q, want %q", got, "❌ Error during review")
	}
	if !IsFailure(got) {
		t.Error("transport failure must read as a failure")
	}
}

func TestResultText_NeverEmpty(t *testing.T) {
	cases := []error{
		&BackendError{Msg: "rate limited"},
		&BackendError{},
		errors.New("boom"),
	}
	for _, err := range cases {
		if got := ResultText("", err); got == "" {
			t.Errorf("ResultText(%v) is empty, want a failure message", err)
		}
	}
}
