package domainerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindsAndStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NotFound("patient not found"), http.StatusNotFound},
		{PreconditionFailed("Phase 1 must be completed before advancing to Phase 2"), http.StatusBadRequest},
		{Conflict("Patient is already in Phase 2"), http.StatusConflict},
		{Unexpected("insert audit log", errors.New("connection reset")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.status {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.status)
		}
	}
}

func TestPredicatesSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("advance phase: %w", PreconditionFailed("Phase 1 must be completed before advancing to Phase 2"))
	if !IsPreconditionFailed(err) {
		t.Error("IsPreconditionFailed() lost the kind through wrapping")
	}
	if IsNotFound(err) || IsConflict(err) {
		t.Error("wrong predicate matched")
	}
}

func TestClientMessage_HidesUnexpectedDetail(t *testing.T) {
	err := Unexpected("insert audit log", errors.New("pq: deadlock detected"))
	if msg := ClientMessage(err); msg != "internal server error" {
		t.Errorf("ClientMessage() = %q, leaked internal detail", msg)
	}

	nf := NotFound("Supply not found")
	if msg := ClientMessage(nf); msg != "Supply not found" {
		t.Errorf("ClientMessage() = %q, want domain message", msg)
	}
}
