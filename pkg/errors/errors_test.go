package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
	if !stdErrors.Is(err, internal) {
		t.Fatal("expected wrapped error to unwrap to internal")
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}
	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}
}

func TestFromError(t *testing.T) {
	if out := FromError(ErrNotFound); out != ErrNotFound {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	out := FromError(stdErrors.New("raw"))
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestNewConflictKeepsStatus(t *testing.T) {
	err := NewConflict("donation already claimed")
	if err.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}
	if err.Message != "donation already claimed" {
		t.Fatalf("unexpected message: %s", err.Message)
	}
	if ErrConflict.Message == err.Message {
		t.Fatal("expected shared sentinel to stay untouched")
	}
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("invalid payload")
	if err.Code != ErrBadRequest.Code || err.StatusCode != ErrBadRequest.StatusCode {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	copied := ErrRepositoryUnavailable.WithMessage("repository: list donations: unavailable")
	if !stdErrors.Is(copied, ErrRepositoryUnavailable) {
		t.Fatal("expected copy to match its sentinel")
	}
	if stdErrors.Is(copied, ErrNotFound) {
		t.Fatal("expected different codes not to match")
	}
}
