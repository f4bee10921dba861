package validation

import (
	"errors"
	"net/http"
	"testing"

	commonerrors "github.com/AlibekovAA/bloglist/backend/internal/common/errors"
)

var errTestValidation = commonerrors.NewDomainError("VALIDATION_FAILED", commonerrors.CategoryValidation, http.StatusBadRequest, "validation failed")

type sample struct {
	Title    string `json:"title" validate:"notblank,max=10"`
	Username string `json:"username" validate:"required,min=3,username"`
	Likes    int    `json:"likes" validate:"min=0"`
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(sample{Title: "ok", Username: "bob", Likes: 1}, errTestValidation); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestStruct_CollectsFieldDetails(t *testing.T) {
	err := Struct(sample{Title: "  ", Username: "a!", Likes: -1}, errTestValidation)
	if !errors.Is(err, errTestValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %T", err)
	}

	details := de.Details()
	for _, field := range []string{"title", "username", "likes"} {
		if _, ok := details[field]; !ok {
			t.Errorf("expected details for %q, got %v", field, details)
		}
	}
	if details["title"] != "is required" {
		t.Errorf("unexpected title detail %v", details["title"])
	}
}

func TestStruct_DoesNotMutateSentinel(t *testing.T) {
	_ = Struct(sample{}, errTestValidation)
	if len(errTestValidation.Details()) != 0 {
		t.Error("expected sentinel details to stay empty")
	}
}
