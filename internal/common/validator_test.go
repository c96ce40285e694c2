package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

type idParam struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

type named struct {
	Name string `form:"name" json:"title" validate:"required"`
}

func TestGenericEchoValidator_Valid(t *testing.T) {
	gv := &GenericEchoValidator{}
	if err := gv.Validate(&idParam{ID: 3}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestGenericEchoValidator_Invalid(t *testing.T) {
	gv := &GenericEchoValidator{}
	err := gv.Validate(&idParam{ID: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", httpErr.Code)
	}
}

func TestNewValidator_UsesFormName(t *testing.T) {
	err := NewValidator().Struct(&named{})
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if errs[0].Field() != "name" {
		t.Errorf("expected field name %q, got %q", "name", errs[0].Field())
	}
}
