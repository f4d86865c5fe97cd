package batch

import (
	"errors"
	"strings"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK("doc-1", "created", 201)
	if r.ID() != "doc-1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.HTTPStatus() != 201 || r.Result() != "created" {
		t.Errorf("got status=%d result=%q", r.HTTPStatus(), r.Result())
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("something failed")
	r := NewError("doc-2", 400, err)
	if r.ID() != "doc-2" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if r.HTTPStatus() != 400 {
		t.Errorf("HTTPStatus() = %d", r.HTTPStatus())
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestStatusConstants(t *testing.T) {
	if StatusOK != "ok" {
		t.Errorf("StatusOK = %q", StatusOK)
	}
	if StatusError != "error" {
		t.Errorf("StatusError = %q", StatusError)
	}
}

func TestNewItem(t *testing.T) {
	it, err := NewItem("", []byte(` { "a" : 1 } `))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(it.Source()) != `{"a":1}` {
		t.Errorf("Source() = %s", it.Source())
	}

	if _, err := NewItem("1", []byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := NewItem(strings.Repeat("x", 600), []byte(`{}`)); err == nil {
		t.Error("expected error for long id")
	}
}
