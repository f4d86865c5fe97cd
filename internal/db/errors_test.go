package db

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestNewStatusError_ObjectCause(t *testing.T) {
	body := []byte(`{"error":{"root_cause":[],"type":"index_not_found_exception","reason":"no such index [books]"},"status":404}`)
	e := NewStatusError(OpGet, 404, body)

	if e.Type != "index_not_found_exception" {
		t.Errorf("Type = %q", e.Type)
	}
	if e.Reason != "no such index [books]" {
		t.Errorf("Reason = %q", e.Reason)
	}
	want := "get: status 404: index_not_found_exception: no such index [books]"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestNewStatusError_StringCause(t *testing.T) {
	e := NewStatusError(OpSearch, 400, []byte(`{"error":"bad things"}`))
	if e.Type != "" || e.Reason != "bad things" {
		t.Errorf("got type=%q reason=%q", e.Type, e.Reason)
	}
}

func TestNewStatusError_NoErrorField(t *testing.T) {
	body := []byte(`{"_index":"books","_id":"1","found":false}`)
	e := NewStatusError(OpGet, 404, body)

	if e.Type != "" || e.Reason != "" {
		t.Errorf("expected empty cause, got type=%q reason=%q", e.Type, e.Reason)
	}
	if !strings.Contains(e.Error(), `"found":false`) {
		t.Errorf("Error() should fall back to the body, got %q", e.Error())
	}
}

func TestNewStatusError_PlainText(t *testing.T) {
	e := NewStatusError(OpInfo, 401, []byte("Unauthorized"))
	if e.Error() != "info: status 401: Unauthorized" {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestNewStatusError_EmptyBody(t *testing.T) {
	e := NewStatusError(OpIndexExists, 503, nil)
	if e.Error() != "indices.exists: status 503: Service Unavailable" {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestNewStatusError_TruncatesBody(t *testing.T) {
	big := []byte(strings.Repeat("x", maxErrorBody+100))
	e := NewStatusError(OpBulk, 500, big)
	if len(e.Body) != maxErrorBody {
		t.Errorf("len(Body) = %d, want %d", len(e.Body), maxErrorBody)
	}
}

func TestReadBody(t *testing.T) {
	data, err := ReadBody(OpInfo, 200, strings.NewReader(`{"ok":true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("data = %s", data)
	}

	_, err = ReadBody(OpInfo, 502, strings.NewReader("bad gateway"))
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if se.StatusCode != 502 {
		t.Errorf("StatusCode = %d", se.StatusCode)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestReadBody_ReadError(t *testing.T) {
	_, err := ReadBody(OpGet, 200, failingReader{})
	var dbErr *Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if dbErr.Op != OpGet {
		t.Errorf("Op = %q", dbErr.Op)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected wrapped io.ErrUnexpectedEOF")
	}
}

func TestReadBody_NilBody(t *testing.T) {
	data, err := ReadBody(OpPing, 200, nil)
	if err != nil || data != nil {
		t.Fatalf("got %v, %v", data, err)
	}
	if _, err := ReadBody(OpPing, 404, nil); err == nil {
		t.Fatal("expected error for 404 without body")
	}
}

func TestIsStatus(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewStatusError(OpIndexExists, 404, nil))
	if !IsStatus(wrapped, 404) {
		t.Error("expected wrapped 404 to match")
	}
	if IsStatus(wrapped, 500) {
		t.Error("unexpected match on 500")
	}
	if IsStatus(errors.New("plain"), 404) {
		t.Error("plain error must not match")
	}
}
