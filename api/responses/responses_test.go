package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string, any) {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details any    `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code, envelope.Error.Message, envelope.Error.Details
}

func TestWriteSuccessWrapsData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type: %q", ct)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["status"] != "ok" {
		t.Fatalf("unexpected payload: %+v", envelope)
	}
}

func TestWriteErrorClientCodesKeepMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeNotFound, "store not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	code, message, _ := decodeError(t, rec)
	if code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code: %s", code)
	}
	if message != "store not found" {
		t.Fatalf("expected service message to pass through, got %q", message)
	}
}

func TestWriteErrorInternalMessageIsMasked(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "pg password leaked in message"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	_, message, _ := decodeError(t, rec)
	if message != "internal server error" {
		t.Fatalf("internal details must not leak, got %q", message)
	}
}

func TestWriteErrorValidationDetailsPassThrough(t *testing.T) {
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"name": "is required"})

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	_, _, details := decodeError(t, rec)
	typed, ok := details.(map[string]any)
	if !ok || typed["name"] != "is required" {
		t.Fatalf("expected field details, got %v", details)
	}
}

func TestWriteErrorForbiddenDetailsAreDropped(t *testing.T) {
	err := pkgerrors.New(pkgerrors.CodeForbidden, "access denied").
		WithDetails(map[string]string{"internal": "membership row id"})

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, err)

	_, _, details := decodeError(t, rec)
	if details != nil {
		t.Fatalf("forbidden responses must not carry details, got %v", details)
	}
}

func TestWriteErrorUntypedErrorBecomesInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("plain failure"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	code, _, _ := decodeError(t, rec)
	if code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code: %s", code)
	}
}

func TestWriteErrorNilErrorStillResponds(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
