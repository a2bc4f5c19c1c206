package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"koomy/portal/internal/constants"
	"koomy/portal/internal/models/dtos"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) dtos.APIResponse {
	t.Helper()
	var body dtos.APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestRespondSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, time.Now(), "ok", map[string]string{"a": "b"}, http.StatusCreated)

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body.Status != "ok" || body.Message != "ok" {
		t.Errorf("Unexpected body %+v", body)
	}
}

func TestRespondError_UsesErrorText(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, time.Now(), errors.New("boom"), "fallback", http.StatusBadGateway)

	body := decode(t, rec)
	if rec.Code != http.StatusBadGateway || body.Message != "boom" || body.Status != "error" {
		t.Errorf("Unexpected response %d %+v", rec.Code, body)
	}
}

func TestRespondCode(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondCode(rec, time.Now(), constants.ErrCodeFileTooLarge, "", http.StatusBadRequest)

	body := decode(t, rec)
	if body.Code != constants.ErrCodeFileTooLarge {
		t.Errorf("Unexpected code %s", body.Code)
	}
	if body.Message != constants.GetErrorMessage(constants.ErrCodeFileTooLarge) {
		t.Errorf("Unexpected message %s", body.Message)
	}
}
