package handlerutils

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestWriteSuccessJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteSuccessJSON(rec, http.StatusCreated, "created", map[string]int{"id": 1}); err != nil {
		t.Fatalf("WriteSuccessJSON failed: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Unexpected content type %q", ct)
	}
	body := decodeEnvelope(t, rec)
	if body["status"] != "success" || body["message"] != "created" {
		t.Errorf("Unexpected envelope %v", body)
	}
	if _, ok := body["errors"]; ok {
		t.Error("errors should be omitted on success")
	}
}

func TestWriteSuccessJSONKeepsEmptyList(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteSuccessJSON(rec, http.StatusOK, "", []string{}); err != nil {
		t.Fatalf("WriteSuccessJSON failed: %v", err)
	}
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].([]any)
	if !ok || len(data) != 0 {
		t.Errorf("Expected empty data list, got %v", body["data"])
	}
	if _, ok := body["message"]; ok {
		t.Error("empty message should be omitted")
	}
}

func TestWriteErrorJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	fields := map[string][]string{"name": {"The name field is required."}}
	if err := WriteErrorJSON(rec, http.StatusUnprocessableEntity, "Validation failed", fields); err != nil {
		t.Fatalf("WriteErrorJSON failed: %v", err)
	}

	body := decodeEnvelope(t, rec)
	if body["status"] != "error" {
		t.Errorf("Expected status error, got %v", body["status"])
	}
	errs, ok := body["errors"].(map[string]any)
	if !ok || errs["name"] == nil {
		t.Errorf("Expected field errors, got %v", body["errors"])
	}
	if _, ok := body["data"]; ok {
		t.Error("data should be omitted on error")
	}
}

func TestParseJSON(t *testing.T) {
	var payload struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Electronics"}`))
	if err := ParseJSON(r, &payload); err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if payload.Name != "Electronics" {
		t.Errorf("Expected name Electronics, got %q", payload.Name)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	if err := ParseJSON(r, &payload); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteSuccessJSON(rec, http.StatusCreated, "created", map[string]float64{"price": math.Inf(1)})
	if err == nil {
		t.Fatal("Expected encode error")
	}

	if rec.Body.Len() != 0 {
		t.Errorf("Expected nothing written, got %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "" {
		t.Errorf("Expected no content type, got %q", ct)
	}

	// the error handler can still answer on the same response
	if err := WriteErrorJSON(rec, http.StatusInternalServerError, "something went wrong", nil); err != nil {
		t.Fatalf("WriteErrorJSON failed: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["status"] != "error" {
		t.Errorf("Unexpected envelope %v", body)
	}
}
