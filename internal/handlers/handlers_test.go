package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkmark-backend/internal/models"
	"linkmark-backend/internal/services"
)

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"url": "bad"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "already saved"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "Content not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "bad credentials"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"upstream", &services.UpstreamError{Message: "video not found"}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Errorf("Expected code %q, got %q", tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestHandleServiceError_ValidationFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()

	handleServiceError(rr, req, &services.ValidationError{
		Fields: map[string]string{"tag_count": "must be between 1 and 9"},
	})

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if resp.Error.Fields["tag_count"] != "must be between 1 and 9" {
		t.Errorf("Expected field detail preserved, got %v", resp.Error.Fields)
	}
}

func TestErrorResp_RequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")

	resp := errorResp("NOT_FOUND", "gone", req)
	if resp.Error.RequestID != "req-42" {
		t.Errorf("Expected request id echoed, got %q", resp.Error.RequestID)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]string{"message": "ok"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["message"] != "ok" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		query  string
		want   models.ContentType
		wantOK bool
	}{
		{"content_type=video", models.ContentTypeVideo, true},
		{"content_type=post", models.ContentTypePost, true},
		{"content_type=audio", "audio", false},
		{"", "", true},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		got, ok := parseContentType(req)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("parseContentType(%q): expected (%q, %v), got (%q, %v)",
				tc.query, tc.want, tc.wantOK, got, ok)
		}
	}
}
