// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/ward-ballot/models"
)

func TestWithLogging(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"success":true}`},
		{"Unprocessable", http.StatusUnprocessableEntity, `{"error":"Unprocessable Entity"}`},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/ballots", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
			if w.Header().Get(RequestIDHeader) == "" {
				t.Error("Expected X-Request-ID to be set")
			}
		})
	}
}

func TestWithLogging_KeepsIncomingRequestID(t *testing.T) {
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/results/live", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	w := httptest.NewRecorder()

	handler(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "trace-123" {
		t.Errorf("Expected request id 'trace-123', got '%s'", got)
	}
}

func TestRoutePattern(t *testing.T) {
	testCases := []struct {
		pattern  string
		expected string
	}{
		{"GET /elections/{id}/ballot", "/elections/{id}/ballot"},
		{"/metrics", "/metrics"},
		{"", "unmatched"},
	}

	for _, tc := range testCases {
		req := httptest.NewRequest("GET", "/", nil)
		req.Pattern = tc.pattern
		if got := routePattern(req); got != tc.expected {
			t.Errorf("routePattern(%q) = %q, want %q", tc.pattern, got, tc.expected)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	called := false
	handler := RequireAdmin("secret-key", func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name       string
		key        string
		wantStatus int
		wantCalled bool
	}{
		{"valid key", "secret-key", http.StatusOK, true},
		{"wrong key", "nope", http.StatusUnauthorized, false},
		{"missing key", "", http.StatusUnauthorized, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest("POST", "/audit/verify", nil)
			if tc.key != "" {
				req.Header.Set("X-Admin-Key", tc.key)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}
			if called != tc.wantCalled {
				t.Errorf("Expected handler called = %v, got %v", tc.wantCalled, called)
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "check result",
			statusCode: http.StatusOK,
			data:       models.CheckResult{Valid: true, Message: "Hash is valid"},
			expected:   `{"valid":true,"message":"Hash is valid"}`,
		},
		{
			name:       "failed vote",
			statusCode: http.StatusCreated,
			data:       models.FailedVote{PostID: 2, CandidateID: 9, Message: "Candidate not found"},
			expected:   `{"post_id":2,"candidate_id":9,"message":"Candidate not found"}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []int64{101, 102},
			expected:   `[101,102]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			// Encode adds a trailing newline
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		statusCode    int
		message       string
		expectedError string
	}{
		{http.StatusBadRequest, "election_id is required", "Bad Request"},
		{http.StatusForbidden, "Voter is not approved", "Forbidden"},
		{http.StatusConflict, "Election is not active", "Conflict"},
		{http.StatusUnprocessableEntity, "exactly 4 Ward Member selections are required", "Unprocessable Entity"},
		{http.StatusInternalServerError, "Failed to record ballot", "Internal Server Error"},
	}

	for _, tc := range testCases {
		t.Run(tc.expectedError, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Success {
				t.Error("Expected success false")
			}
			if resp.Error != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, resp.Error)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("ballot with mixed selections", func(t *testing.T) {
		body := `{"election_id":10,"votes":[{"post_id":1,"candidate_id":5},{"post_id":4,"candidate_id":[101,102,103,104]}]}`
		req := httptest.NewRequest("POST", "/ballots", strings.NewReader(body))

		var parsed models.SubmitBallotRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.ElectionID != 10 || len(parsed.Votes) != 2 {
			t.Fatalf("Unexpected parse result: %+v", parsed)
		}
		if parsed.Votes[1].CandidateID.Kind != models.SelectionMultiple || len(parsed.Votes[1].CandidateID.IDs) != 4 {
			t.Errorf("Expected 4 Ward Member ids, got %+v", parsed.Votes[1].CandidateID)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/ballots", strings.NewReader(`{invalid json}`))

		var parsed models.SubmitBallotRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("invalid selection", func(t *testing.T) {
		body := `{"election_id":10,"votes":[{"post_id":1,"candidate_id":"abc"}]}`
		req := httptest.NewRequest("POST", "/ballots", strings.NewReader(body))

		var parsed models.SubmitBallotRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for non-numeric candidate_id")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/ballots", strings.NewReader(""))

		var parsed models.SubmitBallotRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for empty body")
		}
	})
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("handled"))
	})
	handler := CORS(next)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/ballots", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Body.String() != "" {
			t.Errorf("Expected empty body for preflight, got '%s'", w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
			t.Error("Expected Access-Control-Allow-Origin to match request origin")
		}

		allowed := w.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"Content-Type", "X-Admin-Key", "X-Voter-Token"} {
			if !strings.Contains(allowed, h) {
				t.Errorf("Expected %s in allowed headers", h)
			}
		}
	})

	t.Run("regular request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/results/live", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected Access-Control-Allow-Origin to default to '*'")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.5"},
		{"single forwarded", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", nil, "192.0.2.1:5678", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tc.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tc.expected)
			}
		})
	}
}
