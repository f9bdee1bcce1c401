// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /results/live", middleware.WithLogging(handler))

Each request gets an id (kept from X-Request-ID when the caller sends one,
otherwise a new UUID) that is echoed back in the response header and
attached to both log lines. Completion logs the status and duration_ms,
and the duration is observed in the request latency histogram by route
pattern.

# Admin Endpoints

	mux.HandleFunc("POST /audit/verify",
		middleware.WithLogging(middleware.RequireAdmin(cfg.AdminKey, h.VerifyVote)))

RequireAdmin answers 401 unless X-Admin-Key matches.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows GET, POST and OPTIONS with the Content-Type, X-Admin-Key,
X-Voter-Token and X-Request-ID headers.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

Error bodies always carry "success": false.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Honours X-Forwarded-For and X-Real-IP. Used in request logs.
*/
package middleware
