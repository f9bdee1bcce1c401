// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/ward-ballot/cliparse"
	"github.com/danielhkuo/ward-ballot/handlers"
	"github.com/danielhkuo/ward-ballot/ledger"
	"github.com/danielhkuo/ward-ballot/metrics"
	"github.com/danielhkuo/ward-ballot/middleware"
	"github.com/danielhkuo/ward-ballot/notify"
	"github.com/danielhkuo/ward-ballot/votecrypto"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, crypto votecrypto.Config, notifier notify.Notifier) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	lg := ledger.New(db, crypto, notifier)
	electionHandler := handlers.NewElectionHandler(db, lg)
	votingHandler := handlers.NewVotingHandler(db, cfg, lg)
	resultsHandler := handlers.NewResultsHandler(db, crypto, lg)
	auditHandler := handlers.NewAuditHandler(db, crypto)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.AdminKey, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Elections
	mux.HandleFunc("GET /elections/{id}/ballot", middleware.WithLogging(electionHandler.GetBallot))
	mux.HandleFunc("POST /admin/elections/refresh-status", admin(electionHandler.RefreshStatuses))

	// Voting (requires X-Voter-Token)
	mux.HandleFunc("POST /ballots", middleware.WithLogging(votingHandler.SubmitBallot))
	mux.HandleFunc("GET /voters/me/status", middleware.WithLogging(votingHandler.GetStatus))

	// Audit
	mux.HandleFunc("POST /audit/verify", admin(auditHandler.VerifyVote))

	// Results (public, final results sealed until completion)
	mux.HandleFunc("GET /results/final", middleware.WithLogging(resultsHandler.GetFinalResults))
	mux.HandleFunc("GET /results/live", middleware.WithLogging(resultsHandler.GetLiveResults))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ward-ballot API v1"))
	})

	return mux
}
