// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBallotsCounter(t *testing.T) {
	before := testutil.ToFloat64(BallotsTotal.WithLabelValues(OutcomeAccepted))
	BallotsTotal.WithLabelValues(OutcomeAccepted).Inc()
	after := testutil.ToFloat64(BallotsTotal.WithLabelValues(OutcomeAccepted))

	if after-before != 1 {
		t.Errorf("ballots_total{outcome=accepted} increased by %v, want 1", after-before)
	}
}

func TestAuditResult(t *testing.T) {
	if AuditResult(true) != "valid" || AuditResult(false) != "invalid" {
		t.Error("AuditResult() labels are wrong")
	}
}

func TestHandler(t *testing.T) {
	VotesRecorded.Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Handler() status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ward_ballot_votes_recorded_total") {
		t.Error("Handler() output is missing ward_ballot_votes_recorded_total")
	}
}
