// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/ward-ballot/cliparse"
	"github.com/danielhkuo/ward-ballot/ledger"
	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/testutil"
	"github.com/danielhkuo/ward-ballot/votecrypto"
)

// testEnv is an Ongoing ward 3 election in Kathmandu with a full candidate
// list and one approved voter V1 on the roll
type testEnv struct {
	db         *sql.DB
	cfg        cliparse.Config
	crypto     votecrypto.Config
	ledger     *ledger.Ledger
	location   int64
	electionID int64
	mayor      int64
	deputy     int64
	chair      int64
	members    []int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	env := &testEnv{
		db:     db,
		cfg:    testutil.GetTestConfig(),
		crypto: testutil.GetTestCrypto(t),
	}
	env.ledger = ledger.New(db, env.crypto, nil)

	env.location = testutil.CreateTestLocation(t, db, "Kathmandu")
	env.electionID = testutil.CreateOngoingElection(t, db, env.location, 3)
	env.mayor = testutil.AddTestCandidate(t, db, "Mayor A", "Blue", env.location, 0, models.PostMayor)
	env.deputy = testutil.AddTestCandidate(t, db, "Deputy A", "Green", env.location, 0, models.PostDeputyMayor)
	env.chair = testutil.AddTestCandidate(t, db, "Chair A", "Blue", env.location, 3, models.PostWardChairperson)
	env.members = testutil.AddWardMembers(t, db, env.location, 3, 5)

	testutil.CreateTestVoter(t, db, "V1", models.VerificationApproved)
	testutil.AddToRoll(t, db, "V1", env.location, 3)
	return env
}

// fullBallot selects one candidate per single-seat post and the first four
// Ward Members
func (env *testEnv) fullBallot() models.SubmitBallotRequest {
	return models.SubmitBallotRequest{
		ElectionID: env.electionID,
		Votes: []models.BallotEntry{
			{PostID: models.PostMayor, CandidateID: models.Single(env.mayor)},
			{PostID: models.PostDeputyMayor, CandidateID: models.Single(env.deputy)},
			{PostID: models.PostWardChairperson, CandidateID: models.Single(env.chair)},
			{PostID: models.PostWardMember, CandidateID: models.Multiple(env.members[:4]...)},
		},
	}
}

func voterHeaders(voterID string) map[string]string {
	return map[string]string{"X-Voter-Token": testutil.VoterToken(voterID)}
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
