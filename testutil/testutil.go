// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ward-ballot/auth"
	"github.com/danielhkuo/ward-ballot/cliparse"
	"github.com/danielhkuo/ward-ballot/db"
	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/votecrypto"
)

// TestDBURL is an in-memory SQLite database with foreign keys enforced
const TestDBURL = ":memory:?_pragma=foreign_keys(1)&_time_format=sqlite"

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)
	conn.SetConnMaxIdleTime(0)

	if err := db.CreateSchema(conn, cliparse.DatabaseSQLite); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      TestDBURL,
		DatabaseType:     cliparse.DatabaseSQLite,
		EncryptionKey:    "test-encryption-key",
		HMACSecret:       "test-hmac-secret",
		VoterTokenSecret: "test-voter-token-secret",
		AdminKey:         "test-admin-key",
	}
}

// GetTestCrypto returns the vote secrets derived from GetTestConfig
func GetTestCrypto(t *testing.T) votecrypto.Config {
	t.Helper()

	cfg := GetTestConfig()
	crypto, err := votecrypto.NewConfig(cfg.EncryptionKey, cfg.HMACSecret)
	if err != nil {
		t.Fatalf("Failed to create crypto config: %v", err)
	}
	return crypto
}

// VoterToken returns the X-Voter-Token header value for a voter
func VoterToken(voterID string) string {
	return auth.IssueVoterToken(voterID, GetTestConfig().VoterTokenSecret)
}

// CreateTestLocation creates a location and returns its ID
func CreateTestLocation(t *testing.T, conn *sql.DB, name string) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO locations (location_name, location_type)
		VALUES ($1, 'Municipality')
		RETURNING location_id
	`, name).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test location: %v", err)
	}
	return id
}

// CreateTestElection creates an election with explicit dates and status
func CreateTestElection(t *testing.T, conn *sql.DB, locationID int64, ward int, status string, start, end time.Time) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO elections (name, location_id, location_type, ward, start_date, end_date, status)
		VALUES ('Test Election', $1, 'Municipality', $2, $3, $4, $5)
		RETURNING election_id
	`, locationID, ward, start.UTC(), end.UTC(), status).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return id
}

// CreateOngoingElection creates an election that is accepting ballots now
func CreateOngoingElection(t *testing.T, conn *sql.DB, locationID int64, ward int) int64 {
	t.Helper()

	now := time.Now()
	return CreateTestElection(t, conn, locationID, ward, models.StatusOngoing, now.Add(-time.Hour), now.Add(time.Hour))
}

// AddTestCandidate adds a candidate and returns its ID
func AddTestCandidate(t *testing.T, conn *sql.DB, name, party string, locationID int64, ward int, postID int64) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO candidates (candidate_name, party_name, location_id, ward, post_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING candidate_id
	`, name, party, locationID, ward, postID).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return id
}

// AddWardMembers adds n Ward Member candidates for a ward
func AddWardMembers(t *testing.T, conn *sql.DB, locationID int64, ward, n int) []int64 {
	t.Helper()

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		name := "Member " + string(rune('A'+i))
		ids = append(ids, AddTestCandidate(t, conn, name, "Independent", locationID, ward, models.PostWardMember))
	}
	return ids
}

// CreateTestVoter registers a voter with the given verification state
// and returns the user ID
func CreateTestVoter(t *testing.T, conn *sql.DB, voterID string, isVerified int) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO users (voter_id, email, is_verified, is_voted)
		VALUES ($1, $2, $3, 0)
		RETURNING user_id
	`, voterID, voterID+"@example.com", isVerified).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
	return id
}

// AddToRoll places a voter on the government roll
func AddToRoll(t *testing.T, conn *sql.DB, voterID string, locationID int64, ward int) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO government_voters (voter_id, full_name, location_id, ward)
		VALUES ($1, $2, $3, $4)
	`, voterID, "Voter "+voterID, locationID, ward)
	if err != nil {
		t.Fatalf("Failed to add voter to roll: %v", err)
	}
}

// InsertTestVote writes a fully sealed vote row and returns its ID
func InsertTestVote(t *testing.T, conn *sql.DB, crypto votecrypto.Config, voterID string, electionID, postID, candidateID int64) int64 {
	t.Helper()

	salt, err := votecrypto.NewSalt()
	if err != nil {
		t.Fatalf("Failed to generate salt: %v", err)
	}
	encrypted, err := crypto.EncryptCandidateID(candidateID)
	if err != nil {
		t.Fatalf("Failed to encrypt candidate: %v", err)
	}

	var id int64
	err = conn.QueryRow(`
		INSERT INTO votes (voter_id, election_id, candidate_id, post_id, encrypted_candidate_id, salt, vote_hash, signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING vote_id
	`, voterID, electionID, candidateID, postID, encrypted, salt,
		votecrypto.VoteHash(voterID, electionID, candidateID, postID, salt),
		crypto.VoteSignature(voterID, electionID, postID, candidateID),
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert test vote: %v", err)
	}
	return id
}

// CountVotes returns the number of vote rows for a voter in an election
func CountVotes(t *testing.T, conn *sql.DB, voterID string, electionID int64) int {
	t.Helper()

	var n int
	err := conn.QueryRow(`
		SELECT COUNT(*) FROM votes WHERE voter_id = $1 AND election_id = $2
	`, voterID, electionID).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// IsVoted returns the is_voted flag of a voter
func IsVoted(t *testing.T, conn *sql.DB, voterID string) int {
	t.Helper()

	var v int
	if err := conn.QueryRow(`SELECT is_voted FROM users WHERE voter_id = $1`, voterID).Scan(&v); err != nil {
		t.Fatalf("Failed to read is_voted: %v", err)
	}
	return v
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
