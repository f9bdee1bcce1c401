// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Election status constants
const (
	StatusUpcoming  = "Upcoming"
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
)

// Post identifiers (fixed reference set)
const (
	PostMayor           int64 = 1
	PostDeputyMayor     int64 = 2
	PostWardChairperson int64 = 3
	PostWardMember      int64 = 4
)

// Post names as stored in the posts table
const (
	PostNameMayor           = "Mayor"
	PostNameDeputyMayor     = "Deputy Mayor"
	PostNameWardChairperson = "Ward Chairperson"
	PostNameWardMember      = "Ward Member"
)

// WardMemberSeats is the exact number of Ward Member selections per ballot.
const WardMemberSeats = 4

// Verification states of a registered voter
const (
	VerificationRejected = -1
	VerificationPending  = 0
	VerificationApproved = 1
)

// IsCityWidePost reports whether a post is voted once per location.
func IsCityWidePost(postID int64) bool {
	return postID == PostMayor || postID == PostDeputyMayor
}

// Request types

type SubmitBallotRequest struct {
	ElectionID int64         `json:"election_id"`
	Votes      []BallotEntry `json:"votes"`
}

type BallotEntry struct {
	PostID      int64              `json:"post_id"`
	CandidateID CandidateSelection `json:"candidate_id"`
}

type VerifyVoteRequest struct {
	VoteID json.Number `json:"vote_id"`
}

// Response types

type SubmitBallotResponse struct {
	Success         bool           `json:"success"`
	Message         string         `json:"message"`
	IsVoted         int            `json:"is_voted"`
	SuccessfulVotes []RecordedVote `json:"successful_votes"`
	FailedVotes     []FailedVote   `json:"failed_votes"`
	WardMemberVotes []int64        `json:"ward_member_votes"`
}

type RecordedVote struct {
	VoteID      int64  `json:"vote_id"`
	PostID      int64  `json:"post_id"`
	PostName    string `json:"post_name"`
	CandidateID int64  `json:"candidate_id"`
}

type FailedVote struct {
	PostID      int64  `json:"post_id"`
	CandidateID int64  `json:"candidate_id"`
	Message     string `json:"message"`
}

type CheckResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type VerifyVoteResponse struct {
	Signature CheckResult `json:"signature"`
	Hash      CheckResult `json:"hash"`
}

type VoterStatusResponse struct {
	VoterID    string `json:"voter_id"`
	IsVerified int    `json:"is_verified"`
	IsVoted    int    `json:"is_voted"`
}

type RefreshStatusResponse struct {
	Started     int   `json:"started"`
	Completed   int   `json:"completed"`
	VotersReset int64 `json:"voters_reset"`
}

// Domain types

type Election struct {
	ID           int64     `json:"election_id"`
	Name         string    `json:"name"`
	LocationID   int64     `json:"location_id"`
	LocationType string    `json:"location_type"`
	Ward         int       `json:"ward"` // 0 = all wards
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Status       string    `json:"status"`
}

// AcceptsBallots reports whether votes may be cast at the given instant.
func (e Election) AcceptsBallots(now time.Time) bool {
	return e.Status == StatusOngoing && !now.Before(e.StartDate) && !now.After(e.EndDate)
}

// AppliesToWard reports whether a ward-scoped row belongs to this election.
func (e Election) AppliesToWard(ward int) bool {
	return e.Ward == 0 || e.Ward == ward
}

type Post struct {
	ID   int64  `json:"post_id"`
	Name string `json:"post_name"`
}

type Candidate struct {
	ID         int64  `json:"candidate_id"`
	Name       string `json:"candidate_name"`
	PartyName  string `json:"party_name"`
	LocationID int64  `json:"location_id"`
	Ward       int    `json:"ward"` // 0 for city-wide posts
	PostID     int64  `json:"post_id"`
}

type Voter struct {
	UserID     int64  `json:"user_id"`
	VoterID    string `json:"voter_id"`
	Email      string `json:"-"` // Never expose in JSON
	IsVerified int    `json:"is_verified"`
	IsVoted    int    `json:"is_voted"`
	// Roll data, absent when the voter is not on the government roll
	LocationID *int64 `json:"location_id,omitempty"`
	Ward       *int   `json:"ward,omitempty"`
}

type Vote struct {
	ID                   int64     `json:"vote_id"`
	VoterID              string    `json:"-"` // Never expose in JSON
	ElectionID           int64     `json:"election_id"`
	CandidateID          int64     `json:"candidate_id"`
	PostID               int64     `json:"post_id"`
	EncryptedCandidateID string    `json:"-"`
	Salt                 string    `json:"-"`
	VoteHash             string    `json:"vote_hash"`
	Signature            string    `json:"signature"`
	CreatedAt            time.Time `json:"created_at"`
}

// Ballot sheet types

type BallotPost struct {
	PostID     int64       `json:"post_id"`
	PostName   string      `json:"post_name"`
	Selections int         `json:"selections"` // candidates to choose
	Candidates []Candidate `json:"candidates"`
}

type BallotSheet struct {
	Election Election     `json:"election"`
	Posts    []BallotPost `json:"posts"`
}

// Result types

type CandidateTally struct {
	CandidateID   int64  `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	PartyName     string `json:"party_name"`
	VoteCount     int64  `json:"vote_count"`
}

type PostResult struct {
	PostID     int64            `json:"post_id"`
	PostName   string           `json:"post_name"`
	Candidates []CandidateTally `json:"candidates"`
}

type PartyTally struct {
	PartyName string `json:"party_name"`
	VoteCount int64  `json:"vote_count"`
}

type FinalResults struct {
	Election Election     `json:"election"`
	Posts    []PostResult `json:"final_results"`
	Parties  []PartyTally `json:"parties"`
}

type FinalResultsResponse struct {
	Success      bool         `json:"success"`
	ElectionID   int64        `json:"election_id"`
	ElectionName string       `json:"election_name"`
	FinalResults []PostResult `json:"final_results"`
	Parties      []PartyTally `json:"parties"`
}

type LiveElection struct {
	ElectionID   int64                       `json:"election_id"`
	ElectionName string                      `json:"election_name"`
	Location     string                      `json:"location"`
	Date         string                      `json:"date"`
	Status       string                      `json:"status"`
	Results      map[string][]CandidateTally `json:"results"`
}

type LiveResultsResponse struct {
	Success     bool           `json:"success"`
	Elections   []LiveElection `json:"elections"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Error response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
