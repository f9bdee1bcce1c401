// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/store"
)

// Submission-level rejections. Nothing is written when Validate returns one.
var (
	ErrElectionNotFound       = errors.New("election not found")
	ErrElectionNotActive      = errors.New("election is not active")
	ErrVoterNotFound          = errors.New("voter not found")
	ErrVoterNotApproved       = errors.New("voter is not approved")
	ErrVoterNotEligible       = errors.New("voter is not eligible for this election")
	ErrAlreadyVoted           = errors.New("voter has already voted")
	ErrEmptyBallot            = errors.New("ballot contains no selections")
	ErrWardMemberCountInvalid = fmt.Errorf("exactly %d Ward Member selections are required", models.WardMemberSeats)
)

// Per-item failure messages
const (
	MsgInvalidPost       = "Invalid post"
	MsgCandidateNotFound = "Candidate not found"
	MsgPostMismatch      = "Candidate does not belong to this post"
	MsgNotStanding       = "Candidate is not standing in this election"
)

// ReferenceData is the subset of the reference store the validator reads.
type ReferenceData interface {
	PostName(ctx context.Context, postID int64) (string, error)
	Candidate(ctx context.Context, candidateID int64) (models.Candidate, error)
	Election(ctx context.Context, electionID int64) (models.Election, error)
	Voter(ctx context.Context, voterID string) (models.Voter, error)
}

// Pair is one flattened selection.
type Pair struct {
	PostID      int64
	CandidateID int64
}

// Vote is a selection that passed validation.
type Vote struct {
	PostID      int64
	PostName    string
	CandidateID int64
}

// Failure is a selection rejected on its own without failing the ballot.
type Failure struct {
	PostID      int64
	CandidateID int64
	Message     string
}

// Result is the outcome of a successful validation.
type Result struct {
	Election      models.Election
	Voter         models.Voter
	Votes         []Vote
	Failures      []Failure
	WardMemberIDs []int64
}

// Flatten expands multi-candidate entries into one pair per candidate.
// Duplicate pairs keep their first position; null selections contribute
// nothing.
func Flatten(entries []models.BallotEntry) []Pair {
	seen := make(map[Pair]bool)
	var pairs []Pair
	for _, entry := range entries {
		for _, id := range entry.CandidateID.IDs {
			p := Pair{PostID: entry.PostID, CandidateID: id}
			if seen[p] {
				continue
			}
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	return pairs
}

type Validator struct {
	ref ReferenceData
	now func() time.Time
}

func NewValidator(ref ReferenceData) *Validator {
	return &Validator{ref: ref, now: time.Now}
}

// WithClock returns a copy of the validator reading time from now.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	return &Validator{ref: v.ref, now: now}
}

// Validate checks a ballot submission for voterID. A returned error is a
// submission-level rejection; per-item problems are reported in
// Result.Failures.
func (v *Validator) Validate(ctx context.Context, voterID string, req models.SubmitBallotRequest) (*Result, error) {
	election, err := v.ref.Election(ctx, req.ElectionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrElectionNotFound
	}
	if err != nil {
		return nil, err
	}
	if !election.AcceptsBallots(v.now()) {
		return nil, ErrElectionNotActive
	}

	voter, err := v.ref.Voter(ctx, voterID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrVoterNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := CheckEligibility(voter, election); err != nil {
		return nil, err
	}

	pairs := Flatten(req.Votes)
	if len(pairs) == 0 {
		return nil, ErrEmptyBallot
	}

	names, err := v.postNames(ctx, pairs)
	if err != nil {
		return nil, err
	}

	res := &Result{Election: election, Voter: voter}

	// Group Ward Member selections apart from the rest
	var wardMembers, others []Pair
	for _, p := range pairs {
		name, ok := names[p.PostID]
		if !ok {
			res.Failures = append(res.Failures, Failure{p.PostID, p.CandidateID, MsgInvalidPost})
			continue
		}
		if name == models.PostNameWardMember {
			wardMembers = append(wardMembers, p)
		} else {
			others = append(others, p)
		}
	}

	if len(wardMembers) < models.WardMemberSeats {
		return nil, ErrWardMemberCountInvalid
	}

	// Invalid picks fail on their own and the next extra takes the seat.
	// Selections past the fourth valid one are dropped unchecked.
	for _, p := range wardMembers {
		if len(res.WardMemberIDs) == models.WardMemberSeats {
			break
		}
		msg, err := v.checkCandidate(ctx, p, election, voter)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			res.Failures = append(res.Failures, Failure{p.PostID, p.CandidateID, msg})
			continue
		}
		res.Votes = append(res.Votes, Vote{p.PostID, names[p.PostID], p.CandidateID})
		res.WardMemberIDs = append(res.WardMemberIDs, p.CandidateID)
	}
	// A committed ballot always carries a full Ward Member set
	if len(res.WardMemberIDs) < models.WardMemberSeats {
		return nil, ErrWardMemberCountInvalid
	}

	for _, p := range others {
		msg, err := v.checkCandidate(ctx, p, election, voter)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			res.Failures = append(res.Failures, Failure{p.PostID, p.CandidateID, msg})
			continue
		}
		res.Votes = append(res.Votes, Vote{p.PostID, names[p.PostID], p.CandidateID})
	}

	return res, nil
}

// postNames resolves each distinct post once. Unknown posts are absent.
func (v *Validator) postNames(ctx context.Context, pairs []Pair) (map[int64]string, error) {
	names := make(map[int64]string)
	looked := make(map[int64]bool)
	for _, p := range pairs {
		if looked[p.PostID] {
			continue
		}
		looked[p.PostID] = true

		name, err := v.ref.PostName(ctx, p.PostID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		names[p.PostID] = name
	}
	return names, nil
}

// checkCandidate returns a per-item failure message, or "" when the
// candidate may receive this vote.
func (v *Validator) checkCandidate(ctx context.Context, p Pair, e models.Election, voter models.Voter) (string, error) {
	c, err := v.ref.Candidate(ctx, p.CandidateID)
	if errors.Is(err, store.ErrNotFound) {
		return MsgCandidateNotFound, nil
	}
	if err != nil {
		return "", err
	}

	if c.PostID != p.PostID {
		return MsgPostMismatch, nil
	}
	if c.LocationID != e.LocationID {
		return MsgNotStanding, nil
	}
	if c.Ward != 0 {
		if !e.AppliesToWard(c.Ward) {
			return MsgNotStanding, nil
		}
		if voter.Ward != nil && *voter.Ward != c.Ward {
			return MsgNotStanding, nil
		}
	}
	return "", nil
}

// CheckEligibility applies the voter-level rules for casting a ballot in e.
func CheckEligibility(voter models.Voter, e models.Election) error {
	if voter.IsVerified != models.VerificationApproved {
		return ErrVoterNotApproved
	}
	if voter.IsVoted != 0 {
		return ErrAlreadyVoted
	}

	// Voters absent from the roll are trusted to the registration service
	if voter.LocationID == nil {
		return nil
	}
	if *voter.LocationID != e.LocationID {
		return ErrVoterNotEligible
	}
	if voter.Ward != nil && !e.AppliesToWard(*voter.Ward) {
		return ErrVoterNotEligible
	}
	return nil
}
