// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var ErrInvalidSelection = errors.New("candidate_id must be an integer or an array of integers")

type SelectionKind int

const (
	SelectionNone SelectionKind = iota
	SelectionSingle
	SelectionMultiple
)

// CandidateSelection is the candidate_id field of a ballot entry: either a
// single candidate or, for multi-seat posts, an array of candidates.
type CandidateSelection struct {
	Kind SelectionKind
	IDs  []int64
}

func Single(id int64) CandidateSelection {
	return CandidateSelection{Kind: SelectionSingle, IDs: []int64{id}}
}

func Multiple(ids ...int64) CandidateSelection {
	return CandidateSelection{Kind: SelectionMultiple, IDs: ids}
}

func (s *CandidateSelection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = CandidateSelection{}
		return nil
	}

	if data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidSelection
		}
		ids := make([]int64, 0, len(raw))
		for _, r := range raw {
			id, err := parseCandidateID(r)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		*s = Multiple(ids...)
		return nil
	}

	id, err := parseCandidateID(data)
	if err != nil {
		return err
	}
	*s = Single(id)
	return nil
}

func (s CandidateSelection) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SelectionSingle:
		return json.Marshal(s.IDs[0])
	case SelectionMultiple:
		return json.Marshal(s.IDs)
	default:
		return []byte("null"), nil
	}
}

// parseCandidateID accepts a JSON integer or a quoted integer, the way form
// encoders in the SPA send them.
func parseCandidateID(data []byte) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, ErrInvalidSelection
	}
	id, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, ErrInvalidSelection
	}
	return id, nil
}
